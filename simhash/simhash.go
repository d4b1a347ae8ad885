// Package simhash finds near-duplicate text fragments with 64-bit SimHash
// fingerprints.
package simhash

import (
	"hash/fnv"
	"math/bits"
	"strings"
	"unicode"
)

// NearDuplicateThreshold is the largest Hamming distance at which two
// fragments count as the same text.
const NearDuplicateThreshold = 3

// Fingerprint computes a 64-bit SimHash of the given text.
// Words are lower-cased and stripped of punctuation; each word and each
// adjacent word pair is hashed with FNV-64a and accumulated into a bit vector.
func Fingerprint(text string) uint64 {
	words := tokens(text)
	if len(words) == 0 {
		return 0
	}

	features := append(words, makeShingles(words, 2)...)
	var vector [64]int
	for _, f := range features {
		h := fnv.New64a()
		h.Write([]byte(f))
		hash := h.Sum64()

		for i := 0; i < 64; i++ {
			if hash&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fingerprint uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fingerprint |= 1 << uint(i)
		}
	}

	return fingerprint
}

// Distance returns the Hamming distance between two SimHash fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similar returns true if the Hamming distance between two fingerprints
// is less than or equal to the threshold.
func Similar(a, b uint64, threshold int) bool {
	return Distance(a, b) <= threshold
}

// NearDuplicate reports whether a and b are the same text up to case,
// punctuation and small edits. Fragments without words are never duplicates.
func NearDuplicate(a, b string) bool {
	fa, fb := Fingerprint(a), Fingerprint(b)
	if fa == 0 || fb == 0 {
		return false
	}
	return Similar(fa, fb, NearDuplicateThreshold)
}

// Dedupe keeps the first item of every group of near-duplicates, in order.
func Dedupe[T any](items []T, text func(T) string) []T {
	if len(items) < 2 {
		return items
	}
	out := make([]T, 0, len(items))
	var seen []uint64
	for _, it := range items {
		fp := Fingerprint(text(it))
		dup := false
		if fp != 0 {
			for _, s := range seen {
				if Similar(fp, s, NearDuplicateThreshold) {
					dup = true
					break
				}
			}
		}
		if dup {
			continue
		}
		if fp != 0 {
			seen = append(seen, fp)
		}
		out = append(out, it)
	}
	return out
}

func tokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// makeShingles creates n-gram shingles from a slice of tokens.
func makeShingles(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}

	shingles := make([]string, 0, len(tokens)-n+1)
	for i := 0; i <= len(tokens)-n; i++ {
		shingles = append(shingles, strings.Join(tokens[i:i+n], "_"))
	}
	return shingles
}
