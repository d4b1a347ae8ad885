package simhash

import (
	"reflect"
	"testing"
)

func TestFingerprint_IdenticalTexts(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog"
	fp1 := Fingerprint(text)
	fp2 := Fingerprint(text)

	if fp1 != fp2 {
		t.Errorf("identical texts produced different fingerprints: %064b vs %064b", fp1, fp2)
	}
}

func TestFingerprint_IgnoresCaseAndPunctuation(t *testing.T) {
	fp1 := Fingerprint("We are a family-run bakery, since 1982.")
	fp2 := Fingerprint("we are a FAMILY run bakery since 1982")

	if fp1 != fp2 {
		t.Errorf("normalised texts should match, distance: %d", Distance(fp1, fp2))
	}
}

func TestFingerprint_DifferentTexts(t *testing.T) {
	text1 := "the quick brown fox jumps over the lazy dog"
	text2 := "completely unrelated content about quantum physics and mathematics"

	dist := Distance(Fingerprint(text1), Fingerprint(text2))
	if dist < 5 {
		t.Errorf("very different texts have too small distance: %d", dist)
	}
}

func TestFingerprint_EmptyInput(t *testing.T) {
	for _, in := range []string{"", "   \t\n  ", "--- !!! ..."} {
		if fp := Fingerprint(in); fp != 0 {
			t.Errorf("Fingerprint(%q) = %064b, want 0", in, fp)
		}
	}
}

func TestFingerprint_SingleWord(t *testing.T) {
	fp := Fingerprint("hello")
	if fp == 0 {
		t.Error("single word should produce a non-zero fingerprint")
	}
	if fp2 := Fingerprint("hello"); fp != fp2 {
		t.Errorf("same single word produced different fingerprints: %d vs %d", fp, fp2)
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
		want int
	}{
		{"identical", 0xFF, 0xFF, 0},
		{"all different", 0, ^uint64(0), 64},
		{"one bit", 0, 1, 1},
		{"two bits", 0, 3, 2},
		{"zero zero", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("Distance(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilar(t *testing.T) {
	fp1 := Fingerprint("the quick brown fox")
	fp2 := Fingerprint("the quick brown fox")

	if !Similar(fp1, fp2, 0) {
		t.Error("identical fingerprints should be similar at threshold 0")
	}

	fp3 := Fingerprint("a completely different text about nothing related")
	dist := Distance(fp1, fp3)

	if Similar(fp1, fp3, dist-1) {
		t.Errorf("different texts should not be similar at threshold %d (distance is %d)", dist-1, dist)
	}
	if !Similar(fp1, fp3, dist) {
		t.Errorf("should be similar at threshold equal to distance (%d)", dist)
	}
}

func TestNearDuplicate(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"same text", "Great service, fast and friendly!", "great service fast and friendly", true},
		{"unrelated", "Great service, fast and friendly!", "Our bakery opened its doors in 1982 on Main Street", false},
		{"empty side", "", "anything", false},
		{"both empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NearDuplicate(tt.a, tt.b); got != tt.want {
				t.Errorf("NearDuplicate(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDedupe(t *testing.T) {
	in := []string{
		"Best pizza in town!",
		"Lovely staff and a cosy room with a view of the harbour",
		"best pizza in town",
		"",
		"",
	}
	got := Dedupe(in, func(s string) string { return s })
	want := []string{
		"Best pizza in town!",
		"Lovely staff and a cosy room with a view of the harbour",
		"",
		"",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dedupe = %q, want %q", got, want)
	}
}

func TestMakeShingles(t *testing.T) {
	shingles := makeShingles([]string{"a", "b", "c", "d"}, 3)
	expected := []string{"a_b_c", "b_c_d"}

	if !reflect.DeepEqual(shingles, expected) {
		t.Errorf("makeShingles = %v, want %v", shingles, expected)
	}
	if s := makeShingles([]string{"a", "b"}, 3); s != nil {
		t.Errorf("expected nil for fewer tokens than n, got: %v", s)
	}
}
