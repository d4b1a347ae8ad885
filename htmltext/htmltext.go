// Package htmltext turns markup into plain text with the x/net/html
// tokenizer. It never builds a tree, so it copes with arbitrarily broken
// documents.
package htmltext

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// skipped elements never contribute visible text.
var skipped = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"title":    true,
	"svg":      true,
}

// VisibleText returns the human-visible text of a document with
// whitespace collapsed to single spaces.
func VisibleText(markup string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(markup))
	var buf strings.Builder
	skipDepth := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return Collapse(buf.String())
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if skipped[string(tn)] {
				skipDepth++
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			if skipped[string(tn)] && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				buf.Write(tokenizer.Text())
				buf.WriteByte(' ')
			}
		}
	}
}

// Title returns the text of the first <title> element, or "".
func Title(markup string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) != "title" {
				continue
			}
			if tokenizer.Next() == html.TextToken {
				return Collapse(string(tokenizer.Text()))
			}
			return ""
		}
	}
}

// Collapse trims s and folds every whitespace run into one space.
func Collapse(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Len is the length of s in runes.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}
