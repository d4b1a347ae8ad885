package extractor

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const maxColors = 8

var (
	hexColorRe    = regexp.MustCompile(`#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})\b`)
	rgbColorRe    = regexp.MustCompile(`rgba?\s*\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)(?:\s*,\s*[\d.]+)?\s*\)`)
	cssColorRe    = regexp.MustCompile(`(?i)(?:background-color|color|border-color|fill|stroke)\s*:\s*(#?[0-9a-fA-F]{3,6}|rgba?\([^)]+\))`)
	inlineColorRe = regexp.MustCompile(`(?i)style\s*=\s*["'][^"']*(?:background-color|color)\s*:\s*([^;"']+)`)
	digitsRe      = regexp.MustCompile(`\d+`)
)

// Colors returns up to eight dominant colors of the markup as uppercase
// #RRGGBB values, most frequent first. Near-white and near-black values are
// dropped. Ties keep the order in which the colors were first seen.
func Colors(markup string) []string {
	var found []string

	// Literal hex values anywhere in the markup. "&#039;" is a character
	// reference, not a color.
	for _, loc := range hexColorRe.FindAllStringIndex(markup, -1) {
		if loc[0] > 0 && markup[loc[0]-1] == '&' {
			continue
		}
		if c, ok := normalizeHex(markup[loc[0]:loc[1]]); ok {
			found = append(found, c)
		}
	}
	// Values of color-bearing CSS properties.
	for _, m := range cssColorRe.FindAllStringSubmatch(markup, -1) {
		v := m[1]
		switch {
		case strings.HasPrefix(v, "#"):
			if c, ok := normalizeHex(v); ok {
				found = append(found, c)
			}
		case strings.HasPrefix(strings.ToLower(v), "rgb"):
			if c, ok := rgbToHex(digitsRe.FindAllString(v, 3)); ok {
				found = append(found, c)
			}
		}
	}
	// Inline style attributes.
	for _, m := range inlineColorRe.FindAllStringSubmatch(markup, -1) {
		v := strings.TrimSpace(m[1])
		if strings.HasPrefix(v, "#") {
			if c, ok := normalizeHex(v); ok {
				found = append(found, c)
			}
		}
	}
	// rgb()/rgba() forms.
	for _, m := range rgbColorRe.FindAllStringSubmatch(markup, -1) {
		if c, ok := rgbToHex(m[1:4]); ok {
			found = append(found, c)
		}
	}

	return rankColors(found)
}

func rankColors(found []string) []string {
	counts := make(map[string]int)
	var order []string
	for _, c := range found {
		if isNearWhiteOrBlack(c) {
			continue
		}
		if counts[c] == 0 {
			order = append(order, c)
		}
		counts[c]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxColors {
		order = order[:maxColors]
	}
	if order == nil {
		return []string{}
	}
	return order
}

// normalizeHex expands #RGB to #RRGGBB and upper-cases the result. Anything
// that is not a 3- or 6-digit hex value is rejected.
func normalizeHex(v string) (string, bool) {
	h := strings.TrimPrefix(strings.TrimSpace(v), "#")
	for _, r := range h {
		if !isHexDigit(r) {
			return "", false
		}
	}
	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	case 6:
	default:
		return "", false
	}
	return "#" + strings.ToUpper(h), true
}

func rgbToHex(parts []string) (string, bool) {
	if len(parts) < 3 {
		return "", false
	}
	var rgb [3]int
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n > 255 {
			return "", false
		}
		rgb[i] = n
	}
	return fmt.Sprintf("#%02X%02X%02X", rgb[0], rgb[1], rgb[2]), true
}

func isNearWhiteOrBlack(c string) bool {
	r, err1 := strconv.ParseUint(c[1:3], 16, 8)
	g, err2 := strconv.ParseUint(c[3:5], 16, 8)
	b, err3 := strconv.ParseUint(c[5:7], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return true
	}
	return (r > 250 && g > 250 && b > 250) || (r < 5 && g < 5 && b < 5)
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
