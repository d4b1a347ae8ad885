package extractor

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Logos returns candidate logo URLs: images whose class, alt or id mentions
// "logo", then images inside logo links. URLs are resolved against base and
// de-duplicated in discovery order.
func Logos(doc *goquery.Document, base *url.URL) []string {
	logos := []string{}
	seen := make(map[string]bool)
	add := func(s *goquery.Selection) {
		src, _ := s.Attr("src")
		u, ok := resolve(base, src)
		if !ok || seen[u] {
			return
		}
		seen[u] = true
		logos = append(logos, u)
	}

	imgs := doc.Find("img")
	for _, attr := range []string{"class", "alt", "id"} {
		imgs.Each(func(_ int, s *goquery.Selection) {
			if v, ok := s.Attr(attr); ok && strings.Contains(strings.ToLower(v), "logo") {
				add(s)
			}
		})
	}
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		if v, ok := a.Attr("class"); ok && strings.Contains(strings.ToLower(v), "logo") {
			a.Find("img").Each(func(_ int, s *goquery.Selection) { add(s) })
		}
	})
	return logos
}

// resolve turns ref into an absolute URL. Empty, inline data and script
// references are rejected.
func resolve(base *url.URL, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	lower := strings.ToLower(ref)
	if ref == "" || strings.HasPrefix(lower, "data:") || strings.HasPrefix(lower, "javascript:") {
		return "", false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	if base == nil {
		return u.String(), true
	}
	return base.ResolveReference(u).String(), true
}
