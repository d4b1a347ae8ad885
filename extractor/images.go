package extractor

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/sitescan/models"
)

const maxImages = 15

var (
	skipImageWords = []string{"icon", "pixel", "track", "1x1", "spacer"}

	imageRoles = []struct {
		role  string
		words []string
	}{
		{models.RoleLogo, []string{"logo", "brand"}},
		{models.RoleHero, []string{"hero", "banner", "header"}},
		{models.RoleContent, []string{"product", "service", "portfolio"}},
	}
)

// Images returns up to 15 page images with an inferred role. Tracking pixels,
// icons and spacers are skipped; URLs are resolved and de-duplicated.
func Images(doc *goquery.Document, base *url.URL) []models.ExtractedImage {
	images := []models.ExtractedImage{}
	seen := make(map[string]bool)

	doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" || strings.HasPrefix(strings.ToLower(src), "data:") {
			src = strings.TrimSpace(s.AttrOr("data-src", ""))
		}
		if containsAny(strings.ToLower(src), skipImageWords) {
			return true
		}
		u, ok := resolve(base, src)
		if !ok || seen[u] {
			return true
		}
		seen[u] = true

		alt := strings.TrimSpace(s.AttrOr("alt", ""))
		images = append(images, models.ExtractedImage{
			URL:  u,
			Alt:  alt,
			Type: imageRole(src, alt),
		})
		return len(images) < maxImages
	})
	return images
}

func imageRole(src, alt string) string {
	hay := strings.ToLower(src + " " + alt)
	for _, r := range imageRoles {
		if containsAny(hay, r.words) {
			return r.role
		}
	}
	return models.RoleGeneral
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
