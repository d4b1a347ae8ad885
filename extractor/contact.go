package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/sitescan/models"
)

// Phone patterns in priority order; the first valid match wins.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\+?\d{1,4}[-.\s]?\(?\d{1,4}\)?[-.\s]?\d{1,4}[-.\s]?\d{1,9}`),
	regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}`),
	regexp.MustCompile(`\d{5}\s?\d{6}`),
}

var (
	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	placeholderEmailWords = []string{"noreply", "example", "test", "spam"}
	imageExtensions       = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp"}
)

// Contact finds a phone number and an email address on the page. Phone
// numbers come from tel: links first, then from the visible text; the known
// phone is used only when the page shows none. Address and opening hours are
// taken from the scrape.
func Contact(doc *goquery.Document, scrape *models.ScrapeResult, plain, knownPhone string) models.ContactInfo {
	info := models.ContactInfo{
		Address: scrape.Contact.Address,
		Hours:   scrape.Contact.Hours,
	}

	info.Phone = telLinkPhone(doc)
	if info.Phone == "" {
		info.Phone = textPhone(plain)
	}
	if info.Phone == "" {
		info.Phone = scrape.Contact.Phone
	}
	if info.Phone == "" {
		info.Phone = strings.TrimSpace(knownPhone)
	}

	info.Email = Email(scrape.RawHTML)
	if info.Email == "" && usableEmail(scrape.Contact.Email) {
		info.Email = scrape.Contact.Email
	}
	return info
}

func telLinkPhone(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	var phone string
	doc.Find(`a[href^="tel:"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href := strings.TrimSpace(strings.TrimPrefix(s.AttrOr("href", ""), "tel:"))
		if validPhone(href) {
			phone = href
			return false
		}
		return true
	})
	return phone
}

func textPhone(text string) string {
	for _, re := range phonePatterns {
		for _, m := range re.FindAllString(text, -1) {
			if m = strings.TrimSpace(m); validPhone(m) {
				return m
			}
		}
	}
	return ""
}

// validPhone accepts numbers with 7 to 15 digits.
func validPhone(s string) bool {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n >= 7 && n <= 15
}

// Email returns the first address in the markup that does not look like a
// placeholder or an image file name.
func Email(markup string) string {
	for _, m := range emailRe.FindAllString(markup, -1) {
		if usableEmail(m) {
			return m
		}
	}
	return ""
}

func usableEmail(addr string) bool {
	lower := strings.ToLower(addr)
	return lower != "" && !containsAny(lower, placeholderEmailWords) && !hasAnySuffix(lower, imageExtensions)
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}
