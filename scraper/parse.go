package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/use-agent/sitescan/htmltext"
	"github.com/use-agent/sitescan/models"
	"github.com/use-agent/sitescan/simhash"
)

// Field caps, in characters.
const (
	maxText         = 5000
	maxHero         = 500
	maxAbout        = 2000
	maxItemName     = 200
	maxItemDesc     = 300
	maxAlt          = 200
	maxAddress      = 200
	maxHours        = 300
	maxTestimonial  = 500
	maxCertLen      = 100
	maxNavLabel     = 50
	minHero         = 20
	minAbout        = 50
	minAboutPara    = 100
	minTestimonial  = 20
	menuItemsPerSec = 20
	cardsPerSection = 15
	maxImages       = 50
	maxCerts        = 10
	maxNavItems     = 10
	maxTestimonials = 5
)

const defaultMenuCategory = "Main Menu"

var (
	aboutKeywords = []string{"we are", "our", "company", "established", "founded", "passion", "mission", "vision"}
	imageSkip     = []string{"icon", "logo", "sprite", "pixel", "arrow", "bullet"}
	certKeywords  = []string{"award", "certified", "certification", "winner", "accredited", "approved",
		"member", "association", "badge", "usda", "halal", "organic", "verified"}

	phoneRe    = regexp.MustCompile(`(?:\+?\d{1,4}[\s-]?)?(?:\(?\d{2,4}\)?[\s-]?)?\d{3,4}[\s-]?\d{3,4}`)
	emailRe    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	postcodeRe = regexp.MustCompile(`[A-Z]{1,2}\d{1,2}\s?\d[A-Z]{2}`)
)

// socialPlatforms are checked in order against every link.
var socialPlatforms = []struct {
	name string
	re   *regexp.Regexp
}{
	{"facebook", regexp.MustCompile(`facebook\.com/[\w\-.]+`)},
	{"instagram", regexp.MustCompile(`instagram\.com/[\w\-.]+`)},
	{"twitter", regexp.MustCompile(`(?:twitter\.com|\bx\.com)/[\w\-.]+`)},
	{"linkedin", regexp.MustCompile(`linkedin\.com/(?:company|in)/[\w\-.]+`)},
	{"youtube", regexp.MustCompile(`youtube\.com/(?:channel/|user/|c/|@)[\w\-.]+`)},
	{"tiktok", regexp.MustCompile(`tiktok\.com/@[\w\-.]+`)},
	{"tripadvisor", regexp.MustCompile(`tripadvisor\.[a-z.]+/.+`)},
}

// Parse derives the structural fields of a page. pageHTML is the markup
// exactly as fetched; stylesheets are not part of it.
func Parse(pageURL, pageHTML string) (*models.ScrapeResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, err
	}
	base, _ := url.Parse(pageURL)
	plain := htmltext.VisibleText(pageHTML)

	result := &models.ScrapeResult{
		URL:            pageURL,
		RawHTML:        pageHTML,
		Text:           htmltext.Truncate(plain, maxText),
		Logo:           parseLogo(doc, base),
		Headlines:      parseHeadlines(doc),
		About:          parseAbout(doc),
		Services:       parseServices(doc),
		Images:         parseImages(doc, base),
		Contact:        parseContact(doc, plain),
		Social:         parseSocial(doc),
		Certifications: parseCertifications(doc),
		Navigation:     parseNavigation(doc),
		Testimonials:   parseTestimonials(doc),
		Doc:            doc,
	}
	if base != nil {
		result.Domain = base.Hostname()
	}
	return result, nil
}

func parseLogo(doc *goquery.Document, base *url.URL) string {
	imgs := doc.FindMatcher(selImg)
	for _, attr := range []string{"alt", "src", "class"} {
		var found string
		imgs.EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if attrContains(s, attr, "logo") {
				found = resolve(base, s.AttrOr("src", ""))
			}
			return found == ""
		})
		if found != "" {
			return found
		}
	}

	for _, sel := range logoContainers {
		if src := resolve(base, doc.FindMatcher(sel).First().AttrOr("src", "")); src != "" {
			return src
		}
	}

	// First image of the first header or nav.
	root := doc.FindMatcher(selNavRoot).First()
	return resolve(base, root.FindMatcher(selImg).First().AttrOr("src", ""))
}

func parseHeadlines(doc *goquery.Document) models.Headlines {
	h := models.Headlines{
		PageTitle:       text(doc.FindMatcher(selTitle).First()),
		MainHeadline:    text(doc.FindMatcher(selH1).First()),
		MetaDescription: strings.TrimSpace(doc.FindMatcher(selMetaDesc).First().AttrOr("content", "")),
	}
	if hero := text(doc.FindMatcher(selHero).First()); htmltext.Len(hero) > minHero {
		h.HeroText = htmltext.Truncate(hero, maxHero)
	}
	return h
}

func parseAbout(doc *goquery.Document) string {
	for _, sel := range aboutSections {
		if t := text(doc.FindMatcher(sel).First()); htmltext.Len(t) > minAbout {
			return htmltext.Truncate(t, maxAbout)
		}
	}

	var about string
	doc.FindMatcher(selParas).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := text(s)
		if htmltext.Len(t) > minAboutPara && containsAny(strings.ToLower(t), aboutKeywords) {
			about = htmltext.Truncate(t, maxAbout)
			return false
		}
		return true
	})
	return about
}

// parseServices collects menu items first, then service cards. Nested
// matching sections would list the same entry twice; later copies are
// dropped.
func parseServices(doc *goquery.Document) []models.ServiceItem {
	items := []models.ServiceItem{}
	seen := make(map[string]bool)
	add := func(item models.ServiceItem) {
		key := item.Kind + "|" + item.Category + "|" + item.Name
		if seen[key] {
			return
		}
		seen[key] = true
		items = append(items, item)
	}

	doc.FindMatcher(selMenuSections).Each(func(_ int, section *goquery.Selection) {
		category := text(section.FindMatcher(selMenuCategory).First())
		if category == "" {
			category = defaultMenuCategory
		}
		entries := section.FindMatcher(selMenuItems)
		entries.Slice(0, min(menuItemsPerSec, entries.Length())).Each(func(_ int, entry *goquery.Selection) {
			if name := text(entry); htmltext.Len(name) > 3 {
				add(models.ServiceItem{
					Name:     htmltext.Truncate(name, maxItemName),
					Category: category,
					Kind:     models.KindMenuItem,
				})
			}
		})
	})

	doc.FindMatcher(selServiceSections).Each(func(_ int, section *goquery.Selection) {
		cards := section.FindMatcher(selServiceCards)
		cards.Slice(0, min(cardsPerSection, cards.Length())).Each(func(_ int, card *goquery.Selection) {
			title := text(card.FindMatcher(selCardTitle).First())
			if title == "" {
				return
			}
			add(models.ServiceItem{
				Name:        title,
				Description: htmltext.Truncate(text(card.FindMatcher(selParas).First()), maxItemDesc),
				Category:    "Services",
				Kind:        models.KindService,
			})
		})
	})
	return items
}

func parseImages(doc *goquery.Document, base *url.URL) []models.ImageRef {
	images := []models.ImageRef{}
	imgs := doc.FindMatcher(selImg)
	imgs.Slice(0, min(maxImages, imgs.Length())).Each(func(_ int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" {
			src = strings.TrimSpace(s.AttrOr("data-src", ""))
		}
		if src == "" || containsAny(strings.ToLower(src), imageSkip) {
			return
		}
		abs := resolve(base, src)
		if abs == "" {
			return
		}
		images = append(images, models.ImageRef{
			URL: abs,
			Alt: htmltext.Truncate(strings.TrimSpace(s.AttrOr("alt", "")), maxAlt),
		})
	})
	return images
}

func parseContact(doc *goquery.Document, body string) models.ContactInfo {
	var c models.ContactInfo

	for _, m := range phoneRe.FindAllString(body, -1) {
		if plausiblePhone(m) {
			c.Phone = strings.TrimSpace(m)
			break
		}
	}
	c.Email = emailRe.FindString(body)

	// Dedicated address blocks win over the footer as a whole.
	for _, sel := range []cascadia.Selector{selAddress, selFooter} {
		doc.FindMatcher(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			t := text(s)
			if postcodeRe.MatchString(t) {
				c.Address = htmltext.Truncate(t, maxAddress)
				return false
			}
			return true
		})
		if c.Address != "" {
			break
		}
	}

	c.Hours = htmltext.Truncate(text(doc.FindMatcher(selHours).First()), maxHours)
	return c
}

// plausiblePhone filters out years, prices and other short digit runs the
// loose phone pattern also matches.
func plausiblePhone(s string) bool {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n >= 7 && n <= 15
}

// parseSocial keeps the first profile link found for each platform.
func parseSocial(doc *goquery.Document) map[string]string {
	social := make(map[string]string)
	doc.FindMatcher(selHrefs).Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		lower := strings.ToLower(href)
		for _, p := range socialPlatforms {
			if p.re.MatchString(lower) {
				if _, ok := social[p.name]; !ok {
					social[p.name] = href
				}
				break
			}
		}
	})
	return social
}

func parseCertifications(doc *goquery.Document) []string {
	certs := []string{}
	seen := make(map[string]bool)
	add := func(s string) {
		if s == "" || seen[s] || len(certs) >= maxCerts {
			return
		}
		seen[s] = true
		certs = append(certs, s)
	}

	doc.FindMatcher(selImgAlt).Each(func(_ int, s *goquery.Selection) {
		alt := strings.TrimSpace(s.AttrOr("alt", ""))
		if containsAny(strings.ToLower(alt), certKeywords) {
			add(alt)
		}
	})
	doc.FindMatcher(selBadgeText).Each(func(_ int, s *goquery.Selection) {
		if !classMatches(s, "cert", "award", "badge") {
			return
		}
		if t := text(s); htmltext.Len(t) < maxCertLen {
			add(t)
		}
	})
	return certs
}

func parseNavigation(doc *goquery.Document) []string {
	nav := []string{}
	links := doc.FindMatcher(selNavRoot).First().FindMatcher(selLinks)
	links.Slice(0, min(maxNavItems, links.Length())).Each(func(_ int, s *goquery.Selection) {
		if t := text(s); t != "" && htmltext.Len(t) < maxNavLabel {
			nav = append(nav, t)
		}
	})
	return nav
}

func parseTestimonials(doc *goquery.Document) []models.Testimonial {
	out := []models.Testimonial{}
	sections := doc.FindMatcher(selTestimonials)
	sections.Slice(0, min(maxTestimonials, sections.Length())).Each(func(_ int, s *goquery.Selection) {
		quote := text(s.FindMatcher(selQuote).First())
		if htmltext.Len(quote) <= minTestimonial {
			return
		}
		author := "Customer"
		s.FindMatcher(selAuthor).EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if classMatches(a, "author", "name", "customer") {
				if t := text(a); t != "" {
					author = t
					return false
				}
			}
			return true
		})
		out = append(out, models.Testimonial{Author: author, Text: htmltext.Truncate(quote, maxTestimonial)})
	})
	return simhash.Dedupe(out, func(t models.Testimonial) string { return t.Text })
}

// resolve makes ref absolute against base. Empty, data: and javascript:
// references resolve to "".
func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	lower := strings.ToLower(ref)
	if ref == "" || strings.HasPrefix(lower, "data:") || strings.HasPrefix(lower, "javascript:") {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if base == nil {
		return u.String()
	}
	return base.ResolveReference(u).String()
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
