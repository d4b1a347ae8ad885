package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/use-agent/sitescan/htmltext"
)

// Selector tables are compiled once; goquery accepts them through
// FindMatcher.
var (
	selTitle    = cascadia.MustCompile("title")
	selH1       = cascadia.MustCompile("h1")
	selMetaDesc = cascadia.MustCompile(`meta[name="description"]`)
	selHero     = cascadia.MustCompile(`.hero, .banner, .jumbotron, #hero, [class*="hero"]`)
	selImg      = cascadia.MustCompile("img")
	selNavRoot  = cascadia.MustCompile("nav, header")
	selLinks    = cascadia.MustCompile("a")
	selHrefs    = cascadia.MustCompile("a[href]")
	selParas    = cascadia.MustCompile("p")
	selCSSLinks = cascadia.MustCompile(`link[rel~="stylesheet"][href]`)

	// logoContainers are tried in order after the attribute passes.
	logoContainers = []cascadia.Selector{
		cascadia.MustCompile(".logo img"),
		cascadia.MustCompile("#logo img"),
		cascadia.MustCompile("header img:first-of-type"),
		cascadia.MustCompile(".navbar-brand img"),
		cascadia.MustCompile(".site-logo img"),
		cascadia.MustCompile(".brand img"),
	}

	aboutSections = []cascadia.Selector{
		cascadia.MustCompile("#about"),
		cascadia.MustCompile(".about"),
		cascadia.MustCompile(`[class*="about"]`),
		cascadia.MustCompile("#company"),
		cascadia.MustCompile(".company-info"),
		cascadia.MustCompile("#story"),
		cascadia.MustCompile(".our-story"),
	}

	selMenuSections    = cascadia.MustCompile(`[class*="menu"], [id*="menu"]`)
	selMenuCategory    = cascadia.MustCompile("h2, h3, h4")
	selMenuItems       = cascadia.MustCompile(`li, .menu-item, [class*="dish"]`)
	selServiceSections = cascadia.MustCompile(`[class*="service"], [id*="service"], [class*="offering"]`)
	selServiceCards    = cascadia.MustCompile(`div[class*="service"], div[class*="card"], div[class*="item"], article[class*="service"], article[class*="card"], article[class*="item"], li[class*="service"], li[class*="card"], li[class*="item"]`)
	selCardTitle       = cascadia.MustCompile("h3, h4, h5, strong")

	selAddress = cascadia.MustCompile(`.address, .location, [class*="address"], [class*="location"]`)
	selFooter  = cascadia.MustCompile("footer")
	selHours   = cascadia.MustCompile(`[class*="hours"], [class*="opening"]`)

	selImgAlt    = cascadia.MustCompile("img[alt]")
	selBadgeText = cascadia.MustCompile("span[class], div[class], p[class]")

	selTestimonials = cascadia.MustCompile(`[class*="testimonial"], [class*="review"], [class*="feedback"]`)
	selAuthor       = cascadia.MustCompile("cite[class], span[class], strong[class], h4[class], h5[class]")
	selQuote        = cascadia.MustCompile("p, blockquote")
)

// text returns the collapsed text of a selection.
func text(s *goquery.Selection) string {
	return htmltext.Collapse(s.Text())
}

// attrContains reports whether the attribute contains needle, ignoring case.
func attrContains(s *goquery.Selection, attr, needle string) bool {
	v, ok := s.Attr(attr)
	return ok && strings.Contains(strings.ToLower(v), needle)
}

// classMatches reports whether the class attribute contains any of needles,
// ignoring case.
func classMatches(s *goquery.Selection, needles ...string) bool {
	class := strings.ToLower(s.AttrOr("class", ""))
	for _, n := range needles {
		if strings.Contains(class, n) {
			return true
		}
	}
	return false
}
