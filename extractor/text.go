package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/sitescan/htmltext"
	"github.com/use-agent/sitescan/models"
	"github.com/use-agent/sitescan/simhash"
)

const (
	maxFullText    = 5000
	maxSectionText = 500
	minSectionText = 50
)

var (
	aboutHeadingRe    = regexp.MustCompile(`(?i)\b(?:about\s+us|about|who\s+we\s+are|our\s+story)\b`)
	servicesHeadingRe = regexp.MustCompile(`(?i)\b(?:our\s+services|services|what\s+we\s+do|offerings)\b`)

	aboutTextRe    = regexp.MustCompile(`(?i)(?:about\s+us|about|who\s+we\s+are|our\s+story)[\s:]*([^.]{50,500})`)
	servicesTextRe = regexp.MustCompile(`(?i)(?:our\s+services|services|what\s+we\s+do|offerings)[\s:]*([^.]{50,500})`)
)

// Text returns a sample of the page's plain text and its about and services
// fragments. A section is looked up under a matching heading first, then by
// keyword in the plain text. A services fragment that repeats the about
// fragment is dropped.
func Text(doc *goquery.Document, plain string) models.TextContent {
	out := models.TextContent{
		FullText: htmltext.Truncate(plain, maxFullText),
	}

	out.About = section(doc, aboutHeadingRe, plain, aboutTextRe)
	out.Services = section(doc, servicesHeadingRe, plain, servicesTextRe)
	if simhash.NearDuplicate(out.About, out.Services) {
		out.Services = ""
	}
	return out
}

func section(doc *goquery.Document, heading *regexp.Regexp, plain string, fallback *regexp.Regexp) string {
	if doc != nil {
		if s := underHeading(doc, heading); s != "" {
			return s
		}
	}
	if m := fallback.FindStringSubmatch(plain); m != nil {
		return htmltext.Truncate(htmltext.Collapse(m[1]), maxSectionText)
	}
	return ""
}

// underHeading returns the text following the first h1-h4 whose text matches
// re, up to the next heading. When the siblings carry too little text the
// heading's container is used instead.
func underHeading(doc *goquery.Document, re *regexp.Regexp) string {
	var found string
	doc.Find("h1, h2, h3, h4").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		title := htmltext.Collapse(h.Text())
		if !re.MatchString(title) {
			return true
		}

		text := htmltext.Collapse(h.NextUntil("h1, h2, h3, h4").Text())
		if parent := h.Parent(); htmltext.Len(text) < minSectionText && goquery.NodeName(parent) != "body" {
			container := htmltext.Collapse(parent.Text())
			text = strings.TrimSpace(strings.Replace(container, title, "", 1))
		}
		if htmltext.Len(text) < minSectionText {
			return true
		}
		found = htmltext.Truncate(text, maxSectionText)
		return false
	})
	return found
}
