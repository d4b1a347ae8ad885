package gap

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/sitescan/htmltext"
	"github.com/use-agent/sitescan/models"
)

// Check names as they appear in reports.
const (
	CheckMobile          = "mobile"
	CheckDesign          = "design"
	CheckSEO             = "seo"
	CheckPerformance     = "performance"
	CheckMissingSections = "missing_sections"
)

// page is the view of a scrape the checks work on.
type page struct {
	doc *goquery.Document
	raw string
}

var (
	mediaQueryRe     = regexp.MustCompile(`(?i)@media[^{]+\([^)]*\)`)
	mobileFrameworks = []string{"bootstrap", "tailwind", "foundation", "mobile", "responsive"}
	schemaRe         = regexp.MustCompile(`(?i)schema\.org|itemtype=|@type`)
	lazyLoadRe       = regexp.MustCompile(`(?i)loading=["']lazy["']|lazy-?load`)
)

// minifyWindow is how much of the markup is inspected for comments and
// blank lines.
const minifyWindow = 1000

// checkMobile scores mobile responsiveness starting from 100.
func checkMobile(p page) models.CheckReport {
	score := 100
	issues := []string{}

	hasViewport := hasMeta(p.doc, "viewport")
	if !hasViewport {
		issues = append(issues, "Missing viewport meta tag for mobile devices")
		score -= 40
	}
	hasMediaQueries := mediaQueryRe.MatchString(p.raw)
	if !hasMediaQueries {
		issues = append(issues, "No CSS media queries detected (likely not responsive)")
		score -= 30
	}
	lower := strings.ToLower(p.raw)
	hasFramework := false
	for _, w := range mobileFrameworks {
		if strings.Contains(lower, w) {
			hasFramework = true
			break
		}
	}
	if !hasFramework {
		issues = append(issues, "No mobile-friendly CSS framework detected")
		score -= 20
	}

	score = clamp(score)
	return models.CheckReport{
		Name:     CheckMobile,
		Score:    score,
		Severity: severityFor(score, mobileTiers, models.SeverityMedium),
		Issues:   issues,
		Details: map[string]any{
			"has_viewport":         hasViewport,
			"has_media_queries":    hasMediaQueries,
			"has_mobile_framework": hasFramework,
		},
	}
}

// feature is a named design signal.
type feature struct {
	name   string
	detect func(page) bool
}

func rawMatch(expr string) func(page) bool {
	re := regexp.MustCompile(expr)
	return func(p page) bool { return re.MatchString(p.raw) }
}

func hasElement(selector string) func(page) bool {
	return func(p page) bool { return p.doc != nil && p.doc.Find(selector).Length() > 0 }
}

var flashRe = regexp.MustCompile(`(?i)\.swf\b|shockwave-flash`)

// embedsFlash reports an <object> or <embed> that loads a Flash movie. A
// plain link to a .swf file does not count.
func embedsFlash(p page) bool {
	if p.doc == nil {
		return false
	}
	found := false
	p.doc.Find("object, embed, object param").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, attr := range []string{"data", "src", "type", "value"} {
			if flashRe.MatchString(s.AttrOr(attr, "")) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

var modernFeatures = []feature{
	{"flexbox", rawMatch(`(?i)display\s*:\s*(?:inline-)?flex`)},
	{"grid", rawMatch(`(?i)display\s*:\s*(?:inline-)?grid`)},
	{"css_variables", rawMatch(`var\(--[^)]+\)`)},
	{"modern_fonts", rawMatch(`(?i)font-family\s*:[^;]*(?:sans-serif|roboto|open\s+sans|lato|montserrat)`)},
	{"modern_colors", rawMatch(`(?i)rgba?\s*\(`)},
	{"transitions", rawMatch(`(?i)transition\s*:`)},
	{"animations", rawMatch(`(?i)@keyframes|animation\s*:`)},
}

var outdatedFeatures = []feature{
	{"tables_layout", hasElement("table table, body > table")},
	{"frames", rawMatch(`(?i)<frame|<frameset`)},
	{"flash", embedsFlash},
	{"marquee", hasElement("marquee")},
	{"font_tags", hasElement("font")},
	{"inline_styles_heavy", func(p page) bool { return p.doc != nil && p.doc.Find("[style]").Length() > 50 }},
	{"comic_sans", rawMatch(`(?i)comic\s+sans`)},
}

// checkDesign scores design modernity: +10 per modern feature, -15 per outdated
// one, clamped to [0, 100].
func checkDesign(p page) models.CheckReport {
	issues := []string{}
	modern := []string{}
	for _, f := range modernFeatures {
		if f.detect(p) {
			modern = append(modern, f.name)
		}
	}
	outdated := 0
	for _, f := range outdatedFeatures {
		if f.detect(p) {
			outdated++
			issues = append(issues, "Outdated: "+humanize(f.name))
		}
	}

	if len(modern) < 2 {
		issues = append(issues, "Very few modern CSS features detected")
	}
	if outdated == 0 && len(modern) < 3 {
		issues = append(issues, "Design appears basic/minimal (not necessarily bad, but could be enhanced)")
	}

	score := clamp(len(modern)*10 - outdated*15)
	return models.CheckReport{
		Name:     CheckDesign,
		Score:    score,
		Severity: severityFor(score, designTiers, models.SeverityLow),
		Issues:   issues,
		Details: map[string]any{
			"modern_indicators":   len(modern),
			"outdated_indicators": outdated,
			"modern_features":     modern,
		},
	}
}

// checkSEO scores on-page search basics starting from 100.
func checkSEO(p page) models.CheckReport {
	score := 100
	issues := []string{}

	title := pageTitle(p)
	switch n := htmltext.Len(title); {
	case n < 10:
		issues = append(issues, "Missing or too-short title tag")
		score -= 20
	case n > 60:
		issues = append(issues, "Title tag too long (>60 chars)")
		score -= 5
	}

	hasDescription := htmltext.Len(metaContent(p.doc, "description")) >= 20
	if !hasDescription {
		issues = append(issues, "Missing meta description")
		score -= 20
	}

	h1Count := count(p.doc, "h1")
	switch {
	case h1Count == 0:
		issues = append(issues, "No H1 heading found")
		score -= 15
	case h1Count > 1:
		issues = append(issues, "Multiple H1 headings (should be only one)")
		score -= 5
	}
	if count(p.doc, "h2") == 0 {
		issues = append(issues, "No H2 headings found (poor content structure)")
		score -= 10
	}

	missingAlt := count(p.doc, "img:not([alt])")
	if missingAlt > 3 {
		issues = append(issues, fmt.Sprintf("%d images missing alt attributes", missingAlt))
		score -= 15
	}

	hasSchema := schemaRe.MatchString(p.raw)
	if !hasSchema {
		issues = append(issues, "No schema.org structured data found")
		score -= 15
	}

	score = clamp(score)
	return models.CheckReport{
		Name:     CheckSEO,
		Score:    score,
		Severity: severityFor(score, defaultTiers, models.SeverityLow),
		Issues:   issues,
		Details: map[string]any{
			"has_title":            title != "",
			"has_meta_description": hasDescription,
			"h1_count":             h1Count,
			"has_schema":           hasSchema,
			"images_without_alt":   missingAlt,
		},
	}
}

// checkPerformance estimates load cost from markup size and resource counts,
// starting from 100.
func checkPerformance(p page) models.CheckReport {
	score := 100
	issues := []string{}

	sizeKB := float64(len(p.raw)) / 1024
	switch {
	case sizeKB > 500:
		issues = append(issues, fmt.Sprintf("Large HTML size (%.0fKB)", sizeKB))
		score -= 20
	case sizeKB > 200:
		issues = append(issues, fmt.Sprintf("Moderate HTML size (%.0fKB)", sizeKB))
		score -= 10
	}

	scripts := count(p.doc, "script[src]")
	if scripts > 10 {
		issues = append(issues, fmt.Sprintf("Many external scripts (%d)", scripts))
		score -= 15
	}
	stylesheets := stylesheetLinks(p.doc)
	if stylesheets > 5 {
		issues = append(issues, fmt.Sprintf("Many external stylesheets (%d)", stylesheets))
		score -= 10
	}

	hasLazy := lazyLoadRe.MatchString(p.raw)
	if !hasLazy {
		issues = append(issues, "No lazy loading detected for images")
		score -= 10
	}

	head := p.raw
	if len(head) > minifyWindow {
		head = head[:minifyWindow]
	}
	minified := !strings.Contains(head, "<!--") &&
		!strings.Contains(head, "\n\n") &&
		!strings.Contains(head, "\r\n\r\n")
	if !minified {
		issues = append(issues, "HTML not minified (contains comments/excess whitespace)")
		score -= 10
	}

	score = clamp(score)
	return models.CheckReport{
		Name:     CheckPerformance,
		Score:    score,
		Severity: severityFor(score, defaultTiers, models.SeverityLow),
		Issues:   issues,
		Details: map[string]any{
			"page_size_kb":     math.Round(sizeKB*10) / 10,
			"script_count":     scripts,
			"stylesheet_count": stylesheets,
			"has_lazy_loading": hasLazy,
			"is_minified":      minified,
		},
	}
}

func pageTitle(p page) string {
	if p.doc != nil {
		if t := p.doc.Find("title").First(); t.Length() > 0 {
			return htmltext.Collapse(t.Text())
		}
		return ""
	}
	return htmltext.Title(p.raw)
}

// metaContent returns the trimmed content of the first <meta name=...>
// whose name matches case-insensitively.
func metaContent(doc *goquery.Document, name string) string {
	if doc == nil {
		return ""
	}
	var content string
	doc.Find("meta[name]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.EqualFold(strings.TrimSpace(s.AttrOr("name", "")), name) {
			content = strings.TrimSpace(s.AttrOr("content", ""))
			return false
		}
		return true
	})
	return content
}

func hasMeta(doc *goquery.Document, name string) bool {
	if doc == nil {
		return false
	}
	return doc.Find("meta[name]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.EqualFold(strings.TrimSpace(s.AttrOr("name", "")), name)
	}).Length() > 0
}

func stylesheetLinks(doc *goquery.Document) int {
	if doc == nil {
		return 0
	}
	return doc.Find("link[rel]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		for _, rel := range strings.Fields(s.AttrOr("rel", "")) {
			if strings.EqualFold(rel, "stylesheet") {
				return true
			}
		}
		return false
	}).Length()
}

func count(doc *goquery.Document, selector string) int {
	if doc == nil {
		return 0
	}
	return doc.Find(selector).Length()
}

func humanize(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}
