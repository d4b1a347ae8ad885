package gap

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/sitescan/models"
)

// section is a page section with the signal that proves it exists.
type section struct {
	name   string
	detect func(page) bool
}

// Every business site is expected to have these; -15 each when absent.
var universalSections = []section{
	{"contact_form", hasContactForm},
	{"testimonials", rawMatch(`(?i)testimonial|review|customer\s+says|feedback`)},
	{"about", rawMatch(`(?i)about\s+us|who\s+we\s+are|our\s+story|our\s+team`)},
	{"call_to_action", hasElement(`button, a[class*="btn"]`)},
}

// Business-type specific sections; -10 each when absent.
var typeSections = map[string][]section{
	"restaurant": {
		{"menu", rawMatch(`(?i)menu|food|dishes|cuisine`)},
		{"reservation", rawMatch(`(?i)reserv|book\s+table|book\s+now`)},
		{"location_map", rawMatch(`(?i)google.*map|map.*embed|location`)},
	},
	"home_services": {
		{"service_area", rawMatch(`(?i)service\s+area|we\s+serve|coverage`)},
		{"emergency_contact", rawMatch(`(?i)emergency|24/?7|urgent`)},
		{"certifications", rawMatch(`(?i)licensed|insured|certified|accredited`)},
	},
	"professional": {
		{"credentials", rawMatch(`(?i)education|degree|certified|licensed|bar\s+admission`)},
		{"case_studies", rawMatch(`(?i)case\s+study|case\s+studies|portfolio|work|results`)},
		{"consultation", rawMatch(`(?i)consultation|free\s+consult|schedule\s+appointment`)},
	},
	"health_medical": {
		{"appointment_booking", rawMatch(`(?i)appointment|book\s+online|schedule\s+a\s+visit`)},
		{"insurance_info", rawMatch(`(?i)insurance|medicare|nhs|accepted\s+plans`)},
		{"practitioners", rawMatch(`(?i)our\s+(?:team|doctors|dentists|practitioners|therapists)|meet\s+the\s+team`)},
	},
	"beauty_wellness": {
		{"pricing", rawMatch(`(?i)price|pricing|£\s?\d|\$\s?\d`)},
		{"online_booking", rawMatch(`(?i)booking|book\s+(?:now|online|an?\s+appointment)`)},
		{"gallery", rawMatch(`(?i)gallery|portfolio|before\s*(?:&|&amp;|and|/)\s*after`)},
	},
	"fitness": {
		{"class_schedule", rawMatch(`(?i)timetable|class\s+schedule|classes`)},
		{"membership", rawMatch(`(?i)membership|join\s+now|plans`)},
		{"trainers", rawMatch(`(?i)trainers?|coach(?:es)?|instructors?`)},
	},
	"real_estate": {
		{"listings", rawMatch(`(?i)listings?|for\s+sale|to\s+let|for\s+rent`)},
		{"property_search", rawMatch(`(?i)property\s+search|search\s+properties|find\s+a\s+(?:home|property)`)},
		{"valuation", rawMatch(`(?i)valuation|appraisal|home\s+worth`)},
	},
	"hospitality": {
		{"room_booking", rawMatch(`(?i)check\s+availability|book\s+(?:now|a\s+room|your\s+stay)|reserv`)},
		{"amenities", rawMatch(`(?i)amenities|facilities|wi-?fi|breakfast`)},
		{"location_map", rawMatch(`(?i)google.*map|map.*embed|location`)},
	},
}

var formFieldRe = regexp.MustCompile(`(?i)email|phone|name|message`)

// checkMissingSections scores the presence of universal and business-type
// specific sections starting from 100.
func checkMissingSections(p page, businessType string) models.CheckReport {
	score := 100
	issues := []string{}
	missing := []string{}

	for _, s := range universalSections {
		if !s.detect(p) {
			issues = append(issues, "Missing "+humanize(s.name))
			missing = append(missing, s.name)
			score -= 15
		}
	}
	for _, s := range typeSections[businessType] {
		if !s.detect(p) {
			issues = append(issues, fmt.Sprintf("Missing business-specific: %s", humanize(s.name)))
			missing = append(missing, s.name)
			score -= 10
		}
	}

	score = clamp(score)
	return models.CheckReport{
		Name:     CheckMissingSections,
		Score:    score,
		Severity: severityFor(score, defaultTiers, models.SeverityLow),
		Issues:   issues,
		Details: map[string]any{
			"missing_sections": len(missing),
			"missing":          missing,
		},
	}
}

// hasContactForm reports whether any form asks for contact details.
func hasContactForm(p page) bool {
	if p.doc == nil {
		return false
	}
	found := false
	p.doc.Find("form").EachWithBreak(func(_ int, f *goquery.Selection) bool {
		inner, err := f.Html()
		if err == nil && formFieldRe.MatchString(strings.ToLower(inner)) {
			found = true
			return false
		}
		return true
	})
	return found
}
