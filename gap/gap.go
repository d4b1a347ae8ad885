// Package gap scores a scraped website on five weighted quality dimensions
// and turns the weak ones into prioritized recommendations.
package gap

import (
	"fmt"
	"log/slog"

	"github.com/use-agent/sitescan/models"
)

// Priority gap names.
const (
	GapMobile      = "mobile_responsiveness"
	GapDesign      = "modern_design"
	GapSEO         = "seo_optimization"
	GapPerformance = "performance"
	GapSections    = "key_sections"
)

// Aggregate weights in percent; they sum to 100.
const (
	weightMobile      = 30
	weightDesign      = 20
	weightSEO         = 25
	weightPerformance = 15
	weightSections    = 10
)

// dimension ties a sub-report to its priority name and recommendations.
type dimension struct {
	gap       string
	report    *models.CheckReport
	recommend string
	minorNote string
}

// Analyze runs every check over the scrape. businessType selects the
// business-specific section table; businessName is only used for logging.
//
// A nil scrape yields the zero report with Analyzed set to false.
func Analyze(scrape *models.ScrapeResult, businessName, businessType string) models.GapReport {
	if scrape == nil {
		return models.GapReport{}
	}

	p := page{doc: scrape.Document(), raw: scrape.RawHTML}
	report := models.GapReport{
		Analyzed:        true,
		Mobile:          checkMobile(p),
		Design:          checkDesign(p),
		SEO:             checkSEO(p),
		Performance:     checkPerformance(p),
		MissingSections: checkMissingSections(p, businessType),
		PriorityGaps:    []string{},
		Recommendations: []string{},
	}

	report.OverallScore = Aggregate(
		report.Mobile.Score,
		report.Design.Score,
		report.SEO.Score,
		report.Performance.Score,
		report.MissingSections.Score,
	)

	dims := []dimension{
		{GapMobile, &report.Mobile,
			"Implement mobile-first responsive design with proper viewport and media queries",
			"Minor mobile responsiveness improvements needed"},
		{GapDesign, &report.Design,
			"Modernize design with flexbox/grid layouts, contemporary colors, and smooth animations",
			"Minor design refinements suggested"},
		{GapSEO, &report.SEO,
			"Add proper meta tags, structured headings, schema.org markup, and image alt text",
			"Minor SEO enhancements recommended"},
		{GapPerformance, &report.Performance,
			"Optimize loading speed with lazy loading, minification, and reduced external resources",
			"Minor performance optimizations possible"},
		{GapSections, &report.MissingSections,
			fmt.Sprintf("Add missing sections important for %s businesses", businessType),
			"Consider adding the remaining recommended sections"},
	}

	var minor []string
	for _, d := range dims {
		report.TotalIssues += len(d.report.Issues)
		if d.report.Severity.IsPriority() {
			report.PriorityGaps = append(report.PriorityGaps, d.gap)
			report.Recommendations = append(report.Recommendations, d.recommend)
			continue
		}
		if d.report.Score < 100 {
			minor = append(minor, d.minorNote)
		}
	}
	report.Recommendations = append(report.Recommendations, minor...)
	report.GapCount = len(report.PriorityGaps)

	slog.Debug("gap analysis complete",
		"business", businessName,
		"type", businessType,
		"score", report.OverallScore,
		"priority_gaps", report.GapCount,
	)
	return report
}

// Aggregate combines the five sub-scores into the overall score, truncating
// toward zero and clamping to [0, 100].
func Aggregate(mobile, design, seo, performance, sections int) int {
	sum := mobile*weightMobile +
		design*weightDesign +
		seo*weightSEO +
		performance*weightPerformance +
		sections*weightSections
	return clamp(sum / 100)
}
