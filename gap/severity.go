package gap

import "github.com/use-agent/sitescan/models"

// tier maps scores strictly below a bound to a severity.
type tier struct {
	below    int
	severity models.Severity
}

// Severity bands per check. Scores at or above the last bound get the
// band's default.
var (
	mobileTiers = []tier{
		{40, models.SeverityCritical},
		{70, models.SeverityHigh},
	}
	designTiers = []tier{
		{30, models.SeverityCritical},
		{60, models.SeverityHigh},
		{80, models.SeverityMedium},
	}
	// Shared by seo, performance and missing sections.
	defaultTiers = []tier{
		{50, models.SeverityHigh},
		{75, models.SeverityMedium},
	}
)

func severityFor(score int, tiers []tier, otherwise models.Severity) models.Severity {
	for _, t := range tiers {
		if score < t.below {
			return t.severity
		}
	}
	return otherwise
}

func clamp(score int) int {
	return max(0, min(100, score))
}
