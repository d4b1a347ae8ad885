package models

// GeneralType is the fallback business type when nothing matches.
const GeneralType = "general"

// ClassificationResult is the business-type decision for one business.
type ClassificationResult struct {
	PrimaryType     string   `json:"primary_type"`
	Confidence      float64  `json:"confidence"`
	SecondaryTags   []string `json:"secondary_tags"`
	MatchedKeywords []string `json:"matched_keywords"`

	// Warning is set only for the general fallback.
	Warning string `json:"warning,omitempty"`
}

// Image roles assigned by the extractor.
const (
	RoleLogo    = "logo"
	RoleHero    = "hero"
	RoleContent = "content"
	RoleGeneral = "general"
)

// ExtractedImage is an image with its inferred role.
type ExtractedImage struct {
	URL  string `json:"url"`
	Alt  string `json:"alt"`
	Type string `json:"type"`
}

// TextContent holds the text fragments worth reusing.
type TextContent struct {
	FullText string `json:"full_text"`
	About    string `json:"about"`
	Services string `json:"services"`
}

// Extraction sub-task names, used as keys in ExtractionMetadata.
const (
	PartColors  = "colors"
	PartLogos   = "logos"
	PartText    = "text"
	PartContact = "contact"
	PartImages  = "images"
)

// ExtractionMetadata tells consumers how far the extraction can be trusted.
type ExtractionMetadata struct {
	TotalColorsFound   int  `json:"total_colors_found"`
	TotalImagesFound   int  `json:"total_images_found"`
	HasLogo            bool `json:"has_logo"`
	HasAboutSection    bool `json:"has_about_section"`
	HasServicesSection bool `json:"has_services_section"`
	HasContactInfo     bool `json:"has_contact_info"`

	// Succeeded reports, per sub-task, whether it ran to completion.
	Succeeded map[string]bool `json:"succeeded"`

	// Errors holds the failure message of sub-tasks that did not.
	Errors map[string]string `json:"errors,omitempty"`
}

// ExtractionResult is the set of reusable brand and content assets.
type ExtractionResult struct {
	Colors   []string           `json:"colors"`
	Logos    []string           `json:"logos"`
	Text     TextContent        `json:"text_content"`
	Contact  ContactInfo        `json:"contact"`
	Images   []ExtractedImage   `json:"images"`
	Metadata ExtractionMetadata `json:"metadata"`
}

// Severity is the tier of a gap sub-report.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// IsPriority reports whether a sub-report with this severity is a priority gap.
func (s Severity) IsPriority() bool {
	return s == SeverityCritical || s == SeverityHigh
}

// CheckReport is one scored quality dimension.
type CheckReport struct {
	Name     string         `json:"name"`
	Score    int            `json:"score"`
	Severity Severity       `json:"severity"`
	Issues   []string       `json:"issues"`
	Details  map[string]any `json:"details,omitempty"`
}

// GapReport is the weighted quality report of a website.
type GapReport struct {
	// Analyzed is false when there was no page to analyze; every other
	// field then holds its zero value.
	Analyzed bool `json:"analyzed"`

	Mobile          CheckReport `json:"mobile"`
	Design          CheckReport `json:"design"`
	SEO             CheckReport `json:"seo"`
	Performance     CheckReport `json:"performance"`
	MissingSections CheckReport `json:"missing_sections"`

	OverallScore    int      `json:"overall_score"`
	PriorityGaps    []string `json:"priority_gaps"`
	Recommendations []string `json:"recommendations"`
	GapCount        int      `json:"gap_count"`
	TotalIssues     int      `json:"total_issues"`
}
