package models

// Business is the input of one pipeline run.
type Business struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Website  string `json:"website"`

	// Phone is a known phone number, used when the site shows none.
	Phone string `json:"phone,omitempty"`
}

// Profile is the combined output of one pipeline run.
type Profile struct {
	Business Business `json:"business"`

	// Scraped is false when the website could not be fetched.
	Scraped     bool          `json:"scraped"`
	ScrapeError *ErrorDetail  `json:"scrape_error,omitempty"`
	Scrape      *ScrapeResult `json:"scrape,omitempty"`

	Classification ClassificationResult `json:"classification"`
	DisplayType    string               `json:"display_type"`
	Extraction     ExtractionResult     `json:"extraction"`
	Gaps           GapReport            `json:"gaps"`

	// Palette is the extracted colors, or the business-type fallback
	// palette when none were found.
	Palette []string `json:"palette"`

	Timing ProfileTiming `json:"timing"`
}

// ProfileTiming breaks down where a pipeline run spent its time.
type ProfileTiming struct {
	TotalMs    int64 `json:"total_ms"`
	FetchMs    int64 `json:"fetch_ms"`
	AnalysisMs int64 `json:"analysis_ms"`
}

// WithoutRawHTML returns a shallow copy whose scrape has no raw markup.
func (p *Profile) WithoutRawHTML() *Profile {
	if p == nil || p.Scrape == nil || p.Scrape.RawHTML == "" {
		return p
	}
	cp := *p
	sc := *p.Scrape
	sc.RawHTML = ""
	cp.Scrape = &sc
	return &cp
}
