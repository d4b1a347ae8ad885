package models

import "strings"

// AnalyzeRequest is the payload for POST /api/v1/analyze.
type AnalyzeRequest struct {
	// URL is the business website. Optional: without it only the
	// classification is meaningful.
	URL string `json:"url,omitempty" binding:"omitempty,url"`

	Category string `json:"category,omitempty"`
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`

	// MaxAge is the oldest cached profile, in milliseconds, the caller
	// accepts. 0 disables the cache lookup.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`

	// IncludeRawHTML keeps the raw markup in the returned profile.
	IncludeRawHTML bool `json:"include_raw_html,omitempty"`
}

// Validate rejects requests that carry no signal at all.
func (r *AnalyzeRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" && strings.TrimSpace(r.Category) == "" && strings.TrimSpace(r.Name) == "" {
		return NewScanError(ErrCodeInvalidInput, "one of url, category or name is required", nil)
	}
	return nil
}

// Business converts the request into pipeline input.
func (r *AnalyzeRequest) Business() Business {
	return Business{
		Name:     strings.TrimSpace(r.Name),
		Category: strings.TrimSpace(r.Category),
		Website:  strings.TrimSpace(r.URL),
		Phone:    strings.TrimSpace(r.Phone),
	}
}

// AnalyzeResponse is the response for POST /api/v1/analyze.
type AnalyzeResponse struct {
	Success     bool         `json:"success"`
	Profile     *Profile     `json:"profile,omitempty"`
	CacheStatus string       `json:"cache_status,omitempty"`
	Error       *ErrorDetail `json:"error,omitempty"`
}

// ClassifyRequest is the payload for POST /api/v1/classify.
type ClassifyRequest struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Text     string `json:"text"`
}

// ClassifyResponse is the response for POST /api/v1/classify.
type ClassifyResponse struct {
	Success        bool                 `json:"success"`
	Classification ClassificationResult `json:"classification"`
	DisplayType    string               `json:"display_type"`
	Palette        []string             `json:"palette"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status       string   `json:"status"`
	Uptime       string   `json:"uptime"`
	Version      string   `json:"version"`
	Engines      []string `json:"engines"`
	CacheEntries int      `json:"cache_entries"`
	Taxonomy     int      `json:"taxonomy_types"`
}
