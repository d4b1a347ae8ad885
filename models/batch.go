package models

import "sync"

// BatchRequest is the payload for POST /api/v1/batch/analyze.
type BatchRequest struct {
	// Businesses is the list of businesses to analyze. Required.
	Businesses []AnalyzeRequest `json:"businesses" binding:"required,min=1,max=100,dive"`

	// WebhookURL receives a signed batch.completed event when the job finishes.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`

	// WebhookSecret signs the webhook body. Defaults to the server secret.
	WebhookSecret string `json:"webhook_secret,omitempty"`

	// IncludeRawHTML keeps the raw markup in the returned profiles.
	IncludeRawHTML bool `json:"include_raw_html,omitempty"`
}

// BatchResponse is the immediate response for POST /api/v1/batch/analyze.
type BatchResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// BatchStatusResponse is the response for GET /api/v1/batch/:id.
type BatchStatusResponse struct {
	ID        string     `json:"id"`
	Status    string     `json:"status"`
	Completed int        `json:"completed"`
	Scraped   int        `json:"scraped"`
	Total     int        `json:"total"`
	Results   []*Profile `json:"results,omitempty"`
}

// Batch job states.
const (
	BatchProcessing = "processing"
	BatchCompleted  = "completed"
	BatchPartial    = "partial"
	BatchFailed     = "failed"
)

// BatchJob tracks an in-progress batch analysis.
type BatchJob struct {
	ID        string
	Total     int
	CreatedAt int64 // unix timestamp

	mu        sync.Mutex
	status    string
	completed int
	scraped   int
	results   []*Profile
}

// NewBatchJob creates a job in the processing state.
func NewBatchJob(id string, total int, createdAt int64) *BatchJob {
	return &BatchJob{
		ID:        id,
		Total:     total,
		CreatedAt: createdAt,
		status:    BatchProcessing,
		results:   make([]*Profile, total),
	}
}

// Record stores the profile for input position i.
func (j *BatchJob) Record(i int, p *Profile) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.results[i] = p
	j.completed++
	if p != nil && p.Scraped {
		j.scraped++
	}
}

// Finish derives the final status from how many websites were scraped.
func (j *BatchJob) Finish() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	switch {
	case j.scraped == j.Total:
		j.status = BatchCompleted
	case j.scraped == 0:
		j.status = BatchFailed
	default:
		j.status = BatchPartial
	}
	return j.status
}

// Snapshot returns a consistent view of the job.
func (j *BatchJob) Snapshot() BatchStatusResponse {
	j.mu.Lock()
	defer j.mu.Unlock()
	results := make([]*Profile, len(j.results))
	copy(results, j.results)
	return BatchStatusResponse{
		ID:        j.ID,
		Status:    j.status,
		Completed: j.completed,
		Scraped:   j.scraped,
		Total:     j.Total,
		Results:   results,
	}
}
