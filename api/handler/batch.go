package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/use-agent/sitescan/models"
	"github.com/use-agent/sitescan/webhook"
)

// batchStore holds all in-flight and completed batch jobs.
var batchStore sync.Map

// batchTTL is how long finished and unfinished jobs stay queryable.
const batchTTL = time.Hour

func init() {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for now := range ticker.C {
			expireBatches(now)
		}
	}()
}

func expireBatches(now time.Time) {
	cutoff := now.Add(-batchTTL).Unix()
	batchStore.Range(func(key, value any) bool {
		if value.(*models.BatchJob).CreatedAt < cutoff {
			batchStore.Delete(key)
		}
		return true
	})
}

// BatchOptions configures batch handling.
type BatchOptions struct {
	// Workers bounds how many businesses of one batch run at once.
	Workers int

	// MaxBatch is the largest accepted batch.
	MaxBatch int

	// WebhookSecret signs webhooks when the request carries no secret.
	WebhookSecret string
}

// PostBatch returns a handler for POST /api/v1/batch/analyze. The job runs
// in the background; its progress is polled through GetBatch.
func PostBatch(a Analyzer, sender *webhook.Sender, opts BatchOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, models.NewScanError(models.ErrCodeInvalidInput, err.Error(), err))
			return
		}
		if opts.MaxBatch > 0 && len(req.Businesses) > opts.MaxBatch {
			respondError(c, models.NewScanError(models.ErrCodeInvalidInput,
				fmt.Sprintf("maximum %d businesses per batch", opts.MaxBatch), nil))
			return
		}

		businesses := make([]models.Business, len(req.Businesses))
		for i := range req.Businesses {
			if err := req.Businesses[i].Validate(); err != nil {
				respondError(c, models.NewScanError(models.ErrCodeInvalidInput,
					fmt.Sprintf("businesses[%d]: %s", i, models.AsScanError(err).Message), err))
				return
			}
			businesses[i] = req.Businesses[i].Business()
		}

		job := models.NewBatchJob("batch-"+uuid.NewString(), len(businesses), time.Now().Unix())
		batchStore.Store(job.ID, job)

		go runBatch(a, sender, opts, job, businesses, req)

		c.JSON(http.StatusOK, models.BatchResponse{
			ID:     job.ID,
			Status: models.BatchProcessing,
			Total:  job.Total,
		})
	}
}

// GetBatch returns a handler for GET /api/v1/batch/:id.
func GetBatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		val, ok := batchStore.Load(c.Param("id"))
		if !ok {
			respondError(c, models.NewScanError(models.ErrCodeNotFound, "batch job not found", nil))
			return
		}
		c.JSON(http.StatusOK, val.(*models.BatchJob).Snapshot())
	}
}

func runBatch(a Analyzer, sender *webhook.Sender, opts BatchOptions, job *models.BatchJob, businesses []models.Business, req models.BatchRequest) {
	a.RunEach(context.Background(), businesses, opts.Workers, func(i int, p *models.Profile) {
		job.Record(i, present(p, req.IncludeRawHTML))
	})
	status := job.Finish()
	snap := job.Snapshot()

	slog.Info("batch job finished",
		"id", job.ID,
		"status", status,
		"scraped", snap.Scraped,
		"total", job.Total,
	)

	if req.WebhookURL == "" || sender == nil {
		return
	}
	secret := req.WebhookSecret
	if secret == "" {
		secret = opts.WebhookSecret
	}
	sender.DeliverAsync(req.WebhookURL, secret, &webhook.Event{
		Type:      webhook.EventBatchCompleted,
		JobID:     job.ID,
		Timestamp: time.Now().Unix(),
		Data:      snap,
	})
}
