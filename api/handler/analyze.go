package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/sitescan/cache"
	"github.com/use-agent/sitescan/models"
)

// Cache status values reported in AnalyzeResponse.
const (
	cacheHit  = "hit"
	cacheMiss = "miss"
)

// Analyzer runs businesses through the pipeline. *pipeline.Pipeline
// satisfies it.
type Analyzer interface {
	Run(ctx context.Context, b models.Business) *models.Profile
	RunEach(ctx context.Context, businesses []models.Business, workers int, done func(i int, p *models.Profile)) []*models.Profile
}

// Analyze returns a handler for POST /api/v1/analyze.
//
// A website that cannot be fetched is not an error: the profile comes back
// with scraped=false and the reason in scrape_error.
func Analyze(a Analyzer, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, models.NewScanError(models.ErrCodeInvalidInput, err.Error(), err))
			return
		}
		if err := req.Validate(); err != nil {
			respondError(c, err)
			return
		}
		b := req.Business()

		useCache := cc != nil && req.MaxAge > 0
		key := cache.Key(b)
		if useCache {
			if cached, hit := cc.Get(key, time.Duration(req.MaxAge)*time.Millisecond); hit {
				c.JSON(http.StatusOK, models.AnalyzeResponse{
					Success:     true,
					Profile:     present(cached, req.IncludeRawHTML),
					CacheStatus: cacheHit,
				})
				return
			}
		}

		profile := a.Run(c.Request.Context(), b)

		resp := models.AnalyzeResponse{Success: true}
		// Only successful scrapes are worth replaying.
		if useCache && profile.Scraped {
			cc.Set(key, profile)
			resp.CacheStatus = cacheMiss
		}
		resp.Profile = present(profile, req.IncludeRawHTML)
		c.JSON(http.StatusOK, resp)
	}
}

// present drops the raw markup unless the caller asked for it.
func present(p *models.Profile, includeRawHTML bool) *models.Profile {
	if includeRawHTML {
		return p
	}
	return p.WithoutRawHTML()
}

// respondError maps a ScanError to its HTTP status and writes the
// structured error body.
func respondError(c *gin.Context, err error) {
	se := models.AsScanError(err)
	c.JSON(mapErrorToStatus(se), models.ErrorResponse{
		Success: false,
		Error:   se.ToDetail(),
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScanError) int {
	switch e.Code {
	case models.ErrCodeFetchTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeFetchFailed:
		return http.StatusBadGateway // 502
	case models.ErrCodeRobotsDisallowed:
		return http.StatusForbidden // 403
	case models.ErrCodeInvalidInput, models.ErrCodeTaxonomyInvalid:
		return http.StatusBadRequest // 400
	case models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
