package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/sitescan/cache"
	"github.com/use-agent/sitescan/classifier"
	"github.com/use-agent/sitescan/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Health returns a handler for GET /api/v1/health.
//
// Status is degraded when no fetch engine is configured: analysis still
// works but every profile comes back unscraped.
func Health(engines []string, cl *classifier.Classifier, cc *cache.Cache, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		if len(engines) == 0 {
			status = "degraded"
		}
		entries := 0
		if cc != nil {
			entries = cc.Len()
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:       status,
			Uptime:       time.Since(startTime).Round(time.Second).String(),
			Version:      Version,
			Engines:      engines,
			CacheEntries: entries,
			Taxonomy:     len(cl.Types()),
		})
	}
}
