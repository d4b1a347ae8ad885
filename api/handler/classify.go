package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/sitescan/classifier"
	"github.com/use-agent/sitescan/extractor"
	"github.com/use-agent/sitescan/models"
)

// Classify returns a handler for POST /api/v1/classify. It scores the
// given text only; nothing is fetched.
func Classify(cl *classifier.Classifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ClassifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, models.NewScanError(models.ErrCodeInvalidInput, err.Error(), err))
			return
		}
		if strings.TrimSpace(req.Category+req.Name+req.Text) == "" {
			respondError(c, models.NewScanError(models.ErrCodeInvalidInput, "one of category, name or text is required", nil))
			return
		}

		result := cl.Classify(req.Category, req.Name, req.Text)
		c.JSON(http.StatusOK, models.ClassifyResponse{
			Success:        true,
			Classification: result,
			DisplayType:    cl.DisplayName(result.PrimaryType),
			Palette:        extractor.FallbackColors(result.PrimaryType),
		})
	}
}
