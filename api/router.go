package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/sitescan/api/handler"
	"github.com/use-agent/sitescan/api/middleware"
	"github.com/use-agent/sitescan/cache"
	"github.com/use-agent/sitescan/classifier"
	"github.com/use-agent/sitescan/config"
	"github.com/use-agent/sitescan/webhook"
)

// Deps are the collaborators the routes are wired to.
type Deps struct {
	Analyzer   handler.Analyzer
	Classifier *classifier.Classifier
	Cache      *cache.Cache
	Webhooks   *webhook.Sender

	// Engines lists the fetch engines for the health report.
	Engines []string

	StartTime time.Time
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health sits outside auth so monitoring probes always work.
func NewRouter(d Deps, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(d.Engines, d.Classifier, d.Cache, d.StartTime))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/analyze", handler.Analyze(d.Analyzer, d.Cache))
	protected.POST("/classify", handler.Classify(d.Classifier))

	protected.POST("/batch/analyze", handler.PostBatch(d.Analyzer, d.Webhooks, handler.BatchOptions{
		Workers:       cfg.Pipeline.Workers,
		MaxBatch:      cfg.Pipeline.MaxBatch,
		WebhookSecret: cfg.Webhook.Secret,
	}))
	protected.GET("/batch/:id", handler.GetBatch())

	return r
}
