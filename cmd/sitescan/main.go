package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/sitescan/api"
	"github.com/use-agent/sitescan/cache"
	"github.com/use-agent/sitescan/classifier"
	"github.com/use-agent/sitescan/config"
	"github.com/use-agent/sitescan/engine"
	"github.com/use-agent/sitescan/pipeline"
	"github.com/use-agent/sitescan/scraper"
	"github.com/use-agent/sitescan/webhook"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("sitescan starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"browser", cfg.Browser.Enabled,
	)

	// ── 3. Taxonomy ─────────────────────────────────────────────────
	cl, err := loadClassifier(cfg.Classifier)
	if err != nil {
		slog.Error("failed to load taxonomy", "file", cfg.Classifier.TaxonomyFile, "error", err)
		os.Exit(1)
	}

	// ── 4. Fetch engines ────────────────────────────────────────────
	httpEngine, err := engine.NewHTTPEngine(engine.HTTPOptions{
		UserAgent:    cfg.Fetch.UserAgent,
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
		Proxy:        cfg.Fetch.Proxy,
	})
	if err != nil {
		slog.Error("failed to initialise http engine", "error", err)
		os.Exit(1)
	}
	engines := []engine.Engine{httpEngine}

	if cfg.Browser.Enabled {
		rodEngine, err := engine.NewRodEngine(engine.RodOptions{
			Headless:             cfg.Browser.Headless,
			NoSandbox:            cfg.Browser.NoSandbox,
			BrowserBin:           cfg.Browser.BrowserBin,
			Proxy:                cfg.Fetch.Proxy,
			UserAgent:            cfg.Fetch.UserAgent,
			MaxPages:             cfg.Browser.MaxPages,
			NavigationTimeout:    cfg.Browser.NavigationTimeout,
			BlockedResourceTypes: cfg.Browser.BlockedResourceTypes,
		})
		if err != nil {
			// The HTTP engine alone still serves most small-business sites.
			slog.Error("browser engine unavailable, continuing without it", "error", err)
		} else {
			defer rodEngine.Close()
			engines = append(engines, rodEngine)
		}
	}

	memory := engine.NewDomainMemory(cfg.Engine.DomainMemoryTTL, 0)
	defer memory.Stop()
	dispatcher := engine.NewDispatcher(engines, cfg.Engine.EscalationDelays, memory)
	slog.Info("engine dispatcher ready",
		"engines", dispatcher.Engines(),
		"delays", cfg.Engine.EscalationDelays,
	)

	// ── 5. Pipeline, cache, webhooks ────────────────────────────────
	sc := scraper.New(dispatcher, httpEngine, cfg.Fetch)
	pl := pipeline.New(sc, cl, cfg.Pipeline.Deadline)

	cc := cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL, 0)
	defer cc.Stop()

	// ── 6. Setup router ─────────────────────────────────────────────
	router := api.NewRouter(api.Deps{
		Analyzer:   pl,
		Classifier: cl,
		Cache:      cc,
		Webhooks:   webhook.NewSender(cfg.Webhook.Timeout),
		Engines:    dispatcher.Engines(),
		StartTime:  time.Now(),
	}, cfg)

	// ── 7. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 8. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("sitescan stopped")
}

// loadClassifier builds the classifier from the built-in taxonomy, or from
// the configured override file.
func loadClassifier(cfg config.ClassifierConfig) (*classifier.Classifier, error) {
	if cfg.TaxonomyFile == "" {
		return classifier.Default(), nil
	}
	categories, err := classifier.LoadTaxonomyFile(cfg.TaxonomyFile)
	if err != nil {
		return nil, err
	}
	slog.Info("taxonomy loaded", "file", cfg.TaxonomyFile, "types", len(categories))
	return classifier.New(categories), nil
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
