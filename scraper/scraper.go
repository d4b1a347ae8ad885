// Package scraper fetches a business website and turns it into an
// immutable models.ScrapeResult. It is the only stage that touches the
// network; every failure surfaces as an absent scrape.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/use-agent/sitescan/config"
	"github.com/use-agent/sitescan/engine"
	"github.com/use-agent/sitescan/models"
)

// PageFetcher retrieves the page markup. *engine.Dispatcher satisfies it.
type PageFetcher interface {
	Dispatch(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error)
}

// ResourceGetter retrieves secondary resources such as stylesheets and
// robots.txt. *engine.HTTPEngine satisfies it.
type ResourceGetter interface {
	Get(ctx context.Context, rawURL, accept string) (*engine.Resource, error)
}

// Scraper is safe for concurrent use.
type Scraper struct {
	pages     PageFetcher
	resources ResourceGetter
	robots    *robotsPolicy
	cfg       config.FetchConfig
}

// New creates a Scraper. resources may be nil, in which case stylesheets
// are skipped and robots.txt is not consulted.
func New(pages PageFetcher, resources ResourceGetter, cfg config.FetchConfig) *Scraper {
	s := &Scraper{
		pages:     pages,
		resources: resources,
		cfg:       cfg,
	}
	if cfg.RespectRobots && resources != nil {
		s.robots = newRobotsPolicy(resources, cfg.UserAgent, cfg.RobotsCacheTTL)
	}
	return s
}

// Scrape fetches rawURL and reports whether a scrape was produced. A false
// result is a normal outcome: the site is down, slow, not HTML, or off
// limits. The reason is logged.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (*models.ScrapeResult, bool) {
	result, err := s.Fetch(ctx, rawURL)
	if err != nil {
		slog.Warn("website fetch failed",
			"url", rawURL,
			"code", models.AsScanError(err).Code,
			"error", err,
		)
		return nil, false
	}
	return result, true
}

// Fetch is Scrape with the failure reason as a *models.ScanError.
func (s *Scraper) Fetch(ctx context.Context, rawURL string) (*models.ScrapeResult, error) {
	start := time.Now()

	target, err := parseTarget(rawURL)
	if err != nil {
		return nil, models.NewScanError(models.ErrCodeInvalidInput, "invalid website URL", err)
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	if s.robots != nil && !s.robots.Allowed(ctx, target) {
		return nil, models.NewScanError(models.ErrCodeRobotsDisallowed, "disallowed by robots.txt", nil)
	}

	page, err := s.pages.Dispatch(ctx, &engine.FetchRequest{URL: target.String(), Timeout: s.cfg.Timeout})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, models.NewScanError(models.ErrCodeFetchTimeout, "website did not respond in time", err)
		}
		return nil, models.NewScanError(models.ErrCodeFetchFailed, "could not fetch website", err)
	}

	finalURL := page.FinalURL
	if finalURL == "" {
		finalURL = target.String()
	}
	result, err := Parse(finalURL, page.HTML)
	if err != nil {
		return nil, models.NewScanError(models.ErrCodeFetchFailed, "could not parse website", err)
	}
	base, _ := url.Parse(finalURL)

	css, n := s.fetchStylesheets(ctx, stylesheetURLs(result.Doc, base, s.cfg.MaxStylesheets))
	result.RawHTML = withStyles(page.HTML, css)
	result.Stylesheets = n
	result.Digest = buildDigest(page.HTML, base)

	result.URL = rawURL
	result.FinalURL = finalURL
	result.Domain = target.Hostname()
	result.EngineUsed = page.EngineName
	result.StatusCode = page.StatusCode
	result.FetchMs = time.Since(start).Milliseconds()

	slog.Info("website scraped",
		"url", rawURL,
		"engine", page.EngineName,
		"stylesheets", n,
		"images", len(result.Images),
		"ms", result.FetchMs,
	)
	return result, nil
}

// parseTarget accepts absolute http(s) URLs. A bare host gets https://.
func parseTarget(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, errors.New("empty URL")
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("missing host")
	}
	return u, nil
}
