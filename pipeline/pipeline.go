// Package pipeline runs one business through fetch, classification,
// extraction and gap analysis, and runs batches of businesses over a
// bounded worker pool.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/use-agent/sitescan/classifier"
	"github.com/use-agent/sitescan/extractor"
	"github.com/use-agent/sitescan/gap"
	"github.com/use-agent/sitescan/models"
)

// Fetcher retrieves a website. *scraper.Scraper satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*models.ScrapeResult, error)
}

// Pipeline is safe for concurrent use.
type Pipeline struct {
	fetcher    Fetcher
	classifier *classifier.Classifier
	deadline   time.Duration
}

// New creates a Pipeline. deadline bounds the fetch of one business; zero
// leaves it to the caller's context.
func New(fetcher Fetcher, c *classifier.Classifier, deadline time.Duration) *Pipeline {
	if c == nil {
		c = classifier.Default()
	}
	return &Pipeline{fetcher: fetcher, classifier: c, deadline: deadline}
}

// Classifier returns the classifier the pipeline scores businesses with.
func (p *Pipeline) Classifier() *classifier.Classifier {
	return p.classifier
}

// Run produces the profile of one business. It never fails: a website that
// cannot be fetched yields a profile with Scraped=false, analysed from the
// business name and category alone.
func (p *Pipeline) Run(ctx context.Context, b models.Business) *models.Profile {
	start := time.Now()
	profile := &models.Profile{Business: b}

	scrape := p.fetch(ctx, b, profile)
	profile.Timing.FetchMs = time.Since(start).Milliseconds()

	analysisStart := time.Now()
	var text string
	if scrape != nil {
		text = scrape.Text
	}

	// Extraction runs alongside classification; gap analysis needs the
	// business type, so it follows classification.
	var g errgroup.Group
	g.Go(func() error {
		profile.Extraction = extractor.Extract(scrape, "", b.Phone)
		return nil
	})
	g.Go(func() error {
		profile.Classification = p.classifier.Classify(b.Category, b.Name, text)
		profile.Gaps = gap.Analyze(scrape, b.Name, profile.Classification.PrimaryType)
		return nil
	})
	_ = g.Wait()

	businessType := profile.Classification.PrimaryType
	profile.DisplayType = p.classifier.DisplayName(businessType)
	profile.Palette = extractor.PaletteOrFallback(profile.Extraction, businessType)
	profile.Timing.AnalysisMs = time.Since(analysisStart).Milliseconds()
	profile.Timing.TotalMs = time.Since(start).Milliseconds()

	slog.Info("business analyzed",
		"name", b.Name,
		"website", b.Website,
		"scraped", profile.Scraped,
		"type", businessType,
		"confidence", profile.Classification.Confidence,
		"overall_score", profile.Gaps.OverallScore,
		"ms", profile.Timing.TotalMs,
	)
	return profile
}

func (p *Pipeline) fetch(ctx context.Context, b models.Business, profile *models.Profile) *models.ScrapeResult {
	if b.Website == "" || p.fetcher == nil {
		return nil
	}
	if p.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.deadline)
		defer cancel()
	}

	scrape, err := p.fetcher.Fetch(ctx, b.Website)
	if err != nil {
		se := models.AsScanError(err)
		profile.ScrapeError = se.ToDetail()
		slog.Warn("website unavailable, continuing without scrape",
			"website", b.Website, "code", se.Code, "error", err)
		return nil
	}
	profile.Scraped = true
	profile.Scrape = scrape
	return scrape
}

// RunBatch runs every business with at most workers in flight and returns
// the profiles in input order.
func (p *Pipeline) RunBatch(ctx context.Context, businesses []models.Business, workers int) []*models.Profile {
	return p.RunEach(ctx, businesses, workers, nil)
}

// RunEach is RunBatch with a callback invoked as each profile completes.
// done may be nil; it is called from worker goroutines.
func (p *Pipeline) RunEach(ctx context.Context, businesses []models.Business, workers int, done func(i int, profile *models.Profile)) []*models.Profile {
	if workers <= 0 {
		workers = 1
	}
	profiles := make([]*models.Profile, len(businesses))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, b := range businesses {
		g.Go(func() error {
			profiles[i] = p.Run(ctx, b)
			if done != nil {
				done(i, profiles[i])
			}
			return nil
		})
	}
	_ = g.Wait()
	return profiles
}
