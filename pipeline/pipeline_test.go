package pipeline

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/use-agent/sitescan/classifier"
	"github.com/use-agent/sitescan/extractor"
	"github.com/use-agent/sitescan/models"
	"github.com/use-agent/sitescan/scraper"
)

const plumberPage = `<html><head>
<title>Acme Plumbing | 24/7 Emergency Plumber</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>
header { background-color: #1A5276; }
.btn { color: #E67E22; border-color: #E67E22; }
@media (max-width: 600px) { .btn { display: block; } }
</style>
</head><body>
<header><img class="logo" src="/logo.png" alt="Acme logo"></header>
<h1>Emergency plumber, licensed and insured</h1>
<p>Call 0161 496 0000 for a free quote.</p>
</body></html>`

// fakeFetcher returns canned results per URL.
type fakeFetcher struct {
	pages map[string]string
	errs  map[string]error
	delay time.Duration

	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *fakeFetcher) Fetch(ctx context.Context, rawURL string) (*models.ScrapeResult, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, models.NewScanError(models.ErrCodeFetchTimeout, "timed out", ctx.Err())
		case <-time.After(f.delay):
		}
	}
	if err, ok := f.errs[rawURL]; ok {
		return nil, err
	}
	html, ok := f.pages[rawURL]
	if !ok {
		return nil, models.NewScanError(models.ErrCodeFetchFailed, "not found", nil)
	}
	return scraper.Parse(rawURL, html)
}

func TestRun_ScrapedBusiness(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{"https://acme.example/": plumberPage}}
	p := New(f, classifier.Default(), time.Second)

	prof := p.Run(context.Background(), models.Business{
		Name:     "Acme Plumbing",
		Category: "plumber",
		Website:  "https://acme.example/",
	})

	if !prof.Scraped || prof.Scrape == nil || prof.ScrapeError != nil {
		t.Fatalf("Scraped = %v, ScrapeError = %+v", prof.Scraped, prof.ScrapeError)
	}
	if prof.Classification.PrimaryType != "home_services" {
		t.Errorf("PrimaryType = %q", prof.Classification.PrimaryType)
	}
	if prof.DisplayType != "Home Services" {
		t.Errorf("DisplayType = %q", prof.DisplayType)
	}
	wantColors := []string{"#E67E22", "#1A5276"}
	if !reflect.DeepEqual(prof.Extraction.Colors, wantColors) {
		t.Errorf("Colors = %v, want %v", prof.Extraction.Colors, wantColors)
	}
	if !reflect.DeepEqual(prof.Palette, wantColors) {
		t.Errorf("Palette = %v, want extracted colors", prof.Palette)
	}
	if !prof.Extraction.Metadata.HasLogo {
		t.Error("HasLogo = false")
	}
	if !prof.Gaps.Analyzed || prof.Gaps.Mobile.Score == 0 {
		t.Errorf("Gaps = %+v", prof.Gaps)
	}
	if prof.Timing.TotalMs < prof.Timing.FetchMs {
		t.Errorf("Timing = %+v", prof.Timing)
	}
}

func TestRun_AbsentScrape(t *testing.T) {
	f := &fakeFetcher{errs: map[string]error{
		"https://down.example/": models.NewScanError(models.ErrCodeFetchTimeout, "website did not respond in time", context.DeadlineExceeded),
	}}
	p := New(f, classifier.Default(), time.Second)

	prof := p.Run(context.Background(), models.Business{
		Name:     "Dough Bros",
		Category: "pizza restaurant",
		Website:  "https://down.example/",
	})

	if prof.Scraped || prof.Scrape != nil {
		t.Fatal("expected no scrape")
	}
	if prof.ScrapeError == nil || prof.ScrapeError.Code != models.ErrCodeFetchTimeout {
		t.Errorf("ScrapeError = %+v", prof.ScrapeError)
	}
	if prof.Classification.PrimaryType != "restaurant" {
		t.Errorf("PrimaryType = %q, classification should still use the category", prof.Classification.PrimaryType)
	}
	for part, ok := range prof.Extraction.Metadata.Succeeded {
		if ok {
			t.Errorf("Succeeded[%s] = true on absent scrape", part)
		}
	}
	if prof.Gaps.Analyzed || prof.Gaps.OverallScore != 0 || len(prof.Gaps.PriorityGaps) != 0 {
		t.Errorf("Gaps = %+v, want zero report", prof.Gaps)
	}
	if !reflect.DeepEqual(prof.Palette, extractor.FallbackColors("restaurant")) {
		t.Errorf("Palette = %v, want restaurant fallback", prof.Palette)
	}
}

func TestRun_NoWebsiteSkipsFetch(t *testing.T) {
	f := &fakeFetcher{}
	prof := New(f, nil, time.Second).Run(context.Background(), models.Business{Category: "yoga studio"})

	if f.calls.Load() != 0 {
		t.Error("fetcher should not be called without a website")
	}
	if prof.Scraped || prof.ScrapeError != nil {
		t.Errorf("Scraped = %v, ScrapeError = %+v", prof.Scraped, prof.ScrapeError)
	}
	if prof.Classification.PrimaryType != "fitness" {
		t.Errorf("PrimaryType = %q", prof.Classification.PrimaryType)
	}
}

func TestRun_DeadlineBoundsFetch(t *testing.T) {
	f := &fakeFetcher{delay: time.Second, pages: map[string]string{"https://slow.example/": plumberPage}}
	p := New(f, classifier.Default(), 20*time.Millisecond)

	start := time.Now()
	prof := p.Run(context.Background(), models.Business{Category: "plumber", Website: "https://slow.example/"})
	if time.Since(start) > 500*time.Millisecond {
		t.Errorf("Run took %v, deadline not applied", time.Since(start))
	}
	if prof.Scraped {
		t.Error("expected no scrape after the deadline")
	}
	if prof.ScrapeError == nil || prof.ScrapeError.Code != models.ErrCodeFetchTimeout {
		t.Errorf("ScrapeError = %+v", prof.ScrapeError)
	}
}

func TestRunBatch_OrderAndWorkerLimit(t *testing.T) {
	pages := map[string]string{}
	var businesses []models.Business
	for _, u := range []string{"https://a.example/", "https://b.example/", "https://c.example/", "https://d.example/", "https://e.example/"} {
		pages[u] = plumberPage
		businesses = append(businesses, models.Business{Name: u, Category: "plumber", Website: u})
	}
	businesses = append(businesses, models.Business{Name: "offline", Category: "plumber", Website: "https://missing.example/"})

	f := &fakeFetcher{pages: pages, delay: 10 * time.Millisecond}
	p := New(f, classifier.Default(), time.Second)

	var mu sync.Mutex
	var seen []int
	profiles := p.RunEach(context.Background(), businesses, 2, func(i int, _ *models.Profile) {
		mu.Lock()
		seen = append(seen, i)
		mu.Unlock()
	})

	if len(profiles) != len(businesses) {
		t.Fatalf("got %d profiles, want %d", len(profiles), len(businesses))
	}
	for i, prof := range profiles {
		if prof.Business.Name != businesses[i].Name {
			t.Errorf("profiles[%d] is for %q, want %q", i, prof.Business.Name, businesses[i].Name)
		}
	}
	if profiles[5].Scraped || profiles[5].ScrapeError.Code != models.ErrCodeFetchFailed {
		t.Errorf("offline business: Scraped = %v, ScrapeError = %+v", profiles[5].Scraped, profiles[5].ScrapeError)
	}
	if got := f.maxSeen.Load(); got > 2 {
		t.Errorf("max concurrent fetches = %d, want <= 2", got)
	}
	if len(seen) != len(businesses) {
		t.Errorf("callback ran %d times, want %d", len(seen), len(businesses))
	}
}

func TestRunBatch_Empty(t *testing.T) {
	p := New(&fakeFetcher{}, nil, 0)
	if got := p.RunBatch(context.Background(), nil, 4); len(got) != 0 {
		t.Errorf("RunBatch(nil) = %v", got)
	}
}

func TestRun_FetcherErrorWithoutCode(t *testing.T) {
	f := &fakeFetcher{errs: map[string]error{"https://x.example/": errors.New("boom")}}
	prof := New(f, nil, 0).Run(context.Background(), models.Business{Website: "https://x.example/"})
	if prof.ScrapeError == nil || prof.ScrapeError.Code != models.ErrCodeInternal {
		t.Errorf("ScrapeError = %+v", prof.ScrapeError)
	}
	if prof.Classification.PrimaryType != models.GeneralType {
		t.Errorf("PrimaryType = %q", prof.Classification.PrimaryType)
	}
}
