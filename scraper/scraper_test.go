package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/sitescan/config"
	"github.com/use-agent/sitescan/engine"
	"github.com/use-agent/sitescan/models"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func testConfig() config.FetchConfig {
	return config.FetchConfig{
		Timeout:           5 * time.Second,
		UserAgent:         "sitescan-test",
		MaxStylesheets:    5,
		StylesheetTimeout: 2 * time.Second,
	}
}

func newTestScraper(t *testing.T, cfg config.FetchConfig) *Scraper {
	t.Helper()
	httpEng, err := engine.NewHTTPEngine(engine.HTTPOptions{UserAgent: cfg.UserAgent})
	if err != nil {
		t.Fatalf("NewHTTPEngine: %v", err)
	}
	d := engine.NewDispatcher([]engine.Engine{httpEng}, nil, nil)
	return New(d, httpEng, cfg)
}

func siteHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(restaurantPage))
	})
	mux.HandleFunc("/css/site.css", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css")
		w.Write([]byte(`body{color:#8B0000}`))
	})
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /private\n"))
	})
	mux.HandleFunc("/private", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<p>secret</p>"))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	return mux
}

func TestScrape_FetchesPageAndStylesheets(t *testing.T) {
	srv := httptest.NewServer(siteHandler())
	defer srv.Close()

	r, ok := newTestScraper(t, testConfig()).Scrape(context.Background(), srv.URL+"/")
	if !ok {
		t.Fatal("expected a scrape")
	}
	if r.EngineUsed != "http" || r.StatusCode != http.StatusOK {
		t.Errorf("EngineUsed = %q, StatusCode = %d", r.EngineUsed, r.StatusCode)
	}
	if r.Domain != "127.0.0.1" {
		t.Errorf("Domain = %q", r.Domain)
	}
	if r.Stylesheets != 1 {
		t.Errorf("Stylesheets = %d, want 1 (missing sheet skipped)", r.Stylesheets)
	}
	if !strings.HasPrefix(r.RawHTML, restaurantPage) {
		t.Error("RawHTML should start with the page markup")
	}
	wantTail := "\n<style>\n\n/* CSS from " + srv.URL + "/css/site.css */\nbody{color:#8B0000}\n</style>"
	if !strings.HasSuffix(r.RawHTML, wantTail) {
		t.Errorf("RawHTML tail = %q", r.RawHTML[len(restaurantPage):])
	}
	if r.Logo != srv.URL+"/img/brand-mark.png" {
		t.Errorf("Logo = %q", r.Logo)
	}
	if strings.Contains(r.Text, "8B0000") {
		t.Error("stylesheet text leaked into Text")
	}
}

func TestScrape_NoStylesheetsLeavesMarkupUntouched(t *testing.T) {
	srv := httptest.NewServer(siteHandler())
	defer srv.Close()
	cfg := testConfig()
	cfg.MaxStylesheets = 0

	r, ok := newTestScraper(t, cfg).Scrape(context.Background(), srv.URL+"/")
	if !ok {
		t.Fatal("expected a scrape")
	}
	if r.RawHTML != restaurantPage || r.Stylesheets != 0 {
		t.Errorf("RawHTML changed without stylesheets (Stylesheets = %d)", r.Stylesheets)
	}
}

func TestFetch_Failures(t *testing.T) {
	srv := httptest.NewServer(siteHandler())
	defer srv.Close()

	robotsCfg := testConfig()
	robotsCfg.RespectRobots = true
	timeoutCfg := testConfig()
	timeoutCfg.Timeout = 50 * time.Millisecond

	tests := []struct {
		name     string
		cfg      config.FetchConfig
		url      string
		wantCode string
	}{
		{"not found", testConfig(), srv.URL + "/nope", models.ErrCodeFetchFailed},
		{"timeout", timeoutCfg, srv.URL + "/slow", models.ErrCodeFetchTimeout},
		{"robots", robotsCfg, srv.URL + "/private", models.ErrCodeRobotsDisallowed},
		{"bad scheme", testConfig(), "ftp://example.com/", models.ErrCodeInvalidInput},
		{"empty", testConfig(), "  ", models.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScraper(t, tt.cfg)
			_, err := s.Fetch(context.Background(), tt.url)
			if err == nil {
				t.Fatal("expected an error")
			}
			if code := models.AsScanError(err).Code; code != tt.wantCode {
				t.Errorf("code = %q, want %q (err: %v)", code, tt.wantCode, err)
			}

			r, ok := s.Scrape(context.Background(), tt.url)
			if ok || r != nil {
				t.Error("Scrape should report an absent result")
			}
		})
	}
}

func TestFetch_RobotsAllowsOtherPaths(t *testing.T) {
	srv := httptest.NewServer(siteHandler())
	defer srv.Close()
	cfg := testConfig()
	cfg.RespectRobots = true

	if _, ok := newTestScraper(t, cfg).Scrape(context.Background(), srv.URL+"/"); !ok {
		t.Error("root path should be allowed")
	}
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://acme.example/about", "https://acme.example/about", false},
		{"acme.example", "https://acme.example", false},
		{" http://acme.example ", "http://acme.example", false},
		{"ftp://files.acme.example", "", true},
		{"https://", "", true},
	}
	for _, tt := range tests {
		u, err := parseTarget(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseTarget(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && u.String() != tt.want {
			t.Errorf("parseTarget(%q) = %q, want %q", tt.in, u.String(), tt.want)
		}
	}
}

func TestBuildDigest(t *testing.T) {
	para := "Our family bakery has baked sourdough, rye and seeded loaves every morning for three generations. " +
		"Every loaf is shaped by hand, proved overnight and baked in a stone oven that has been in use since the shop opened. "
	page := `<html><head><title>Crumb Bakery</title><meta property="og:site_name" content="Crumb"></head><body>
<nav><a href="/">Home</a></nav>
<article><h1>Our bread</h1><p>` + para + `</p><p>` + para + `</p><p>` + para + `</p></article>
</body></html>`

	d := buildDigest(page, mustURL(t, "https://crumb.example/"))
	if d.SiteName != "Crumb" {
		t.Errorf("SiteName = %q", d.SiteName)
	}
	if !strings.Contains(d.Markdown, "sourdough") {
		t.Errorf("Markdown = %q", d.Markdown)
	}
	if d.Tokens != estimateTokens(d.Markdown) || d.Tokens == 0 {
		t.Errorf("Tokens = %d", d.Tokens)
	}

	if got := buildDigest(page, nil); got != (models.Digest{}) {
		t.Errorf("nil URL digest = %+v, want empty", got)
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := map[string]int{
		"":       0,
		"a":      1,
		"abcdef": 2,
		"日本語日本語": 2,
	}
	for in, want := range tests {
		if got := estimateTokens(in); got != want {
			t.Errorf("estimateTokens(%q) = %d, want %d", in, got, want)
		}
	}
}
