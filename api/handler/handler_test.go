package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/sitescan/cache"
	"github.com/use-agent/sitescan/classifier"
	"github.com/use-agent/sitescan/models"
	"github.com/use-agent/sitescan/webhook"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAnalyzer marks every business with a website as scraped, except
// those under unreachable.example.
type fakeAnalyzer struct {
	calls atomic.Int32
}

func (f *fakeAnalyzer) Run(_ context.Context, b models.Business) *models.Profile {
	f.calls.Add(1)
	p := &models.Profile{Business: b, DisplayType: "Restaurant/Cafe"}
	switch {
	case b.Website == "":
	case strings.Contains(b.Website, "unreachable.example"):
		p.ScrapeError = &models.ErrorDetail{Code: models.ErrCodeFetchFailed, Message: "could not fetch website"}
	default:
		p.Scraped = true
		p.Scrape = &models.ScrapeResult{URL: b.Website, RawHTML: "<html><body>menu</body></html>"}
	}
	return p
}

func (f *fakeAnalyzer) RunEach(ctx context.Context, bs []models.Business, _ int, done func(int, *models.Profile)) []*models.Profile {
	out := make([]*models.Profile, len(bs))
	for i, b := range bs {
		out[i] = f.Run(ctx, b)
		if done != nil {
			done(i, out[i])
		}
	}
	return out
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestAnalyzeScrapedBusiness(t *testing.T) {
	a := &fakeAnalyzer{}
	r := gin.New()
	r.POST("/analyze", Analyze(a, nil))

	w := doJSON(t, r, http.MethodPost, "/analyze", models.AnalyzeRequest{
		URL:  "https://bella.example",
		Name: "Bella Cucina",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	resp := decode[models.AnalyzeResponse](t, w)
	if !resp.Success || resp.Profile == nil || !resp.Profile.Scraped {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Profile.Business.Name != "Bella Cucina" {
		t.Errorf("name = %q", resp.Profile.Business.Name)
	}
	if resp.Profile.Scrape.RawHTML != "" {
		t.Error("raw html returned without include_raw_html")
	}
	if resp.CacheStatus != "" {
		t.Errorf("cache status = %q without max_age", resp.CacheStatus)
	}
}

func TestAnalyzeIncludeRawHTML(t *testing.T) {
	r := gin.New()
	r.POST("/analyze", Analyze(&fakeAnalyzer{}, nil))

	w := doJSON(t, r, http.MethodPost, "/analyze", models.AnalyzeRequest{
		URL:            "https://bella.example",
		IncludeRawHTML: true,
	})
	resp := decode[models.AnalyzeResponse](t, w)
	if resp.Profile == nil || resp.Profile.Scrape == nil || resp.Profile.Scrape.RawHTML == "" {
		t.Fatalf("raw html missing: %s", w.Body.String())
	}
}

func TestAnalyzeUnreachableSiteIsNotAnError(t *testing.T) {
	r := gin.New()
	r.POST("/analyze", Analyze(&fakeAnalyzer{}, nil))

	w := doJSON(t, r, http.MethodPost, "/analyze", models.AnalyzeRequest{URL: "https://unreachable.example"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode[models.AnalyzeResponse](t, w)
	if resp.Profile.Scraped {
		t.Error("scraped = true")
	}
	if resp.Profile.ScrapeError == nil || resp.Profile.ScrapeError.Code != models.ErrCodeFetchFailed {
		t.Errorf("scrape_error = %+v", resp.Profile.ScrapeError)
	}
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	r := gin.New()
	r.POST("/analyze", Analyze(&fakeAnalyzer{}, nil))

	tests := []struct {
		name string
		body any
	}{
		{"malformed json", `{"url":`},
		{"no signal", models.AnalyzeRequest{Phone: "0113 496 0000"}},
		{"bad url", models.AnalyzeRequest{URL: "not a url"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/analyze", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			resp := decode[models.ErrorResponse](t, w)
			if resp.Success || resp.Error == nil || resp.Error.Code != models.ErrCodeInvalidInput {
				t.Errorf("error = %+v", resp.Error)
			}
		})
	}
}

func TestAnalyzeCache(t *testing.T) {
	a := &fakeAnalyzer{}
	cc := cache.New(10, time.Hour, 0)
	defer cc.Stop()
	r := gin.New()
	r.POST("/analyze", Analyze(a, cc))

	req := models.AnalyzeRequest{URL: "https://bella.example", Name: "Bella", MaxAge: 60_000}

	first := decode[models.AnalyzeResponse](t, doJSON(t, r, http.MethodPost, "/analyze", req))
	if first.CacheStatus != "miss" {
		t.Errorf("first cache status = %q, want miss", first.CacheStatus)
	}
	second := decode[models.AnalyzeResponse](t, doJSON(t, r, http.MethodPost, "/analyze", req))
	if second.CacheStatus != "hit" {
		t.Errorf("second cache status = %q, want hit", second.CacheStatus)
	}
	if got := a.calls.Load(); got != 1 {
		t.Errorf("pipeline ran %d times, want 1", got)
	}

	// Unscraped profiles are never cached.
	down := models.AnalyzeRequest{URL: "https://unreachable.example", MaxAge: 60_000}
	doJSON(t, r, http.MethodPost, "/analyze", down)
	doJSON(t, r, http.MethodPost, "/analyze", down)
	if got := a.calls.Load(); got != 3 {
		t.Errorf("pipeline ran %d times, want 3", got)
	}
}

func TestClassify(t *testing.T) {
	r := gin.New()
	r.POST("/classify", Classify(classifier.Default()))

	w := doJSON(t, r, http.MethodPost, "/classify", models.ClassifyRequest{
		Name: "Rapid Plumbing",
		Text: "Emergency plumber, 24/7 boiler repair and heating installation.",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	resp := decode[models.ClassifyResponse](t, w)
	if resp.Classification.PrimaryType != "home_services" {
		t.Errorf("type = %q", resp.Classification.PrimaryType)
	}
	if resp.DisplayType != "Home Services" {
		t.Errorf("display = %q", resp.DisplayType)
	}
	if len(resp.Palette) == 0 {
		t.Error("no palette")
	}

	w = doJSON(t, r, http.MethodPost, "/classify", models.ClassifyRequest{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty request status = %d, want 400", w.Code)
	}
}

func TestHealth(t *testing.T) {
	cl := classifier.Default()
	tests := []struct {
		name    string
		engines []string
		want    string
	}{
		{"engines", []string{"http", "rod"}, "healthy"},
		{"no engines", nil, "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", Health(tt.engines, cl, nil, time.Now()))
			w := doJSON(t, r, http.MethodGet, "/health", nil)
			resp := decode[models.HealthResponse](t, w)
			if resp.Status != tt.want {
				t.Errorf("status = %q, want %q", resp.Status, tt.want)
			}
			if resp.Version != Version {
				t.Errorf("version = %q", resp.Version)
			}
			if resp.Taxonomy != len(cl.Types()) {
				t.Errorf("taxonomy = %d", resp.Taxonomy)
			}
		})
	}
}

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{models.ErrCodeFetchTimeout, http.StatusGatewayTimeout},
		{models.ErrCodeFetchFailed, http.StatusBadGateway},
		{models.ErrCodeRobotsDisallowed, http.StatusForbidden},
		{models.ErrCodeInvalidInput, http.StatusBadRequest},
		{models.ErrCodeTaxonomyInvalid, http.StatusBadRequest},
		{models.ErrCodeNotFound, http.StatusNotFound},
		{models.ErrCodeRateLimited, http.StatusTooManyRequests},
		{models.ErrCodeUnauthorized, http.StatusUnauthorized},
		{models.ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := mapErrorToStatus(models.NewScanError(tt.code, "x", nil)); got != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestBatchLifecycle(t *testing.T) {
	var (
		mu       sync.Mutex
		received []webhook.Event
		sigs     []string
		got      = make(chan struct{}, 1)
	)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev webhook.Event
		_ = json.NewDecoder(r.Body).Decode(&ev)
		mu.Lock()
		received = append(received, ev)
		sigs = append(sigs, r.Header.Get(webhook.SignatureHeader))
		mu.Unlock()
		got <- struct{}{}
	}))
	defer hook.Close()

	r := gin.New()
	r.POST("/batch/analyze", PostBatch(&fakeAnalyzer{}, webhook.NewSender(time.Second), BatchOptions{
		Workers:       2,
		MaxBatch:      10,
		WebhookSecret: "server-secret",
	}))
	r.GET("/batch/:id", GetBatch())

	w := doJSON(t, r, http.MethodPost, "/batch/analyze", models.BatchRequest{
		Businesses: []models.AnalyzeRequest{
			{URL: "https://bella.example", Name: "Bella"},
			{URL: "https://unreachable.example", Name: "Gone"},
			{Category: "plumber", Name: "Rapid"},
		},
		WebhookURL: hook.URL,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	accepted := decode[models.BatchResponse](t, w)
	if !strings.HasPrefix(accepted.ID, "batch-") || accepted.Total != 3 {
		t.Fatalf("accepted = %+v", accepted)
	}

	select {
	case <-got:
	case <-time.After(5 * time.Second):
		t.Fatal("webhook not delivered")
	}

	status := decode[models.BatchStatusResponse](t, doJSON(t, r, http.MethodGet, "/batch/"+accepted.ID, nil))
	if status.Status != models.BatchPartial {
		t.Errorf("status = %q, want %q", status.Status, models.BatchPartial)
	}
	if status.Completed != 3 || status.Scraped != 1 {
		t.Errorf("completed = %d scraped = %d", status.Completed, status.Scraped)
	}
	if len(status.Results) != 3 || status.Results[1].Business.Name != "Gone" {
		t.Fatalf("results out of order: %+v", status.Results)
	}

	mu.Lock()
	defer mu.Unlock()
	if received[0].Type != webhook.EventBatchCompleted || received[0].JobID != accepted.ID {
		t.Errorf("event = %+v", received[0])
	}
	if !strings.HasPrefix(sigs[0], "sha256=") {
		t.Errorf("signature = %q", sigs[0])
	}
}

func TestBatchRejects(t *testing.T) {
	r := gin.New()
	r.POST("/batch/analyze", PostBatch(&fakeAnalyzer{}, nil, BatchOptions{MaxBatch: 2}))
	r.GET("/batch/:id", GetBatch())

	tests := []struct {
		name string
		body any
	}{
		{"empty", models.BatchRequest{}},
		{"over max", models.BatchRequest{Businesses: []models.AnalyzeRequest{
			{Name: "a"}, {Name: "b"}, {Name: "c"},
		}}},
		{"item without signal", models.BatchRequest{Businesses: []models.AnalyzeRequest{
			{Name: "a"}, {Phone: "0113 496 0000"},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/batch/analyze", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}

	w := doJSON(t, r, http.MethodGet, "/batch/batch-missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown job status = %d, want 404", w.Code)
	}
}

func TestExpireBatches(t *testing.T) {
	now := time.Now()
	old := models.NewBatchJob("batch-old", 1, now.Add(-2*time.Hour).Unix())
	fresh := models.NewBatchJob("batch-fresh", 1, now.Unix())
	batchStore.Store(old.ID, old)
	batchStore.Store(fresh.ID, fresh)

	expireBatches(now)

	if _, ok := batchStore.Load(old.ID); ok {
		t.Error("old job kept")
	}
	if _, ok := batchStore.Load(fresh.ID); !ok {
		t.Error("fresh job expired")
	}
}
