package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/sitescan/models"
)

func main() {
	apiURL := os.Getenv("SITESCAN_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("SITESCAN_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "SITESCAN_API_KEY is required")
		os.Exit(1)
	}
	c := &apiClient{base: strings.TrimRight(apiURL, "/"), key: apiKey, http: &http.Client{Timeout: 600 * time.Second}}

	s := server.NewMCPServer(
		"sitescan",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("analyze_website",
		mcp.WithDescription("Fetch a business website and report its business type, contact details, brand colors and the gaps a redesign should fix."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The business website"),
		),
		mcp.WithString("name",
			mcp.Description("The business name, if known"),
		),
		mcp.WithString("category",
			mcp.Description("A directory category such as 'Italian restaurant', if known"),
		),
	), c.handleAnalyze)

	s.AddTool(mcp.NewTool("classify_business",
		mcp.WithDescription("Classify a business from its category, name and any descriptive text, without fetching anything."),
		mcp.WithString("category",
			mcp.Description("A directory category"),
		),
		mcp.WithString("name",
			mcp.Description("The business name"),
		),
		mcp.WithString("text",
			mcp.Description("Descriptive text, e.g. the site's about section"),
		),
	), c.handleClassify)

	s.AddTool(mcp.NewTool("batch_analyze",
		mcp.WithDescription("Analyze many business websites in parallel and summarise each result."),
		mcp.WithArray("urls",
			mcp.Required(),
			mcp.Description("List of business websites"),
		),
	), c.handleBatch)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiClient talks to a running sitescan server.
type apiClient struct {
	base string
	key  string
	http *http.Client
}

func (c *apiClient) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.key)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var e models.ErrorResponse
		if json.Unmarshal(raw, &e) == nil && e.Error != nil {
			return fmt.Errorf("[%s] %s", e.Error.Code, e.Error.Message)
		}
		return fmt.Errorf("API returned %d", resp.StatusCode)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (c *apiClient) handleAnalyze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}

	var resp models.AnalyzeResponse
	err = c.do(ctx, http.MethodPost, "/api/v1/analyze", models.AnalyzeRequest{
		URL:      url,
		Name:     request.GetString("name", ""),
		Category: request.GetString("category", ""),
	}, &resp)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if resp.Profile == nil {
		return mcp.NewToolResultError("analysis returned no profile"), nil
	}
	return mcp.NewToolResultText(summarize(resp.Profile)), nil
}

func (c *apiClient) handleClassify(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var resp models.ClassifyResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/classify", models.ClassifyRequest{
		Category: request.GetString("category", ""),
		Name:     request.GetString("name", ""),
		Text:     request.GetString("text", ""),
	}, &resp)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cl := resp.Classification
	var sb strings.Builder
	fmt.Fprintf(&sb, "Type: %s (%s), confidence %.2f\n", resp.DisplayType, cl.PrimaryType, cl.Confidence)
	if len(cl.SecondaryTags) > 0 {
		fmt.Fprintf(&sb, "Tags: %s\n", strings.Join(cl.SecondaryTags, ", "))
	}
	if len(cl.MatchedKeywords) > 0 {
		fmt.Fprintf(&sb, "Matched: %s\n", strings.Join(cl.MatchedKeywords, ", "))
	}
	if cl.Warning != "" {
		fmt.Fprintf(&sb, "Warning: %s\n", cl.Warning)
	}
	fmt.Fprintf(&sb, "Palette: %s\n", strings.Join(resp.Palette, " "))
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *apiClient) handleBatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	urls, err := request.RequireStringSlice("urls")
	if err != nil {
		return mcp.NewToolResultError("urls is required and must be an array of strings"), nil
	}

	items := make([]models.AnalyzeRequest, len(urls))
	for i, u := range urls {
		items[i] = models.AnalyzeRequest{URL: u}
	}
	var accepted models.BatchResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/batch/analyze", models.BatchRequest{Businesses: items}, &accepted); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("batch request failed: %v", err)), nil
	}

	status, err := c.poll(ctx, accepted.ID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("polling batch job failed: %v", err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Batch %s: %s (%d/%d scraped)\n\n", status.ID, status.Status, status.Scraped, status.Total)
	for i, p := range status.Results {
		if p == nil {
			fmt.Fprintf(&sb, "--- [%d] no result ---\n\n", i+1)
			continue
		}
		fmt.Fprintf(&sb, "--- [%d] %s ---\n%s\n", i+1, p.Business.Website, summarize(p))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// poll waits until the batch job leaves the processing state.
func (c *apiClient) poll(ctx context.Context, id string) (*models.BatchStatusResponse, error) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			var status models.BatchStatusResponse
			if err := c.do(ctx, http.MethodGet, "/api/v1/batch/"+id, nil, &status); err != nil {
				return nil, err
			}
			if status.Status != models.BatchProcessing {
				return &status, nil
			}
		}
	}
}

// summarize renders a profile as plain text for the model.
func summarize(p *models.Profile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Type: %s (confidence %.2f)\n", p.DisplayType, p.Classification.Confidence)
	if !p.Scraped {
		reason := "no website"
		if p.ScrapeError != nil {
			reason = fmt.Sprintf("[%s] %s", p.ScrapeError.Code, p.ScrapeError.Message)
		}
		fmt.Fprintf(&sb, "Website not analyzed: %s\n", reason)
		fmt.Fprintf(&sb, "Suggested palette: %s\n", strings.Join(p.Palette, " "))
		return sb.String()
	}

	ex := p.Extraction
	if p.Scrape != nil && p.Scrape.Headlines.PageTitle != "" {
		fmt.Fprintf(&sb, "Title: %s\n", p.Scrape.Headlines.PageTitle)
	}
	if ex.Contact.Phone != "" {
		fmt.Fprintf(&sb, "Phone: %s\n", ex.Contact.Phone)
	}
	if ex.Contact.Email != "" {
		fmt.Fprintf(&sb, "Email: %s\n", ex.Contact.Email)
	}
	if ex.Contact.Address != "" {
		fmt.Fprintf(&sb, "Address: %s\n", ex.Contact.Address)
	}
	fmt.Fprintf(&sb, "Palette: %s\n", strings.Join(p.Palette, " "))
	fmt.Fprintf(&sb, "Website score: %d/100\n", p.Gaps.OverallScore)
	for _, g := range p.Gaps.PriorityGaps {
		fmt.Fprintf(&sb, "  - %s\n", g)
	}
	return sb.String()
}
