package scraper

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
)

const cssAccept = "text/css,*/*;q=0.1"

// stylesheetURLs lists the first max linked stylesheets, resolved and in
// document order.
func stylesheetURLs(doc *goquery.Document, base *url.URL, max int) []string {
	var urls []string
	doc.FindMatcher(selCSSLinks).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(urls) >= max {
			return false
		}
		if u := resolve(base, s.AttrOr("href", "")); u != "" {
			urls = append(urls, u)
		}
		return true
	})
	return urls
}

// fetchStylesheets retrieves the given stylesheets concurrently, each under
// its own timeout. Failures are logged and skipped. The returned CSS keeps
// document order, each sheet preceded by a comment naming its URL.
func (s *Scraper) fetchStylesheets(ctx context.Context, urls []string) (string, int) {
	if len(urls) == 0 || s.resources == nil {
		return "", 0
	}

	sheets := make([]string, len(urls))
	var g errgroup.Group
	for i, u := range urls {
		g.Go(func() error {
			sheets[i] = s.fetchStylesheet(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	var b strings.Builder
	n := 0
	for i, css := range sheets {
		if css == "" {
			continue
		}
		n++
		b.WriteString("\n/* CSS from ")
		b.WriteString(urls[i])
		b.WriteString(" */\n")
		b.WriteString(css)
	}
	return b.String(), n
}

func (s *Scraper) fetchStylesheet(ctx context.Context, u string) string {
	if s.cfg.StylesheetTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.StylesheetTimeout)
		defer cancel()
	}

	res, err := s.resources.Get(ctx, u, cssAccept)
	if err != nil {
		slog.Warn("stylesheet fetch failed", "url", u, "error", err)
		return ""
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		slog.Warn("stylesheet fetch failed", "url", u, "status", res.StatusCode)
		return ""
	}
	slog.Debug("stylesheet fetched", "url", u, "bytes", len(res.Body))
	return string(res.Body)
}

// withStyles appends css to the page markup as a trailing style block.
func withStyles(pageHTML, css string) string {
	if css == "" {
		return pageHTML
	}
	return pageHTML + "\n<style>\n" + css + "\n</style>"
}
