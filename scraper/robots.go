package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// robotsPolicy answers robots.txt questions with a per-host cache.
// Lookup failures allow the fetch.
type robotsPolicy struct {
	resources ResourceGetter
	userAgent string
	ttl       time.Duration

	mu    sync.RWMutex
	cache map[string]robotsEntry
}

type robotsEntry struct {
	fetched time.Time
	rules   *robotstxt.RobotsData
}

func newRobotsPolicy(resources ResourceGetter, userAgent string, ttl time.Duration) *robotsPolicy {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &robotsPolicy{
		resources: resources,
		userAgent: userAgent,
		ttl:       ttl,
		cache:     make(map[string]robotsEntry),
	}
}

// Allowed reports whether target may be fetched.
func (p *robotsPolicy) Allowed(ctx context.Context, target *url.URL) bool {
	rules, err := p.rules(ctx, target)
	if err != nil {
		slog.Debug("robots.txt unavailable, allowing", "host", target.Host, "error", err)
		return true
	}
	path := target.EscapedPath()
	if path == "" {
		path = "/"
	}
	if target.RawQuery != "" {
		path += "?" + target.RawQuery
	}
	return rules.FindGroup(p.userAgent).Test(path)
}

func (p *robotsPolicy) rules(ctx context.Context, target *url.URL) (*robotstxt.RobotsData, error) {
	host := strings.ToLower(target.Host)

	p.mu.RLock()
	entry, ok := p.cache[host]
	p.mu.RUnlock()
	if ok && time.Since(entry.fetched) < p.ttl {
		return entry.rules, nil
	}

	res, err := p.resources.Get(ctx, target.Scheme+"://"+target.Host+"/robots.txt", "text/plain")
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	// 4xx allows everything, 5xx disallows everything.
	data, err := robotstxt.FromStatusAndBytes(res.StatusCode, res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	p.mu.Lock()
	p.cache[host] = robotsEntry{fetched: time.Now(), rules: data}
	p.mu.Unlock()
	return data, nil
}
