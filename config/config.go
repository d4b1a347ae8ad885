package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Fetch      FetchConfig
	Browser    BrowserConfig
	Engine     EngineConfig
	Pipeline   PipelineConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	Cache      CacheConfig
	Log        LogConfig
	Webhook    WebhookConfig
	Classifier ClassifierConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// FetchConfig controls how websites and their stylesheets are retrieved.
type FetchConfig struct {
	// Timeout bounds a single page fetch.
	Timeout time.Duration // default: 15s

	// UserAgent is sent with every request.
	UserAgent string

	// MaxBodyBytes caps how much of a response is read.
	MaxBodyBytes int64 // default: 10 MiB

	// MaxStylesheets is how many linked stylesheets are fetched per page.
	MaxStylesheets int // default: 5

	// StylesheetTimeout bounds each stylesheet fetch.
	StylesheetTimeout time.Duration // default: 10s

	// Proxy is an optional http(s) proxy URL.
	Proxy string

	// RespectRobots makes the fetcher honour robots.txt.
	RespectRobots bool // default: false

	// RobotsCacheTTL is how long parsed robots.txt files are kept.
	RobotsCacheTTL time.Duration // default: 30m
}

// BrowserConfig controls the optional Rod browser engine.
type BrowserConfig struct {
	// Enabled adds the browser engine behind the HTTP engine.
	Enabled bool // default: false

	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity (max concurrent tabs).
	MaxPages int // default: 4

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// NavigationTimeout is the max time for page.Navigate alone.
	NavigationTimeout time.Duration // default: 15s

	// BlockedResourceTypes lists resource types the browser never loads.
	// default: ["Script", "Image", "Font", "Media"]
	BlockedResourceTypes []string
}

// EngineConfig controls the engine dispatcher.
type EngineConfig struct {
	// EscalationDelays is the staged start delay for each engine tier.
	EscalationDelays []time.Duration // default: [0s, 3s]

	// DomainMemoryTTL is how long the winning engine is remembered per domain.
	DomainMemoryTTL time.Duration // default: 24h
}

// PipelineConfig controls the per-business pipeline.
type PipelineConfig struct {
	// Deadline bounds the fetch step of one business.
	Deadline time.Duration // default: 30s

	// Workers is the batch worker pool size.
	Workers int // default: 8

	// MaxBatch is the largest accepted batch.
	MaxBatch int // default: 100
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// CacheConfig controls the profile cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached profiles.
	MaxEntries int // default: 1000

	// TTL is the age after which entries are swept.
	TTL time.Duration // default: 1h
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// WebhookConfig controls batch completion webhooks.
type WebhookConfig struct {
	// Secret signs webhook bodies when the request supplies none.
	Secret string

	// Timeout bounds a single delivery attempt.
	Timeout time.Duration // default: 10s
}

// ClassifierConfig controls the business taxonomy.
type ClassifierConfig struct {
	// TaxonomyFile is an optional YAML file replacing or extending the
	// built-in taxonomy.
	TaxonomyFile string
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("SITESCAN_HOST", "0.0.0.0"),
			Port: envIntOr("SITESCAN_PORT", 8080),
			Mode: envOr("SITESCAN_MODE", "release"),
		},
		Fetch: FetchConfig{
			Timeout:           envDurationOr("SITESCAN_FETCH_TIMEOUT", 15*time.Second),
			UserAgent:         envOr("SITESCAN_USER_AGENT", DefaultUserAgent),
			MaxBodyBytes:      int64(envIntOr("SITESCAN_MAX_BODY_BYTES", 10<<20)),
			MaxStylesheets:    envIntOr("SITESCAN_MAX_STYLESHEETS", 5),
			StylesheetTimeout: envDurationOr("SITESCAN_STYLESHEET_TIMEOUT", 10*time.Second),
			Proxy:             os.Getenv("SITESCAN_PROXY"),
			RespectRobots:     envBoolOr("SITESCAN_RESPECT_ROBOTS", false),
			RobotsCacheTTL:    envDurationOr("SITESCAN_ROBOTS_TTL", 30*time.Minute),
		},
		Browser: BrowserConfig{
			Enabled:           envBoolOr("SITESCAN_BROWSER", false),
			Headless:          envBoolOr("SITESCAN_HEADLESS", true),
			MaxPages:          envIntOr("SITESCAN_MAX_PAGES", 4),
			NoSandbox:         envBoolOr("SITESCAN_NO_SANDBOX", false),
			BrowserBin:        os.Getenv("SITESCAN_BROWSER_BIN"),
			NavigationTimeout: envDurationOr("SITESCAN_NAV_TIMEOUT", 15*time.Second),
			BlockedResourceTypes: envSliceOr("SITESCAN_BLOCKED_RESOURCES", []string{
				"Script", "Image", "Font", "Media",
			}),
		},
		Engine: EngineConfig{
			EscalationDelays: envDurationSliceOr("SITESCAN_ESCALATION_DELAYS", []time.Duration{0, 3 * time.Second}),
			DomainMemoryTTL:  envDurationOr("SITESCAN_DOMAIN_MEMORY_TTL", 24*time.Hour),
		},
		Pipeline: PipelineConfig{
			Deadline: envDurationOr("SITESCAN_DEADLINE", 30*time.Second),
			Workers:  envIntOr("SITESCAN_WORKERS", 8),
			MaxBatch: envIntOr("SITESCAN_MAX_BATCH", 100),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("SITESCAN_AUTH_ENABLED", true),
			APIKeys: envSliceOr("SITESCAN_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SITESCAN_RATE_RPS", 5.0),
			Burst:             envIntOr("SITESCAN_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("SITESCAN_CACHE_MAX_ENTRIES", 1000),
			TTL:        envDurationOr("SITESCAN_CACHE_TTL", time.Hour),
		},
		Log: LogConfig{
			Level:  envOr("SITESCAN_LOG_LEVEL", "info"),
			Format: envOr("SITESCAN_LOG_FORMAT", "json"),
		},
		Webhook: WebhookConfig{
			Secret:  os.Getenv("SITESCAN_WEBHOOK_SECRET"),
			Timeout: envDurationOr("SITESCAN_WEBHOOK_TIMEOUT", 10*time.Second),
		},
		Classifier: ClassifierConfig{
			TaxonomyFile: os.Getenv("SITESCAN_TAXONOMY_FILE"),
		},
	}
}

// DefaultUserAgent is a current desktop Chrome user agent.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		return splitTrim(v)
	}
	return fallback
}

func envDurationSliceOr(key string, fallback []time.Duration) []time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var result []time.Duration
	for _, p := range splitTrim(v) {
		if d, err := time.ParseDuration(p); err == nil {
			result = append(result, d)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}

func splitTrim(v string) []string {
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
