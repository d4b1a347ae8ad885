package engine

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	tls "github.com/refraction-networking/utls"

	"github.com/use-agent/sitescan/htmltext"
)

// DefaultMaxBodyBytes caps how much of a response body is read.
const DefaultMaxBodyBytes = 10 << 20

// HTTPEngine is the primary engine: a plain HTTP GET with a Chrome-like TLS
// fingerprint. It does not execute JavaScript.
type HTTPEngine struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// HTTPOptions configures an HTTPEngine. Zero values select defaults.
type HTTPOptions struct {
	UserAgent    string
	MaxBodyBytes int64

	// Proxy is an optional http(s) proxy URL.
	Proxy string
}

// Resource is a non-page response, such as a stylesheet or robots.txt.
type Resource struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to http/1.1
// only. Computed once at init time and reused for every connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	// Go's http.Transport cannot speak h2 over a utls connection.
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// NewHTTPEngine creates an HTTPEngine with a Chrome-like TLS fingerprint.
func NewHTTPEngine(opts HTTPOptions) (*HTTPEngine, error) {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: 10 * time.Second}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)
			tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
			if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
				conn.Close()
				return nil, fmt.Errorf("http_engine: apply tls spec: %w", err)
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2:   false,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("http_engine: parse proxy: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	e := &HTTPEngine{
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent: opts.UserAgent,
		maxBody:   opts.MaxBodyBytes,
	}
	if e.maxBody <= 0 {
		e.maxBody = DefaultMaxBodyBytes
	}
	return e, nil
}

func (e *HTTPEngine) Name() string { return "http" }

// Fetch GETs the page and returns its markup decoded to UTF-8. Error statuses
// and non-HTML responses are failures.
func (e *HTTPEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := e.newRequest(ctx, req.URL, "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	if err != nil {
		return nil, err
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http_engine: do request: %w", err)
	}
	defer resp.Body.Close()

	ct := resp.Header.Get("Content-Type")
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("http_engine: %w", &StatusError{Code: resp.StatusCode})
	}
	if !isHTMLContentType(ct) {
		return nil, fmt.Errorf("http_engine: %w (content-type: %s)", ErrNotHTML, ct)
	}

	body, err := readBody(resp, e.maxBody)
	if err != nil {
		return nil, fmt.Errorf("http_engine: %w", err)
	}
	markup := toUTF8(body, ct)

	return &FetchResult{
		HTML:       markup,
		Title:      htmltext.Title(markup),
		StatusCode: resp.StatusCode,
		FinalURL:   resp.Request.URL.String(),
		EngineName: e.Name(),
	}, nil
}

// Get retrieves a secondary resource. Error statuses are not failures; the
// caller inspects Resource.StatusCode.
func (e *HTTPEngine) Get(ctx context.Context, rawURL, accept string) (*Resource, error) {
	httpReq, err := e.newRequest(ctx, rawURL, accept)
	if err != nil {
		return nil, err
	}
	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http_engine: get %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp, e.maxBody)
	if err != nil {
		return nil, fmt.Errorf("http_engine: get %s: %w", rawURL, err)
	}
	return &Resource{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// UserAgent returns the User-Agent sent with every request.
func (e *HTTPEngine) UserAgent() string {
	if e.userAgent == "" {
		return defaultUserAgent
	}
	return e.userAgent
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

func (e *HTTPEngine) newRequest(ctx context.Context, rawURL, accept string) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("http_engine: build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", e.UserAgent())
	httpReq.Header.Set("Accept", accept)
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.9")
	httpReq.Header.Set("Accept-Encoding", "gzip, deflate, br")
	return httpReq, nil
}

// isHTMLContentType returns true if the content-type header looks like HTML.
// A missing header is accepted; many small sites omit it.
func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return ct == "" || strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}
