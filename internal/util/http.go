package util

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
)

type HTTPClientOptions struct {
	Timeout    time.Duration
	UserAgent  string
	Cookie     string
	CookieFile string
	// Cloudflare wraps the transport with browser-like TLS and headers.
	Cloudflare  bool
	Transport   http.RoundTripper
	DebugLogger interface {
		Debugf(string, ...any)
	}
}

func NewHTTPClient(opts HTTPClientOptions) (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	var baseTransport http.RoundTripper
	if opts.Transport != nil {
		baseTransport = opts.Transport
	} else {
		baseTransport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DisableCompression:  false,
			MaxIdleConns:        100,
			MaxConnsPerHost:     100,
			MaxIdleConnsPerHost: 100,
			ForceAttemptHTTP2:   true,
		}
	}

	if opts.Cloudflare {
		baseTransport = cloudflarebp.AddCloudFlareByPass(baseTransport)
	}

	client := &http.Client{
		Timeout: opts.Timeout,
		Transport: roundTripper{
			base:         baseTransport,
			ua:           opts.UserAgent,
			cookieHeader: joinCookies(opts.Cookie, opts.CookieFile),
			log:          opts.DebugLogger,
		},
		Jar: jar,
	}

	if opts.DebugLogger != nil {
		opts.DebugLogger.Debugf("HTTP client initialized (timeout=%s, ua=%q, cookieFile=%q, cloudflare=%t)\n",
			opts.Timeout, opts.UserAgent, opts.CookieFile, opts.Cloudflare)
	}

	return client, nil
}

type roundTripper struct {
	base         http.RoundTripper
	ua           string
	cookieHeader string
	log          interface{ Debugf(string, ...any) }
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if rt.ua != "" {
		req.Header.Set("User-Agent", rt.ua)
	}

	if rt.cookieHeader != "" {
		if req.Header.Get("Cookie") == "" {
			req.Header.Set("Cookie", rt.cookieHeader)
		}
	}

	if rt.log != nil {
		rt.log.Debugf("HTTP %s %s\n", req.Method, req.URL.String())
	}

	return rt.base.RoundTrip(req)
}

func joinCookies(inline, file string) string {
	s := strings.TrimSpace(inline)
	if file != "" {
		if b, err := os.ReadFile(file); err == nil {
			// first non-empty line
			sc := bufio.NewScanner(strings.NewReader(string(b)))
			for sc.Scan() {
				line := strings.TrimSpace(sc.Text())
				if line != "" {
					if s == "" {
						s = line
					} else {
						s = s + "; " + line
					}
					break
				}
			}
		}
	}

	return s
}

// DoWithRetry executes req up to attempts times, retrying transport errors
// and 5xx responses with a linear backoff.
func DoWithRetry(c *http.Client, req *http.Request, attempts int, backoff time.Duration) (*http.Response, error) {
	var resp *http.Response
	var err error

	if attempts < 1 {
		attempts = 1
	}

	for i := 1; i <= attempts; i++ {
		resp, err = c.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}

		if i == attempts {
			break
		}

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(backoff * time.Duration(i)):
		}
	}

	if err == nil && resp != nil {
		return nil, &StatusError{URL: req.URL.String(), Code: resp.StatusCode}
	}

	return nil, err
}

// StatusError is a response outside the 2xx range.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.Code, e.URL)
}

// Fetcher reads whole pages as text. Retries live here, at the transport,
// never in the extractors.
type Fetcher struct {
	Client   *http.Client
	Attempts int
	Backoff  time.Duration
}

func NewFetcher(c *http.Client, attempts int) *Fetcher {
	return &Fetcher{Client: c, Attempts: attempts, Backoff: 500 * time.Millisecond}
}

func (f *Fetcher) GetText(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}

	resp, err := DoWithRetry(f.Client, req, f.Attempts, f.Backoff)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{URL: target, Code: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", target, err)
	}

	return string(data), nil
}

func PickUserAgent(override string) string {
	if override != "" {
		return override
	}

	return "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
}
