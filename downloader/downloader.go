// Package downloader fetches raw pages from EDGAR.
package downloader

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog/log"
	"go.uber.org/ratelimit"
)

var (
	// ErrNetwork is matched by every transport fault and non-2xx response.
	ErrNetwork = errors.New("network error")

	ErrFileNotFound = errors.New("file not found")
	ErrRateLimited  = errors.New("rate limited")
	ErrForbidden    = errors.New("forbidden")
)

// StatusError is returned when EDGAR answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("got status code %d for url %s", e.StatusCode, e.URL)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return true
	case ErrFileNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	}
	return false
}

type Options struct {
	// UserAgent is sent on every request. EDGAR refuses requests without a
	// contact-style agent, so an empty value is replaced by a generated one.
	UserAgent string
	Timeout   time.Duration
	// RequestsPerSecond throttles outgoing requests; 0 disables the limiter.
	RequestsPerSecond int
	HTTPClient        *http.Client
}

type Client struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	rl         ratelimit.Limiter
}

func New(opts Options) *Client {
	c := &Client{
		httpClient: opts.HTTPClient,
		userAgent:  opts.UserAgent,
		timeout:    opts.Timeout,
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent()
	}
	if c.timeout <= 0 {
		c.timeout = 30 * time.Second
	}
	if opts.RequestsPerSecond > 0 {
		c.rl = ratelimit.New(opts.RequestsPerSecond)
	} else {
		c.rl = ratelimit.NewUnlimited()
	}
	return c
}

func DefaultUserAgent() string {
	return fmt.Sprintf("Sample Company Name %s@sampledomain.com", gonanoid.Must())
}

func (c *Client) UserAgent() string {
	return c.userAgent
}

// Download fetches url and returns the (decompressed) body.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	s := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request for %s: %w", ErrNetwork, url, err)
	}

	req.Header.Add("accept-language", "en-US,en;q=0.9")
	req.Header.Add("accept-encoding", "gzip")
	req.Header.Add("User-Agent", c.userAgent)

	c.rl.Take()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", url).Msg("error making request")
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		log.Warn().Str("url", url).Msg("getting rate limited")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	var body io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: creating gzip reader for %s: %w", ErrNetwork, url, err)
		}
		defer gReader.Close()
		body = gReader
	}

	content, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrNetwork, url, err)
	}

	log.Debug().Str("url", url).Dur("elapsed", time.Since(s)).Int("bytes", len(content)).Msg("downloaded SEC file")
	return content, nil
}
