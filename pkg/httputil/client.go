package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/familytree/pkg/cache"
	"github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/observability"
)

const (
	httpTimeout = 30 * time.Second

	// TextContentType is sent with upload requests. The Apps Script endpoint
	// reads the body as plain text, which also avoids a CORS preflight when
	// the same endpoint is called from a browser.
	TextContentType = "text/plain;charset=utf-8"
)

// Client fetches sheet exports and posts edit requests. GET responses are
// cached through a [cache.Cache]; failed requests are retried with backoff.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	headers map[string]string
	backoff Backoff
}

// NewClient creates a Client backed by c. A nil cache disables caching.
// Headers are applied to every request; pass nil when none are needed.
func NewClient(c cache.Cache, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:    NewHTTPClient(),
		cache:   c,
		keyer:   cache.NewDefaultKeyer(),
		ttl:     ttl,
		headers: headers,
		backoff: DefaultBackoff,
	}
}

// NewHTTPClient creates an HTTP client with the standard request timeout.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// WithHTTPClient replaces the underlying transport client. Used in tests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// WithBackoff replaces the retry policy of downloads.
func (c *Client) WithBackoff(b Backoff) *Client {
	c.backoff = b
	return c
}

// GetBytes downloads url, serving it from cache unless refresh is set.
func (c *Client) GetBytes(ctx context.Context, rawURL string, refresh bool) ([]byte, error) {
	key := c.keyer.SheetKey(rawURL)
	hooks := observability.Cache()

	if !refresh {
		if data, hit, _ := c.cache.Get(ctx, key); hit {
			hooks.OnCacheHit(ctx, "sheet")
			return data, nil
		}
		hooks.OnCacheMiss(ctx, "sheet")
	}

	var data []byte
	err := c.backoff.Do(ctx, func() error {
		body, err := c.do(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		data = body
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, data, c.ttl); err == nil {
		hooks.OnCacheSet(ctx, "sheet", len(data))
	}
	return data, nil
}

// PostText sends payload as a JSON document with a plain-text content type
// and decodes the JSON response into v (which may be nil).
// Uploads are not retried: the endpoint is not idempotent.
func (c *Client) PostText(ctx context.Context, rawURL string, payload, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "encode request")
	}
	resp, err := c.do(ctx, http.MethodPost, rawURL, body)
	if err != nil {
		return errors.Wrap(errors.ErrCodeUploadFailed, err, "upload to %s", redact(rawURL))
	}
	if v == nil || len(bytes.TrimSpace(resp)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp, v); err != nil {
		return errors.Wrap(errors.ErrCodeUploadFailed, err, "decode response")
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, rawURL string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.Header.Set("Content-Type", TextContentType)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, host, path, err)
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "%s %s", method, redact(rawURL))
		}
		return nil, &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "%s %s", method, redact(rawURL))}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		var re *RetryableError
		if stderrors.As(err, &re) {
			re.After = retryAfter(resp.Header)
		}
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "status %d", code)
	case code == http.StatusTooManyRequests || code >= 500:
		return &RetryableError{Err: errors.New(errors.ErrCodeNetwork, "status %d", code)}
	default:
		return errors.New(errors.ErrCodeNetwork, "status %d", code)
	}
}

// redact drops the query string, which for published sheets and script
// deployments may carry access tokens.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	return fmt.Sprintf("%s://%s%s", u.Scheme, u.Host, u.Path)
}
