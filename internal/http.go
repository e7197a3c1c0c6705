package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"golang.org/x/time/rate"
)

// Client manages communication with the Reddit API.
type Client struct {
	client    *http.Client
	BaseURL   *url.URL
	UserAgent string
	tokens    TokenSource
	logger    *slog.Logger

	limiter        *rate.Limiter
	mu             sync.Mutex
	forceWaitUntil time.Time
}

// RateLimitConfig controls how requests are throttled before reaching Reddit.
type RateLimitConfig struct {
	// RequestsPerMinute caps steady-state throughput. Defaults to 60 if zero.
	RequestsPerMinute float64
	// Burst allows short spikes above the steady-state rate. Defaults to 10 if zero.
	Burst int
}

const (
	DefaultRequestsPerMinute = 60
	DefaultRateLimitBurst    = 10
	SecondsPerMinute         = 60.0
	ParseFloatBitSize        = 64
)

// NewClient returns a new Reddit API client.
// If a nil httpClient is provided, http.DefaultClient will be used. The
// client is copied so that redirects are returned to the caller instead of followed.
func NewClient(httpClient *http.Client, tokens TokenSource, baseURL string, userAgent string, rateCfg *RateLimitConfig, logger *slog.Logger) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if tokens == nil {
		return nil, &pkgerrs.ConfigError{Field: "tokens", Message: "token source cannot be nil"}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, &pkgerrs.ClientError{Operation: "parse base URL", Err: err}
	}
	if !strings.HasSuffix(parsedURL.Path, "/") {
		parsedURL.Path += "/"
	}

	if rateCfg == nil {
		rateCfg = &RateLimitConfig{}
	}

	noRedirect := *httpClient
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	c := &Client{
		client:    &noRedirect,
		BaseURL:   parsedURL,
		UserAgent: userAgent,
		tokens:    tokens,
		logger:    logger,
		limiter:   buildLimiter(*rateCfg),
	}

	return c, nil
}

// ReadOnly reports whether the underlying credentials lack a user identity.
func (c *Client) ReadOnly() bool {
	return c.tokens.ReadOnly()
}

// Request issues a request and returns the decoded JSON body. Relative paths
// resolve against BaseURL. Absolute URLs to other hosts are sent without the
// Authorization header and without Reddit-specific parameters.
func (c *Client) Request(ctx context.Context, method, path string, params, data url.Values, files map[string]string) (any, error) {
	req, foreign, err := c.NewRequest(ctx, method, path, params, data, files)
	if err != nil {
		return nil, err
	}
	result, err := c.Do(req, foreign)
	if foreign || !hasStatus(err, http.StatusUnauthorized) {
		return result, err
	}

	// expired or revoked token: renew once
	inv, ok := c.tokens.(interface{ Invalidate() })
	if !ok {
		return result, err
	}
	inv.Invalidate()
	if req, _, err = c.NewRequest(ctx, method, path, params, data, files); err != nil {
		return nil, err
	}
	return c.Do(req, foreign)
}

func hasStatus(err error, status int) bool {
	var apiErr *pkgerrs.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// NewRequest creates an API request. It reports whether the target lies outside BaseURL's host.
func (c *Client) NewRequest(ctx context.Context, method, path string, params, data url.Values, files map[string]string) (*http.Request, bool, error) {
	u, err := c.BaseURL.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, false, &pkgerrs.ClientError{Operation: "parse path", Err: err}
	}
	foreign := u.Host != c.BaseURL.Host

	query := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	if !foreign {
		query.Set("raw_json", "1")
	}
	u.RawQuery = query.Encode()

	var body io.Reader
	contentType := ""
	switch {
	case len(files) > 0:
		buf, ct, err := multipartBody(data, files)
		if err != nil {
			return nil, false, err
		}
		body, contentType = buf, ct
	case data != nil:
		form := url.Values{}
		for k, vs := range data {
			form[k] = append([]string(nil), vs...)
		}
		if !foreign && form.Get("api_type") == "" {
			form.Set("api_type", "json")
		}
		body, contentType = strings.NewReader(form.Encode()), "application/x-www-form-urlencoded"
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, false, &pkgerrs.ClientError{Operation: "build request", Err: err}
	}

	req.Header.Set("User-Agent", c.UserAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if !foreign {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, false, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, foreign, nil
}

func multipartBody(data url.Values, files map[string]string) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, vs := range data {
		for _, v := range vs {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", &pkgerrs.ClientError{Operation: "write multipart field", Err: err}
			}
		}
	}
	for field, path := range files {
		if err := writeFile(w, field, path); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", &pkgerrs.ClientError{Operation: "close multipart body", Err: err}
	}
	return buf, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &pkgerrs.ClientError{Operation: "open upload", Err: err}
	}
	defer f.Close()

	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return &pkgerrs.ClientError{Operation: "create multipart file", Err: err}
	}
	if _, err := io.Copy(part, f); err != nil {
		return &pkgerrs.ClientError{Operation: "copy upload", Err: err}
	}
	return nil
}

// Do sends an API request and returns the decoded JSON body, or an error
// mapped from the response status.
func (c *Client) Do(req *http.Request, foreign bool) (any, error) {
	if !foreign {
		if err := c.waitForRateLimit(req.Context()); err != nil {
			return nil, &pkgerrs.ClientError{Operation: "rate limit wait", Err: err}
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: req.Method, URL: req.URL.Path, Err: err}
	}
	defer resp.Body.Close()

	if !foreign {
		c.applyRateHeaders(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: req.Method, URL: req.URL.Path, Message: "failed to read response body", Err: err}
	}

	c.logger.Debug("reddit request", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode)

	switch {
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		return nil, redirectError(resp)
	case resp.StatusCode == http.StatusRequestEntityTooLarge:
		return nil, &pkgerrs.TooLargeMediaError{Message: strings.TrimSpace(string(body))}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, apiError(resp.StatusCode, body)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	decoded, err := Decode(body)
	if err != nil {
		if foreign {
			return nil, nil
		}
		return nil, err
	}
	return decoded, nil
}

func redirectError(resp *http.Response) error {
	location := resp.Header.Get("Location")
	path := location
	if u, err := url.Parse(location); err == nil {
		path = u.Path
	}
	return &pkgerrs.RedirectError{StatusCode: resp.StatusCode, Path: path}
}

func apiError(status int, body []byte) error {
	apiErr := &pkgerrs.APIError{StatusCode: status, Message: http.StatusText(status)}
	var details any
	if err := json.Unmarshal(body, &details); err != nil {
		if text := strings.TrimSpace(string(body)); text != "" {
			apiErr.Message = text
		}
		return apiErr
	}
	apiErr.Details = details
	if m, ok := details.(map[string]any); ok {
		if msg, ok := m["message"].(string); ok && msg != "" {
			apiErr.Message = msg
		}
		if reason, ok := m["reason"].(string); ok {
			apiErr.ErrorCode = reason
		}
	}
	return apiErr
}

func buildLimiter(cfg RateLimitConfig) *rate.Limiter {
	requestsPerMinute := cfg.RequestsPerMinute
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = DefaultRateLimitBurst
	}

	limitPerSecond := rate.Limit(requestsPerMinute / SecondsPerMinute)
	if limitPerSecond <= 0 {
		limitPerSecond = rate.Limit(1)
	}

	return rate.NewLimiter(limitPerSecond, burst)
}

func (c *Client) waitForRateLimit(ctx context.Context) error {
	if err := c.waitForForcedDelay(ctx); err != nil {
		return err
	}

	if c.limiter == nil {
		return nil
	}

	return c.limiter.Wait(ctx)
}

func (c *Client) waitForForcedDelay(ctx context.Context) error {
	for {
		c.mu.Lock()
		waitUntil := c.forceWaitUntil
		c.mu.Unlock()

		if waitUntil.IsZero() {
			return nil
		}

		now := time.Now()
		if !now.Before(waitUntil) {
			c.clearForcedDelay(waitUntil)
			return nil
		}

		timer := time.NewTimer(waitUntil.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			c.clearForcedDelay(waitUntil)
		}
	}
}

func (c *Client) clearForcedDelay(previous time.Time) {
	c.mu.Lock()
	if previous.Equal(c.forceWaitUntil) {
		c.forceWaitUntil = time.Time{}
	}
	c.mu.Unlock()
}

func (c *Client) applyRateHeaders(resp *http.Response) {
	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		if seconds, err := strconv.ParseFloat(retryAfter, ParseFloatBitSize); err == nil && seconds > 0 {
			c.deferRequests(time.Duration(seconds * float64(time.Second)))
		}
	}

	remainingHeader := resp.Header.Get("X-Ratelimit-Remaining")
	resetHeader := resp.Header.Get("X-Ratelimit-Reset")
	if remainingHeader == "" || resetHeader == "" {
		return
	}

	remaining, errRemaining := strconv.ParseFloat(remainingHeader, ParseFloatBitSize)
	resetSeconds, errReset := strconv.ParseFloat(resetHeader, ParseFloatBitSize)
	if errRemaining != nil || errReset != nil || resetSeconds <= 0 {
		return
	}

	if remaining <= 1 {
		c.deferRequests(time.Duration(resetSeconds * float64(time.Second)))
	}
}

func (c *Client) deferRequests(d time.Duration) {
	if d <= 0 {
		return
	}

	until := time.Now().Add(d)

	c.mu.Lock()
	if until.After(c.forceWaitUntil) {
		c.forceWaitUntil = until
	}
	c.mu.Unlock()
}
