// Package test_helpers provides an in-process Reddit stand-in that serves
// both the OAuth token endpoint and canned API responses.
package test_helpers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// TokenPath is where the server answers token requests.
const TokenPath = "/api/v1/access_token"

// RequestEntry records one request the server received.
type RequestEntry struct {
	Method    string
	Path      string
	Query     url.Values
	Form      url.Values
	Headers   http.Header
	Timestamp time.Time
}

// MockResponse is a canned reply.
type MockResponse struct {
	Status  int
	Body    string
	Headers map[string]string
	// Location is sent with 3xx statuses.
	Location string
}

// JSON returns a 200 response carrying v encoded as JSON.
func JSON(v any) *MockResponse {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("encode mock body: %v", err))
	}
	return &MockResponse{Status: http.StatusOK, Body: string(b)}
}

// Redirect returns a 302 response pointing at location.
func Redirect(location string) *MockResponse {
	return &MockResponse{Status: http.StatusFound, Location: location}
}

// Status returns a response with the given status and raw body.
func Status(status int, body string) *MockResponse {
	return &MockResponse{Status: status, Body: body}
}

// RedditMockServer serves the token endpoint and routes keyed by method and
// path. Responses registered for the same route are served in order and the
// last one repeats.
type RedditMockServer struct {
	server *httptest.Server

	mu          sync.Mutex
	routes      map[string][]*MockResponse
	served      map[string]int
	requests    []RequestEntry
	tokenStatus int
	tokens      int
	rateHeaders map[string]string
}

// NewRedditMockServer starts a server. Close it when done.
func NewRedditMockServer() *RedditMockServer {
	s := &RedditMockServer{
		routes:      map[string][]*MockResponse{},
		served:      map[string]int{},
		tokenStatus: http.StatusOK,
	}
	s.server = httptest.NewServer(s)
	return s
}

// URL returns the server's base URL with a trailing slash.
func (s *RedditMockServer) URL() string {
	return s.server.URL + "/"
}

// Close shuts the server down.
func (s *RedditMockServer) Close() {
	s.server.Close()
}

// On registers responses for method and path. Path has no leading slash,
// matching how endpoints are written.
func (s *RedditMockServer) On(method, path string, responses ...*MockResponse) *RedditMockServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " /" + strings.TrimPrefix(path, "/")
	s.routes[key] = append(s.routes[key], responses...)
	return s
}

// FailTokens makes the token endpoint answer with status.
func (s *RedditMockServer) FailTokens(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenStatus = status
}

// SetupRateLimit adds Reddit's rate limit headers to every API response.
func (s *RedditMockServer) SetupRateLimit(remaining, used float64, reset time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rateHeaders = map[string]string{
		"X-Ratelimit-Remaining": strconv.FormatFloat(remaining, 'f', -1, 64),
		"X-Ratelimit-Used":      strconv.FormatFloat(used, 'f', -1, 64),
		"X-Ratelimit-Reset":     strconv.Itoa(int(reset.Seconds())),
	}
}

// TokenRequests returns how many tokens were issued.
func (s *RedditMockServer) TokenRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens
}

// Requests returns the API requests received so far, token requests excluded.
func (s *RedditMockServer) Requests() []RequestEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RequestEntry(nil), s.requests...)
}

// LastRequest returns the most recent request to path.
func (s *RedditMockServer) LastRequest(path string) (*RequestEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path = "/" + strings.TrimPrefix(path, "/")
	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i].Path == path {
			entry := s.requests[i]
			return &entry, nil
		}
	}
	return nil, fmt.Errorf("no requests found for path: %s", path)
}

// ServeHTTP implements http.Handler.
func (s *RedditMockServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == TokenPath {
		s.serveToken(w)
		return
	}

	body, _ := io.ReadAll(r.Body)
	form, _ := url.ParseQuery(string(body))

	s.mu.Lock()
	s.requests = append(s.requests, RequestEntry{
		Method:    r.Method,
		Path:      r.URL.Path,
		Query:     r.URL.Query(),
		Form:      form,
		Headers:   r.Header.Clone(),
		Timestamp: time.Now(),
	})
	key := r.Method + " " + r.URL.Path
	responses := s.routes[key]
	var resp *MockResponse
	if len(responses) > 0 {
		resp = responses[min(s.served[key], len(responses)-1)]
		s.served[key]++
	}
	for k, v := range s.rateHeaders {
		w.Header().Set(k, v)
	}
	s.mu.Unlock()

	if resp == nil {
		http.Error(w, `{"message": "Not Found", "error": 404}`, http.StatusNotFound)
		return
	}
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	if resp.Location != "" {
		w.Header().Set("Location", resp.Location)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	_, _ = w.Write([]byte(resp.Body))
}

func (s *RedditMockServer) serveToken(w http.ResponseWriter) {
	s.mu.Lock()
	status := s.tokenStatus
	if status == http.StatusOK {
		s.tokens++
	}
	n := s.tokens
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status != http.StatusOK {
		_, _ = w.Write([]byte(`{"error": "invalid_grant"}`))
		return
	}
	_, _ = fmt.Fprintf(w, `{"access_token": "mock_token_%d", "token_type": "bearer", "expires_in": 3600, "scope": "*"}`, n)
}
