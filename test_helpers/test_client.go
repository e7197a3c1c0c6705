package test_helpers

import (
	"fmt"
	"net/http"
	"time"

	graw "github.com/jamesprial/graw"
)

// TestClient pairs a session with the mock server it talks to.
type TestClient struct {
	*graw.Reddit
	server *RedditMockServer
}

// ClientOptions tweaks the session NewTestClient builds.
type ClientOptions struct {
	// ReadOnly drops the user credentials so the application-only grant is used.
	ReadOnly  bool
	RateLimit *graw.RateLimitConfig
	Timeout   time.Duration
}

// NewTestClient starts a mock server and a session whose base and auth URLs
// point at it.
func NewTestClient(opts *ClientOptions) *TestClient {
	if opts == nil {
		opts = &ClientOptions{}
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	server := NewRedditMockServer()
	config := &graw.Config{
		ClientID:     "test_client_id",
		ClientSecret: "test_client_secret",
		UserAgent:    "test:graw:1.0 (by /u/tester)",
		BaseURL:      server.URL(),
		AuthURL:      server.URL(),
		RedditURL:    server.URL(),
		HTTPClient:   &http.Client{Timeout: timeout},
		RateLimit:    opts.RateLimit,
	}
	if !opts.ReadOnly {
		config.Username = "test_user"
		config.Password = "test_pass"
	}

	reddit, err := graw.NewClient(config)
	if err != nil {
		server.Close()
		panic(fmt.Sprintf("failed to create reddit client: %v", err))
	}
	return &TestClient{Reddit: reddit, server: server}
}

// Server returns the mock server.
func (tc *TestClient) Server() *RedditMockServer {
	return tc.server
}

// Close stops the mock server.
func (tc *TestClient) Close() {
	tc.server.Close()
}
