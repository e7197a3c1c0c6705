package graw

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jamesprial/graw/internal"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/types"
)

const (
	// DefaultBaseURL is the default Reddit API base URL
	DefaultBaseURL = "https://oauth.reddit.com/"
	// DefaultAuthURL is the default Reddit OAuth base URL
	DefaultAuthURL = "https://www.reddit.com/"
	// DefaultRedditURL is the public site used to resolve permalinks and redirects
	DefaultRedditURL = "https://www.reddit.com"
	// DefaultUserAgent is the default user agent string
	DefaultUserAgent = "graw/0.2"
	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second
	// DefaultCommentLimit caps the comments requested with a submission
	DefaultCommentLimit = 2048
	// DefaultCommentSort is the sort used for new submissions
	DefaultCommentSort = types.SortConfidence
)

// Environment variables read by ConfigFromEnv.
const (
	EnvClientID     = "REDDIT_CLIENT_ID"
	EnvClientSecret = "REDDIT_CLIENT_SECRET"
	EnvUsername     = "REDDIT_USERNAME"
	EnvPassword     = "REDDIT_PASSWORD"
	EnvUserAgent    = "REDDIT_USER_AGENT"
)

// RateLimitConfig controls client-side throttling of API requests.
type RateLimitConfig struct {
	// RequestsPerMinute caps steady-state throughput. Defaults to 60.
	RequestsPerMinute float64
	// Burst allows short spikes above the steady-state rate. Defaults to 10.
	Burst int
}

// Config holds the configuration for the Reddit session.
//
// For application-only (read-only) access provide ClientID and ClientSecret.
// For user access additionally provide Username and Password.
//
//	config := &graw.Config{
//		Username:     "your-username",
//		Password:     "your-password",
//		ClientID:     "your-client-id",
//		ClientSecret: "your-client-secret",
//		UserAgent:    "linux:myapp:1.0 (by /u/yourusername)",
//	}
type Config struct {
	// Username and Password for the password grant.
	// Leave empty for read-only access.
	Username string
	Password string

	// ClientID and ClientSecret from Reddit's app preferences.
	ClientID     string
	ClientSecret string

	// UserAgent identifies your application to Reddit.
	// Should follow format: "platform:app-name:version (by /u/username)"
	UserAgent string

	// BaseURL for the Reddit API. Defaults to DefaultBaseURL.
	BaseURL string

	// AuthURL for Reddit OAuth authentication. Defaults to DefaultAuthURL.
	AuthURL string

	// RedditURL is the public site used to resolve relative permalinks.
	// Defaults to DefaultRedditURL.
	RedditURL string

	// HTTPClient to use for requests.
	// Defaults to a client with DefaultTimeout and an OpenTelemetry transport.
	HTTPClient *http.Client

	// Logger for structured diagnostics. Nil discards all records.
	Logger *slog.Logger

	// RateLimit configures client-side throttling. Nil uses the defaults.
	RateLimit *RateLimitConfig

	// CommentLimit and CommentSort apply to submissions created by this session.
	CommentLimit int
	CommentSort  string
}

// ConfigFromEnv builds a Config from the REDDIT_* environment variables.
// A .env file in the working directory is loaded first when present.
func ConfigFromEnv() *Config {
	_ = godotenv.Load()

	return &Config{
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
		Username:     os.Getenv(EnvUsername),
		Password:     os.Getenv(EnvPassword),
		UserAgent:    os.Getenv(EnvUserAgent),
	}
}

// applyDefaults validates the settings and fills in every unset field.
func (c *Config) applyDefaults(validator *internal.Validator) error {
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if err := validator.ValidateUserAgent(c.UserAgent); err != nil {
		return err
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.AuthURL == "" {
		c.AuthURL = DefaultAuthURL
	}
	if c.RedditURL == "" {
		c.RedditURL = DefaultRedditURL
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.CommentLimit == 0 {
		c.CommentLimit = DefaultCommentLimit
	}
	if c.CommentLimit < 0 {
		return &pkgerrs.ConfigError{Field: "CommentLimit", Message: "comment limit cannot be negative"}
	}
	if c.CommentSort == "" {
		c.CommentSort = DefaultCommentSort
	}
	if err := validator.ValidateCommentSort(c.CommentSort); err != nil {
		return &pkgerrs.ConfigError{Field: "CommentSort", Message: err.Error()}
	}
	return nil
}

func (c *Config) rateLimit() *internal.RateLimitConfig {
	if c.RateLimit == nil {
		return nil
	}
	return &internal.RateLimitConfig{
		RequestsPerMinute: c.RateLimit.RequestsPerMinute,
		Burst:             c.RateLimit.Burst,
	}
}
