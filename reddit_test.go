package graw

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{name: "nil config", config: nil, wantErr: true},
		{name: "missing client ID", config: &Config{ClientSecret: "secret"}, wantErr: true},
		{name: "missing client secret", config: &Config{ClientID: "id"}, wantErr: true},
		{name: "negative comment limit", config: &Config{ClientID: "id", ClientSecret: "secret", CommentLimit: -1}, wantErr: true},
		{name: "bad comment sort", config: &Config{ClientID: "id", ClientSecret: "secret", CommentSort: "loudest"}, wantErr: true},
		{name: "application only", config: &Config{ClientID: "id", ClientSecret: "secret"}},
		{name: "password grant", config: &Config{ClientID: "id", ClientSecret: "secret", Username: "u", Password: "p"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewClient(tt.config)
			if tt.wantErr {
				var cfgErr *pkgerrs.ConfigError
				assert.ErrorAs(t, err, &cfgErr)
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.config.Username == "", r.ReadOnly())
		})
	}
}

func TestNewClientAppliesDefaults(t *testing.T) {
	r, err := NewClient(&Config{ClientID: "id", ClientSecret: "secret"})
	require.NoError(t, err)

	cfg := r.Config()
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultAuthURL, cfg.AuthURL)
	assert.Equal(t, DefaultRedditURL, cfg.RedditURL)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, DefaultCommentLimit, cfg.CommentLimit)
	assert.Equal(t, DefaultCommentSort, cfg.CommentSort)
	assert.NotNil(t, cfg.HTTPClient)
	assert.NotNil(t, cfg.Logger)
	assert.Nil(t, cfg.rateLimit())
}

func TestNewClientWithRequestor(t *testing.T) {
	_, err := NewClientWithRequestor(nil, nil)
	var cfgErr *pkgerrs.ConfigError
	assert.ErrorAs(t, err, &cfgErr)

	fake := newFakeRequestor(t)
	fake.readOnly = true
	r, err := NewClientWithRequestor(&Config{CommentSort: "new"}, fake)
	require.NoError(t, err)
	assert.True(t, r.ReadOnly())
	assert.Equal(t, "new", r.Config().CommentSort)
}

func TestConfigRateLimit(t *testing.T) {
	cfg := &Config{RateLimit: &RateLimitConfig{RequestsPerMinute: 30, Burst: 2}}
	rl := cfg.rateLimit()
	require.NotNil(t, rl)
	assert.Equal(t, 30.0, rl.RequestsPerMinute)
	assert.Equal(t, 2, rl.Burst)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(EnvClientID, "env-id")
	t.Setenv(EnvClientSecret, "env-secret")
	t.Setenv(EnvUsername, "env-user")
	t.Setenv(EnvPassword, "env-pass")
	t.Setenv(EnvUserAgent, "test:env:1.0")

	cfg := ConfigFromEnv()
	assert.Equal(t, "env-id", cfg.ClientID)
	assert.Equal(t, "env-secret", cfg.ClientSecret)
	assert.Equal(t, "env-user", cfg.Username)
	assert.Equal(t, "env-pass", cfg.Password)
	assert.Equal(t, "test:env:1.0", cfg.UserAgent)
}

func TestRequestConvertsBadRequestEnvelope(t *testing.T) {
	fake := newFakeRequestor(t).
		fail(http.MethodPost, "api/vote/", &pkgerrs.APIError{
			StatusCode: http.StatusBadRequest,
			Details: map[string]any{
				"explanation": "that thing is archived",
				"reason":      "THREAD_LOCKED",
				"fields":      []any{"id"},
			},
		}).
		fail(http.MethodPost, "api/save/", &pkgerrs.APIError{
			StatusCode: http.StatusConflict,
			Details:    map[string]any{"json": map[string]any{"errors": []any{[]any{"X", "y", "z"}}}},
		})
	r := newTestReddit(t, fake)
	ctx := context.Background()

	_, err := r.Post(ctx, "api/vote/", nil, nil, nil)
	var apiErr *pkgerrs.RedditAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "THREAD_LOCKED", apiErr.First().ErrorType)
	assert.Equal(t, "id", apiErr.First().Field)

	_, err = r.Post(ctx, "api/save/", nil, nil, nil)
	assert.False(t, errors.As(err, &apiErr), "only 400 responses carry envelopes")
	assert.True(t, pkgerrs.IsConflict(err))
}

func TestRequestEnvelopeInSuccessfulBody(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodPost, "api/comment/",
		`{"json": {"errors": [["RATELIMIT", "you are doing that too much", "ratelimit"]]}}`)
	r := newTestReddit(t, fake)

	_, err := r.Submission("abc").Reply(context.Background(), "hi")
	var apiErr *pkgerrs.RedditAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "RATELIMIT", apiErr.First().ErrorType)
}

func TestInfo(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodGet, "api/info/", listingOf("",
		submissionThing("a", nil),
		commentThing("c", "t3_a", "t3_a", nil),
		thing("t5", map[string]any{"display_name": "golang", "id": "2rc7j", "name": "t5_2rc7j"}),
	))
	r := newTestReddit(t, fake)

	items, err := r.Info(context.Background(), []string{"t3_a", "t1_c", "t5_2rc7j"})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.IsType(t, &Submission{}, items[0])
	assert.IsType(t, &Comment{}, items[1])
	assert.Equal(t, "golang", items[2].Key())
	assert.Equal(t, "t3_a,t1_c,t5_2rc7j", fake.requests[0].Params.Get("id"))

	_, err = r.Info(context.Background(), []string{"nope"})
	var inputErr *pkgerrs.InvalidInputError
	assert.ErrorAs(t, err, &inputErr)
}

func TestInfoLargeBatch(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodGet, "api/info/", listingOf(""))
	r := newTestReddit(t, fake)

	names := make([]string, 201)
	for i := range names {
		names[i] = fmt.Sprintf("t3_%d", i)
	}
	_, err := r.Info(context.Background(), names)
	require.NoError(t, err)
	require.Len(t, fake.requests, 3)
	assert.Len(t, strings.Split(fake.requests[2].Params.Get("id"), ","), 1)
}

func TestMeRequiresUser(t *testing.T) {
	fake := newFakeRequestor(t)
	fake.readOnly = true
	r := newTestReddit(t, fake)

	_, err := r.Me(context.Background())
	var roErr *pkgerrs.ReadOnlyError
	assert.ErrorAs(t, err, &roErr)
	assert.Empty(t, fake.requests)
}
