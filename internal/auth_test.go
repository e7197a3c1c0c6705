package internal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockResponse defines the response from the mock server.
type mockResponse struct {
	statusCode int
	body       string
}

// mockAuthServer is a mock HTTP server for testing the authenticator.
type mockAuthServer struct {
	t            *testing.T
	mockResponse *mockResponse
	grantType    string
	expectedUser string
	expectedPass string
	username     string
	password     string
	calls        atomic.Int32
}

// ServeHTTP handles incoming requests to the mock server.
func (s *mockAuthServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.calls.Add(1)
	if r.Method != http.MethodPost {
		s.t.Errorf("expected POST request, got %s", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	user, pass, ok := r.BasicAuth()
	if !ok || user != s.expectedUser || pass != s.expectedPass {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": "invalid_client"}`)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.t.Errorf("failed to parse form: %v", err)
	}
	assert.Equal(s.t, s.grantType, r.Form.Get("grant_type"))
	assert.Equal(s.t, s.username, r.Form.Get("username"))
	assert.Equal(s.t, s.password, r.Form.Get("password"))

	w.WriteHeader(s.mockResponse.statusCode)
	fmt.Fprint(w, s.mockResponse.body)
}

func TestNewAuthenticator(t *testing.T) {
	t.Parallel()

	customClient := &http.Client{}

	testCases := []struct {
		name       string
		httpClient *http.Client
		baseURL    string
		tokenPath  string
		username   string
		password   string
		wantErr    bool
		checkFunc  func(t *testing.T, a *Authenticator)
	}{
		{
			name:      "nil client falls back to default",
			baseURL:   "https://www.reddit.com/",
			tokenPath: "api/v1/access_token",
			checkFunc: func(t *testing.T, a *Authenticator) {
				assert.Same(t, http.DefaultClient, a.client)
				assert.Equal(t, "https://www.reddit.com/api/v1/access_token", a.tokenURL.String())
			},
		},
		{
			name:       "custom client",
			httpClient: customClient,
			baseURL:    "https://www.reddit.com/",
			checkFunc: func(t *testing.T, a *Authenticator) {
				assert.Same(t, customClient, a.client)
			},
		},
		{
			name:    "base url missing trailing slash",
			baseURL: "https://www.reddit.com",
			checkFunc: func(t *testing.T, a *Authenticator) {
				assert.Equal(t, "https://www.reddit.com/", a.BaseURL.String())
			},
		},
		{
			name:     "password grant with credentials",
			baseURL:  "https://www.reddit.com/",
			username: "user",
			password: "pass",
			checkFunc: func(t *testing.T, a *Authenticator) {
				assert.Equal(t, grantPassword, a.formData.Get("grant_type"))
				assert.False(t, a.ReadOnly())
			},
		},
		{
			name:     "client credentials without password",
			baseURL:  "https://www.reddit.com/",
			username: "user",
			checkFunc: func(t *testing.T, a *Authenticator) {
				assert.Equal(t, grantClientCredentials, a.formData.Get("grant_type"))
				assert.Empty(t, a.formData.Get("username"))
				assert.True(t, a.ReadOnly())
			},
		},
		{
			name:    "invalid base url",
			baseURL: "://bad",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			a, err := NewAuthenticator(tc.httpClient, tc.username, tc.password, "id", "secret", "agent", tc.baseURL, tc.tokenPath)
			if tc.wantErr {
				var authErr *pkgerrs.AuthError
				require.ErrorAs(t, err, &authErr)
				return
			}
			require.NoError(t, err)
			tc.checkFunc(t, a)
		})
	}
}

func TestAuthenticator_Token(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		clientID      string
		username      string
		password      string
		grantType     string
		mockResponse  *mockResponse
		expectedToken string
		checkErr      func(t *testing.T, err error)
	}{
		{
			name:          "client credentials",
			clientID:      "test-id",
			grantType:     grantClientCredentials,
			mockResponse:  &mockResponse{statusCode: http.StatusOK, body: `{"access_token": "app-token", "expires_in": 3600}`},
			expectedToken: "app-token",
		},
		{
			name:          "password grant",
			clientID:      "test-id",
			username:      "reddit_user",
			password:      "reddit_pass",
			grantType:     grantPassword,
			mockResponse:  &mockResponse{statusCode: http.StatusOK, body: `{"access_token": "user-token", "expires_in": 3600}`},
			expectedToken: "user-token",
		},
		{
			name:      "invalid credentials",
			clientID:  "wrong-id",
			grantType: grantClientCredentials,
			checkErr: func(t *testing.T, err error) {
				var authErr *pkgerrs.AuthError
				require.ErrorAs(t, err, &authErr)
				assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
				assert.Equal(t, `{"error": "invalid_client"}`, authErr.Body)
			},
		},
		{
			name:         "malformed json",
			clientID:     "test-id",
			grantType:    grantClientCredentials,
			mockResponse: &mockResponse{statusCode: http.StatusOK, body: `{"access_token":`},
			checkErr: func(t *testing.T, err error) {
				var authErr *pkgerrs.AuthError
				require.ErrorAs(t, err, &authErr)
				assert.Contains(t, authErr.Error(), "failed to unmarshal")
			},
		},
		{
			name:         "empty token",
			clientID:     "test-id",
			grantType:    grantClientCredentials,
			mockResponse: &mockResponse{statusCode: http.StatusOK, body: `{"access_token": ""}`},
			checkErr: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "access token was empty")
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			mock := &mockAuthServer{
				t:            t,
				mockResponse: tc.mockResponse,
				grantType:    tc.grantType,
				expectedUser: "test-id",
				expectedPass: "secret",
				username:     tc.username,
				password:     tc.password,
			}
			server := httptest.NewServer(mock)
			t.Cleanup(server.Close)

			a, err := NewAuthenticator(server.Client(), tc.username, tc.password, tc.clientID, "secret", "agent", server.URL, "")
			require.NoError(t, err)

			token, err := a.Token(context.Background())
			if tc.checkErr != nil {
				require.Error(t, err)
				tc.checkErr(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedToken, token)
		})
	}
}

func TestAuthenticator_TokenCaching(t *testing.T) {
	mock := &mockAuthServer{
		t:            t,
		mockResponse: &mockResponse{statusCode: http.StatusOK, body: `{"access_token": "cached", "expires_in": 3600}`},
		grantType:    grantClientCredentials,
		expectedUser: "id",
		expectedPass: "secret",
	}
	server := httptest.NewServer(mock)
	t.Cleanup(server.Close)

	a, err := NewAuthenticator(server.Client(), "", "", "id", "secret", "agent", server.URL, "")
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)
	a.now = func() time.Time { return now }

	ctx := context.Background()
	for range 3 {
		token, err := a.Token(ctx)
		require.NoError(t, err)
		assert.Equal(t, "cached", token)
	}
	assert.Equal(t, int32(1), mock.calls.Load())

	// inside the renewal margin
	now = now.Add(3600*time.Second - tokenExpiryMargin + time.Second)
	_, err = a.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), mock.calls.Load())

	a.Invalidate()
	_, err = a.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(3), mock.calls.Load())
}
