package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

const (
	defaultTokenEndpointPath = "api/v1/access_token"

	// tokenExpiryMargin renews a token this long before Reddit expires it.
	tokenExpiryMargin = 30 * time.Second

	grantPassword          = "password"
	grantClientCredentials = "client_credentials"
)

// TokenSource supplies bearer tokens to the transport.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	// ReadOnly reports whether tokens carry no user identity.
	ReadOnly() bool
}

// Authenticator handles retrieving an access token from the Reddit API.
// Tokens are cached until shortly before they expire.
type Authenticator struct {
	client       *http.Client
	clientID     string
	clientSecret string
	userAgent    string
	grantType    string
	BaseURL      *url.URL
	tokenURL     *url.URL
	formData     url.Values

	mu      sync.Mutex
	token   string
	expires time.Time
	now     func() time.Time
}

// NewAuthenticator creates a new authenticator. The password grant is used when
// both username and password are set, the client_credentials grant otherwise.
// The tokenPath parameter can be an empty string to use the default Reddit token endpoint.
func NewAuthenticator(httpClient *http.Client, username, password, clientID, clientSecret, userAgent, baseURL, tokenPath string) (*Authenticator, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, &pkgerrs.AuthError{Message: "failed to parse base URL", Err: err}
	}
	if !strings.HasSuffix(parsedURL.Path, "/") {
		parsedURL.Path += "/"
	}

	if tokenPath == "" {
		tokenPath = defaultTokenEndpointPath
	}

	resolvedTokenURL, err := parsedURL.Parse(tokenPath)
	if err != nil {
		return nil, &pkgerrs.AuthError{Message: "failed to parse token endpoint path", Err: err}
	}

	grantType := grantClientCredentials
	form := url.Values{}
	if username != "" && password != "" {
		grantType = grantPassword
		form.Set("username", username)
		form.Set("password", password)
	}
	form.Set("grant_type", grantType)

	return &Authenticator{
		client:       httpClient,
		clientID:     clientID,
		clientSecret: clientSecret,
		userAgent:    userAgent,
		grantType:    grantType,
		BaseURL:      parsedURL,
		tokenURL:     resolvedTokenURL,
		formData:     form,
		now:          time.Now,
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

// ReadOnly reports whether the authenticator uses an application-only grant.
func (a *Authenticator) ReadOnly() bool {
	return a.grantType != grantPassword
}

// Token returns the cached token, fetching a new one when it is missing or about to expire.
func (a *Authenticator) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && a.now().Before(a.expires) {
		return a.token, nil
	}

	resp, err := a.fetchToken(ctx)
	if err != nil {
		return "", err
	}

	a.token = resp.AccessToken
	a.expires = a.now().Add(time.Duration(resp.ExpiresIn)*time.Second - tokenExpiryMargin)
	return a.token, nil
}

// Invalidate drops the cached token so the next call fetches a fresh one.
func (a *Authenticator) Invalidate() {
	a.mu.Lock()
	a.token = ""
	a.mu.Unlock()
}

func (a *Authenticator) fetchToken(ctx context.Context) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL.String(), strings.NewReader(a.formData.Encode()))
	if err != nil {
		return nil, &pkgerrs.AuthError{Err: fmt.Errorf("failed to create token request: %w", err)}
	}

	req.SetBasicAuth(a.clientID, a.clientSecret)
	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &pkgerrs.AuthError{Err: fmt.Errorf("failed to execute token request: %w", err)}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &pkgerrs.AuthError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to read response body: %w", err),
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &pkgerrs.AuthError{
			StatusCode: resp.StatusCode,
			Body:       string(bodyBytes),
		}
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(bodyBytes, &tokenResp); err != nil {
		return nil, &pkgerrs.AuthError{
			StatusCode: resp.StatusCode,
			Body:       string(bodyBytes),
			Err:        fmt.Errorf("failed to unmarshal token response: %w", err),
		}
	}

	if tokenResp.AccessToken == "" {
		return nil, &pkgerrs.AuthError{
			StatusCode: resp.StatusCode,
			Body:       string(bodyBytes),
			Err:        fmt.Errorf("access token was empty in response"),
		}
	}

	return &tokenResp, nil
}
