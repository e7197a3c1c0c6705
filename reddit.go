package graw

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jamesprial/graw/internal"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

const tracerName = "github.com/jamesprial/graw"

// Requestor sends a request to Reddit and returns the decoded JSON body.
// The internal transport implements it; tests substitute their own.
type Requestor interface {
	Request(ctx context.Context, method, path string, params, data url.Values, files map[string]string) (any, error)
	// ReadOnly reports whether requests carry no user identity.
	ReadOnly() bool
}

// Reddit is the session every entity is created from. It owns the transport
// and the objectifier that turns responses into entities.
//
//	reddit, err := graw.NewClient(config)
//	if err != nil {
//		return err
//	}
//
//	submission := reddit.Submission("2gmzqe")
//	title, err := submission.Title(ctx)
//
// A Reddit value is safe for concurrent use: its transport serialises token
// refresh and rate limiting. The entities, listing generators, streams and
// comment forests it creates keep unsynchronised state and each belongs to a
// single goroutine.
type Reddit struct {
	config    *Config
	auth      *internal.Authenticator
	conn      *internal.ConnectionManager[Requestor]
	requestor Requestor
	objector  *objectifier
	validator *internal.Validator
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewClient creates a session from config. Defaults are filled into config.
//
// Returns an error if config is nil, ClientID or ClientSecret are missing,
// or any setting is invalid. No network traffic happens until the first
// request or an explicit Connect.
func NewClient(config *Config) (*Reddit, error) {
	if config == nil {
		return nil, &pkgerrs.ConfigError{Message: "config cannot be nil"}
	}
	if config.ClientID == "" || config.ClientSecret == "" {
		return nil, &pkgerrs.ConfigError{Field: "ClientID", Message: "ClientID and ClientSecret are required"}
	}

	validator := internal.NewValidator()
	if err := config.applyDefaults(validator); err != nil {
		return nil, err
	}

	auth, err := internal.NewAuthenticator(
		config.HTTPClient,
		config.Username,
		config.Password,
		config.ClientID,
		config.ClientSecret,
		config.UserAgent,
		config.AuthURL,
		"",
	)
	if err != nil {
		return nil, err
	}

	r := newReddit(config, validator)
	r.auth = auth
	return r, nil
}

// NewClientWithRequestor creates a session that sends every request through
// requestor. A nil config uses the defaults.
func NewClientWithRequestor(config *Config, requestor Requestor) (*Reddit, error) {
	if requestor == nil {
		return nil, &pkgerrs.ConfigError{Field: "requestor", Message: "requestor cannot be nil"}
	}
	if config == nil {
		config = &Config{}
	}

	validator := internal.NewValidator()
	if err := config.applyDefaults(validator); err != nil {
		return nil, err
	}

	r := newReddit(config, validator)
	r.requestor = requestor
	return r, nil
}

func newReddit(config *Config, validator *internal.Validator) *Reddit {
	r := &Reddit{
		config:    config,
		conn:      internal.NewConnectionManager[Requestor](),
		validator: validator,
		logger:    config.Logger,
		tracer:    otel.Tracer(tracerName),
	}
	r.objector = newObjectifier(r)
	return r
}

// Config returns the session settings with defaults applied.
func (r *Reddit) Config() *Config {
	return r.config
}

// Connect authenticates and prepares the transport. Calling it is optional:
// the first request connects on demand. Only the first attempt runs.
func (r *Reddit) Connect(ctx context.Context) error {
	_, err := r.transport(ctx)
	return err
}

func (r *Reddit) transport(ctx context.Context) (Requestor, error) {
	if r.requestor != nil {
		return r.requestor, nil
	}
	return r.conn.Initialize(ctx, r.connect)
}

func (r *Reddit) connect(ctx context.Context) (Requestor, error) {
	// fail here rather than on the first API call
	if _, err := r.auth.Token(ctx); err != nil {
		return nil, err
	}

	client, err := internal.NewClient(
		r.config.HTTPClient,
		r.auth,
		r.config.BaseURL,
		r.config.UserAgent,
		r.config.rateLimit(),
		r.logger,
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// ReadOnly reports whether the session lacks a user identity.
func (r *Reddit) ReadOnly() bool {
	if r.requestor != nil {
		return r.requestor.ReadOnly()
	}
	return r.auth.ReadOnly()
}

func (r *Reddit) requireUser(operation string) error {
	if r.ReadOnly() {
		return &pkgerrs.ReadOnlyError{Operation: operation}
	}
	return nil
}

// Request sends a request and objectifies the response. Reddit error
// envelopes, whether in a successful body or a 400 response, are returned as
// *errors.RedditAPIError.
func (r *Reddit) Request(ctx context.Context, method, path string, params, data url.Values, files map[string]string) (any, error) {
	ctx, span := r.tracer.Start(ctx, "reddit.request", trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("reddit.path", path),
	))
	defer span.End()

	result, err := r.request(ctx, method, path, params, data, files)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

func (r *Reddit) request(ctx context.Context, method, path string, params, data url.Values, files map[string]string) (any, error) {
	rq, err := r.transport(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := rq.Request(ctx, method, path, params, data, files)
	if err != nil {
		var apiErr *pkgerrs.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
			if envelope := internal.ErrorEnvelope(apiErr.Details); envelope != nil {
				return nil, envelope
			}
		}
		return nil, err
	}

	return r.objector.objectify(raw)
}

// Get issues a GET request.
func (r *Reddit) Get(ctx context.Context, path string, params url.Values) (any, error) {
	return r.Request(ctx, http.MethodGet, path, params, nil, nil)
}

// Post issues a POST request. Files map form field names to local paths and
// switch the body to multipart.
func (r *Reddit) Post(ctx context.Context, path string, data url.Values, files map[string]string, params url.Values) (any, error) {
	if data == nil {
		data = url.Values{}
	}
	return r.Request(ctx, http.MethodPost, path, params, data, files)
}

// Put issues a PUT request.
func (r *Reddit) Put(ctx context.Context, path string, data url.Values) (any, error) {
	if data == nil {
		data = url.Values{}
	}
	return r.Request(ctx, http.MethodPut, path, nil, data, nil)
}

// Patch issues a PATCH request.
func (r *Reddit) Patch(ctx context.Context, path string, data url.Values) (any, error) {
	if data == nil {
		data = url.Values{}
	}
	return r.Request(ctx, http.MethodPatch, path, nil, data, nil)
}

// Delete issues a DELETE request.
func (r *Reddit) Delete(ctx context.Context, path string, params url.Values) (any, error) {
	return r.Request(ctx, http.MethodDelete, path, params, nil, nil)
}

// Info returns the entities named by fullnames, requesting at most 100 per call.
// Fullnames Reddit does not know are silently absent from the result.
func (r *Reddit) Info(ctx context.Context, fullnames []string) ([]Entity, error) {
	var out []Entity
	for chunk := range slices.Chunk(fullnames, internal.MaxPageSize) {
		if err := r.validator.ValidateFullnames(chunk); err != nil {
			return nil, err
		}

		result, err := r.Get(ctx, internal.Endpoint("info", nil), url.Values{"id": {strings.Join(chunk, ",")}})
		if err != nil {
			return nil, err
		}
		listing, ok := result.(*Listing)
		if !ok {
			return nil, &pkgerrs.ParseError{Operation: "info", Message: "response is not a listing"}
		}
		for _, child := range listing.Children {
			if e, ok := child.(Entity); ok {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

// Me returns the authenticated user.
func (r *Reddit) Me(ctx context.Context) (*Redditor, error) {
	if err := r.requireUser("me"); err != nil {
		return nil, err
	}

	result, err := r.Get(ctx, internal.Endpoint("me", nil), nil)
	if err != nil {
		return nil, err
	}
	data, ok := result.(map[string]any)
	if !ok {
		return nil, &pkgerrs.ParseError{Operation: "me", Message: "unexpected response type"}
	}
	return newRedditorFromData(r, data), nil
}
