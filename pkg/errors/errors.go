// Package errors defines common error types used throughout the Reddit API wrapper.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoMoreItems is returned by iterators once they are exhausted.
var ErrNoMoreItems = errors.New("no more items available")

// ConfigError indicates a problem with the client configuration.
type ConfigError struct {
	// Field contains the name of the configuration field that caused the error
	Field string
	// Message contains the detailed error message
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// AuthError indicates an authentication failure.
type AuthError struct {
	// StatusCode is the HTTP status code (if from an HTTP response)
	StatusCode int
	// Message contains the detailed error message
	Message string
	// Body contains the raw response body (if available)
	Body string
	// Err contains the underlying error if available
	Err error
}

func (e *AuthError) Error() string {
	parts := []string{}
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status code %d", e.StatusCode))
	}
	if e.Body != "" {
		parts = append(parts, fmt.Sprintf("body: %q", e.Body))
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Err != nil {
		parts = append(parts, fmt.Sprintf("err: %v", e.Err))
	}
	if len(parts) == 0 {
		return "auth error"
	}
	return "auth error: " + strings.Join(parts, ", ")
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// StateError indicates an operation was attempted in a state that cannot support it.
type StateError struct {
	// Operation is the name of the operation that was attempted
	Operation string
	// Message contains the detailed error message
	Message string
}

func (e *StateError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("state error during %s: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("state error: %s", e.Message)
}

// RequestError indicates a problem with making an API request.
type RequestError struct {
	// Operation is the name of the API operation that failed
	Operation string
	// URL is the URL that was being accessed
	URL string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *RequestError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Operation != "" && e.URL != "" {
		return fmt.Sprintf("request error during %s to %s: %s", e.Operation, e.URL, msg)
	} else if e.Operation != "" {
		return fmt.Sprintf("request error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("request error: %s", msg)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ParseError indicates a problem parsing the API response.
type ParseError struct {
	// Operation is the name of the API operation where parsing failed
	Operation string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *ParseError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Operation != "" {
		return fmt.Sprintf("parse error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("parse error: %s", msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// APIError represents a non-success HTTP response from the Reddit API.
type APIError struct {
	// StatusCode is the HTTP status code
	StatusCode int
	// ErrorCode is the error code from Reddit (if available)
	ErrorCode string
	// Message is the error message from Reddit
	Message string
	// Details holds the decoded response body, when it was JSON
	Details any
}

func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("reddit API error (status %d, code %s): %s", e.StatusCode, e.ErrorCode, e.Message)
	}
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsConflict reports whether err is an APIError with status 409.
func IsConflict(err error) bool {
	return hasStatus(err, http.StatusConflict)
}

// IsRateLimited reports whether err is an APIError with status 429.
func IsRateLimited(err error) bool {
	return hasStatus(err, http.StatusTooManyRequests)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// ClientError indicates a problem with the HTTP client operations.
type ClientError struct {
	// Operation describes what the client was trying to do
	Operation string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *ClientError) Error() string {
	if e.Err != nil && e.Operation == "" && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("client error: %v", e.Err)
	}
	if e.Operation != "" && e.Message != "" {
		return fmt.Sprintf("client error during %s: %s", e.Operation, e.Message)
	}
	if e.Operation != "" {
		return fmt.Sprintf("client error during %s", e.Operation)
	}
	if e.Message != "" {
		return fmt.Sprintf("client error: %s", e.Message)
	}
	return "client error"
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// RedditErrorItem is a single entry of a Reddit error envelope.
type RedditErrorItem struct {
	// ErrorType is the upper-case error token, e.g. "BAD_CSS_NAME"
	ErrorType string
	// Message is the human readable explanation
	Message string
	// Field names the offending form field, if any
	Field string
}

func (i RedditErrorItem) String() string {
	s := i.ErrorType
	if i.Message != "" {
		s += ": '" + i.Message + "'"
	}
	if i.Field != "" {
		s += " on field '" + i.Field + "'"
	}
	return s
}

// RedditAPIError bundles the errors Reddit returned inside a successful response.
type RedditAPIError struct {
	Items []RedditErrorItem
}

func (e *RedditAPIError) Error() string {
	parts := make([]string, len(e.Items))
	for i, item := range e.Items {
		parts[i] = item.String()
	}
	return strings.Join(parts, "\n")
}

// First returns the first bundled item.
func (e *RedditAPIError) First() RedditErrorItem {
	if len(e.Items) == 0 {
		return RedditErrorItem{}
	}
	return e.Items[0]
}

// InvalidURLError indicates a URL that does not identify the requested object.
type InvalidURLError struct {
	URL     string
	Message string
}

func (e *InvalidURLError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("invalid URL (%s): %s", e.Message, e.URL)
	}
	return "invalid URL: " + e.URL
}

// InvalidInputError indicates a missing, malformed or conflicting argument.
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid input for %s: %s", e.Field, e.Message)
	}
	return "invalid input: " + e.Message
}

// MissingObjectError indicates a fetch that found no matching record.
type MissingObjectError struct {
	Message string
}

func (e *MissingObjectError) Error() string {
	return "missing object: " + e.Message
}

// DuplicateReplaceError indicates a MoreComments expansion that would insert
// comments already present in the forest.
type DuplicateReplaceError struct {
	Fullname string
}

func (e *DuplicateReplaceError) Error() string {
	msg := "a duplicate comment has been detected; are you attempting to call replace_more a second time?"
	if e.Fullname != "" {
		msg += " (" + e.Fullname + ")"
	}
	return msg
}

// WikiConflictError is returned when a wiki edit was made against a stale revision.
type WikiConflictError struct {
	NewRevision string
	NewContent  string
	Message     string
}

func (e *WikiConflictError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("wiki edit conflict (current revision %s): %s", e.NewRevision, e.Message)
	}
	return fmt.Sprintf("wiki edit conflict (current revision %s)", e.NewRevision)
}

// ReadOnlyError indicates an operation that needs an authenticated user while
// the client runs with application-only credentials.
type ReadOnlyError struct {
	Operation string
}

func (e *ReadOnlyError) Error() string {
	return fmt.Sprintf("%s requires user authentication, but the client is read-only", e.Operation)
}

// RedirectError carries the target of a redirect the transport did not follow.
type RedirectError struct {
	StatusCode int
	Path       string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirect (status %d) to %s", e.StatusCode, e.Path)
}

// TooLargeMediaError indicates an upload rejected for its size.
type TooLargeMediaError struct {
	Message string
}

func (e *TooLargeMediaError) Error() string {
	if e.Message == "" {
		return "media too large"
	}
	return "media too large: " + e.Message
}

// AttributeError indicates an attribute that is absent even after a fetch.
type AttributeError struct {
	Type string
	Name string
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("%s has no attribute %q", e.Type, e.Name)
}
