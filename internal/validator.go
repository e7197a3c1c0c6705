package internal

import (
	"fmt"
	"strings"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/types"
	"github.com/jamesprial/graw/pkg/validation"
)

const (
	// Fullnames accepted by a single api/info request
	maxInfoFullnames = 100

	// User agent constraints
	maxUserAgentLength = 256
)

// Validator provides validation operations for Reddit API parameters.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSubredditName accepts plain names, "a+b" combinations and
// "all-x" filters.
func (v *Validator) ValidateSubredditName(name string) error {
	if name == "" {
		return &pkgerrs.InvalidInputError{Field: "subreddit", Message: "subreddit name cannot be empty"}
	}
	if !validation.IsValidSubredditIdentifier(name) {
		return &pkgerrs.InvalidInputError{Field: "subreddit", Message: fmt.Sprintf("invalid subreddit name %q", name)}
	}
	return nil
}

// ValidateUsername checks a Reddit account name.
func (v *Validator) ValidateUsername(name string) error {
	if !validation.IsValidUsername(name) {
		return &pkgerrs.InvalidInputError{Field: "user", Message: fmt.Sprintf("invalid username %q", name)}
	}
	return nil
}

// ValidateLimit checks a listing limit. Negative values other than -1 are rejected.
func (v *Validator) ValidateLimit(limit int) error {
	if limit < -1 {
		return &pkgerrs.InvalidInputError{Field: "limit", Message: "limit cannot be negative"}
	}
	return nil
}

// ValidateCommentSort checks a comment sort name.
func (v *Validator) ValidateCommentSort(sort string) error {
	if !types.IsCommentSort(sort) {
		return &pkgerrs.InvalidInputError{Field: "sort", Message: fmt.Sprintf("unknown comment sort %q", sort)}
	}
	return nil
}

// ValidateTimeFilter checks a time filter. An empty filter is allowed.
func (v *Validator) ValidateTimeFilter(filter string) error {
	if filter != "" && !types.IsTimeFilter(filter) {
		return &pkgerrs.InvalidInputError{Field: "time_filter", Message: fmt.Sprintf("unknown time filter %q", filter)}
	}
	return nil
}

// ValidateFullnames checks a batch of fullnames for a single info request.
func (v *Validator) ValidateFullnames(fullnames []string) error {
	if len(fullnames) > maxInfoFullnames {
		return &pkgerrs.InvalidInputError{Field: "fullnames", Message: fmt.Sprintf("cannot request more than %d fullnames at once (got %d)", maxInfoFullnames, len(fullnames))}
	}
	for i, fn := range fullnames {
		if !validation.IsValidFullname(fn) {
			return &pkgerrs.InvalidInputError{
				Field:   fmt.Sprintf("fullnames[%d]", i),
				Message: fmt.Sprintf("invalid fullname %q", fn),
			}
		}
	}
	return nil
}

// ValidateUserAgent validates the User-Agent string to prevent header injection attacks.
func (v *Validator) ValidateUserAgent(ua string) error {
	if len(ua) == 0 {
		return &pkgerrs.ConfigError{Field: "UserAgent", Message: "user agent cannot be empty"}
	}

	if strings.ContainsAny(ua, "\r\n") {
		return &pkgerrs.ConfigError{Field: "UserAgent", Message: "user agent cannot contain newline characters"}
	}

	if len(ua) > maxUserAgentLength {
		return &pkgerrs.ConfigError{Field: "UserAgent", Message: fmt.Sprintf("user agent too long (max %d characters)", maxUserAgentLength)}
	}

	return nil
}
