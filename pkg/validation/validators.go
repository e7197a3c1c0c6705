package validation

import (
	"regexp"
	"strings"
)

// Regular expressions for validating Reddit data formats
var (
	// base36Regex matches base36 encoded IDs (0-9, a-z)
	base36Regex = regexp.MustCompile(`^[0-9a-z]+$`)

	// alnumRegex matches ids that may carry upper-case letters, as found in URLs
	alnumRegex = regexp.MustCompile(`^[0-9A-Za-z]+$`)

	// subredditRegex matches valid subreddit names (3-21 chars, alphanumeric + underscore)
	subredditRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,21}$`)

	// usernameRegex matches valid Reddit usernames (3-20 chars, alphanumeric + underscore + hyphen)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)

	// fullnameRegex matches Reddit fullname IDs (type prefix + base36 ID)
	// Format: t[1-6]_[base36_id]
	fullnameRegex = regexp.MustCompile(`^t[1-6]_[0-9a-z]+$`)

	// permalinkRegex matches Reddit permalink format
	// Format: /r/{subreddit}/comments/{post_id}/{title_slug}/ or with /{comment_id}/
	permalinkRegex = regexp.MustCompile(`^/r/[a-zA-Z0-9_]{3,21}/comments/[0-9a-z]+/[^/]+/?([0-9a-z]+/?)?$`)
)

// filterable lists the pseudo-subreddits that accept "-name" exclusions.
var filterable = map[string]bool{"all": true, "popular": true}

// IsValidBase36 checks if a string is a valid base36 encoded ID
func IsValidBase36(s string) bool {
	return s != "" && base36Regex.MatchString(s)
}

// IsAlphanumeric checks if a string is a non-empty run of ASCII letters and digits
func IsAlphanumeric(s string) bool {
	return alnumRegex.MatchString(s)
}

// IsValidSubreddit checks if a string is a valid subreddit name
func IsValidSubreddit(s string) bool {
	return subredditRegex.MatchString(s)
}

// IsValidSubredditIdentifier accepts a plain name, a combination such as
// "a+b+c", or a filtered pseudo-subreddit such as "all-a-b".
func IsValidSubredditIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, "+") {
		segments := strings.Split(part, "-")
		if len(segments) > 1 && !filterable[strings.ToLower(segments[0])] {
			return false
		}
		for _, seg := range segments {
			if !IsValidSubreddit(seg) {
				return false
			}
		}
	}
	return true
}

// IsValidUsername checks if a string is a valid Reddit username
func IsValidUsername(s string) bool {
	return usernameRegex.MatchString(s)
}

// IsValidFullname checks if a string is a valid Reddit fullname ID
func IsValidFullname(s string) bool {
	return fullnameRegex.MatchString(s)
}

// IsValidPermalink checks if a string is a valid Reddit permalink
func IsValidPermalink(s string) bool {
	return s != "" && permalinkRegex.MatchString(s)
}
