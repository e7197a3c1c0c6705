package graw

import (
	"context"
	"strings"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

// Rule is a subreddit rule identified by its short name.
type Rule struct {
	base
	subreddit *Subreddit
}

func newRule(s *Subreddit, shortName string) *Rule {
	rule := &Rule{subreddit: s}
	rule.base = newBase(s.reddit, "Rule", "", "short_name")
	rule.attrs["short_name"] = shortName
	rule.fetcher = rule.fetch
	return rule
}

func newRuleFromData(s *Subreddit, data map[string]any) *Rule {
	rule := newRule(s, "")
	rule.load(data)
	rule.fetched = true
	return rule
}

// Key includes the subreddit so rules of different subreddits never collide.
func (r *Rule) Key() string {
	return strings.ToLower(r.subreddit.DisplayName()) + "/" + r.ShortName()
}

// ShortName returns the rule's title.
func (r *Rule) ShortName() string {
	return asString(r.attrs["short_name"])
}

// Description returns the markdown description.
func (r *Rule) Description(ctx context.Context) (string, error) {
	return r.GetString(ctx, "description")
}

// ViolationReason returns the reason shown in reports.
func (r *Rule) ViolationReason(ctx context.Context) (string, error) {
	return r.GetString(ctx, "violation_reason")
}

// AppliesTo returns link, comment or all.
func (r *Rule) AppliesTo(ctx context.Context) (string, error) {
	return r.GetString(ctx, "kind")
}

func (r *Rule) fetch(ctx context.Context) (map[string]any, error) {
	rules, err := r.subreddit.Rules(ctx)
	if err != nil {
		return nil, err
	}
	for _, rule := range rules {
		if rule.ShortName() == r.ShortName() {
			return rule.attrs, nil
		}
	}
	return nil, &pkgerrs.MissingObjectError{
		Message: "subreddit " + r.subreddit.DisplayName() + " does not have the rule " + r.ShortName(),
	}
}
