package graw

import (
	"context"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

// RemovalReason is a canned message moderators attach to removals.
type RemovalReason struct {
	base
	subreddit *Subreddit
}

func newRemovalReason(s *Subreddit, id string) *RemovalReason {
	reason := &RemovalReason{subreddit: s}
	reason.base = newBase(s.reddit, "RemovalReason", "", "id")
	reason.attrs["id"] = id
	reason.fetcher = reason.fetch
	return reason
}

func newRemovalReasonFromData(s *Subreddit, data map[string]any) *RemovalReason {
	reason := newRemovalReason(s, "")
	reason.load(data)
	reason.fetched = true
	return reason
}

// ID returns the reason's id.
func (r *RemovalReason) ID() string {
	return asString(r.attrs["id"])
}

// Title returns the title moderators pick the reason by.
func (r *RemovalReason) Title(ctx context.Context) (string, error) {
	return r.GetString(ctx, "title")
}

// Message returns the message sent to the author.
func (r *RemovalReason) Message(ctx context.Context) (string, error) {
	return r.GetString(ctx, "message")
}

func (r *RemovalReason) fetch(ctx context.Context) (map[string]any, error) {
	reasons, err := r.subreddit.RemovalReasons(ctx)
	if err != nil {
		return nil, err
	}
	for _, reason := range reasons {
		if reason.ID() == r.ID() {
			return reason.attrs, nil
		}
	}
	return nil, &pkgerrs.MissingObjectError{
		Message: "subreddit " + r.subreddit.DisplayName() + " does not have the removal reason " + r.ID(),
	}
}
