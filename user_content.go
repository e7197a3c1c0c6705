package graw

import (
	"context"
	"net/url"

	"github.com/jamesprial/graw/internal"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

// Vote directions accepted by the vote endpoint.
const (
	voteUp    = "1"
	voteClear = "0"
	voteDown  = "-1"
)

// userContent holds the actions shared by submissions and comments.
type userContent struct {
	base
}

// Author returns the author, or nil when the account was deleted.
func (u *userContent) Author(ctx context.Context) (*Redditor, error) {
	v, err := u.Get(ctx, "author")
	if err != nil {
		return nil, err
	}
	return entityAs[*Redditor](v), nil
}

// Subreddit returns the subreddit the item was posted in.
func (u *userContent) Subreddit(ctx context.Context) (*Subreddit, error) {
	v, err := u.Get(ctx, "subreddit")
	if err != nil {
		return nil, err
	}
	sub, ok := v.(*Subreddit)
	if !ok {
		return nil, &pkgerrs.ParseError{Operation: "subreddit", Message: "attribute is not a subreddit"}
	}
	return sub, nil
}

// Score returns the net vote count.
func (u *userContent) Score(ctx context.Context) (int, error) {
	return u.GetInt(ctx, "score")
}

// Upvote casts an upvote.
func (u *userContent) Upvote(ctx context.Context) error {
	return u.vote(ctx, voteUp)
}

// Downvote casts a downvote.
func (u *userContent) Downvote(ctx context.Context) error {
	return u.vote(ctx, voteDown)
}

// ClearVote withdraws a previous vote.
func (u *userContent) ClearVote(ctx context.Context) error {
	return u.vote(ctx, voteClear)
}

func (u *userContent) vote(ctx context.Context, direction string) error {
	if err := u.reddit.requireUser("vote"); err != nil {
		return err
	}
	data := url.Values{"id": {u.Fullname()}, "dir": {direction}}
	_, err := u.reddit.Post(ctx, internal.Endpoint("vote", nil), data, nil, nil)
	return err
}

// Save saves the item, optionally into a category.
func (u *userContent) Save(ctx context.Context, category string) error {
	if err := u.reddit.requireUser("save"); err != nil {
		return err
	}
	data := url.Values{"id": {u.Fullname()}}
	if category != "" {
		data.Set("category", category)
	}
	_, err := u.reddit.Post(ctx, internal.Endpoint("save", nil), data, nil, nil)
	return err
}

// Unsave removes the item from the saved list.
func (u *userContent) Unsave(ctx context.Context) error {
	if err := u.reddit.requireUser("unsave"); err != nil {
		return err
	}
	_, err := u.reddit.Post(ctx, internal.Endpoint("unsave", nil), url.Values{"id": {u.Fullname()}}, nil, nil)
	return err
}

// Edit replaces the body and merges the updated attributes.
func (u *userContent) Edit(ctx context.Context, body string) error {
	if err := u.reddit.requireUser("edit"); err != nil {
		return err
	}
	data := url.Values{"thing_id": {u.Fullname()}, "text": {body}}
	result, err := u.reddit.Post(ctx, internal.Endpoint("edit", nil), data, nil, nil)
	if err != nil {
		return err
	}
	for _, item := range asSlice(result) {
		if updated, ok := item.(interface{ Attrs() map[string]any }); ok {
			attrs := updated.Attrs()
			delete(attrs, "replies")
			delete(attrs, "subreddit")
			u.load(attrs)
			break
		}
	}
	return nil
}

// Delete deletes the item.
func (u *userContent) Delete(ctx context.Context) error {
	if err := u.reddit.requireUser("delete"); err != nil {
		return err
	}
	_, err := u.reddit.Post(ctx, internal.Endpoint("del", nil), url.Values{"id": {u.Fullname()}}, nil, nil)
	return err
}

// Report reports the item to the subreddit moderators.
func (u *userContent) Report(ctx context.Context, reason string) error {
	if reason == "" {
		return &pkgerrs.InvalidInputError{Field: "reason", Message: "report reason cannot be empty"}
	}
	data := url.Values{"id": {u.Fullname()}, "reason": {reason}}
	_, err := u.reddit.Post(ctx, internal.Endpoint("report", nil), data, nil, nil)
	return err
}

// Reply posts a comment in reply to the item.
func (u *userContent) Reply(ctx context.Context, body string) (*Comment, error) {
	reply, err := postReply(ctx, u.reddit, u.Fullname(), body)
	if err != nil {
		return nil, err
	}
	c, ok := reply.(*Comment)
	if !ok {
		return nil, &pkgerrs.ParseError{Operation: "reply", Message: "response is not a comment"}
	}
	return c, nil
}

// postReply sends a reply to the thing named by fullname and returns the
// created entity.
func postReply(ctx context.Context, r *Reddit, fullname, body string) (any, error) {
	if err := r.requireUser("reply"); err != nil {
		return nil, err
	}
	data := url.Values{"thing_id": {fullname}, "text": {body}}
	result, err := r.Post(ctx, internal.Endpoint("comment", nil), data, nil, nil)
	if err != nil {
		return nil, err
	}
	items := asSlice(result)
	if len(items) == 0 {
		return nil, &pkgerrs.ParseError{Operation: "reply", Message: "no thing returned"}
	}
	return items[0], nil
}
