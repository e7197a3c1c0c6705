package graw

import (
	"context"
	"net/url"
	"strings"

	"github.com/jamesprial/graw/internal"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/types"
)

// Redditor is a Reddit account. Names compare case-insensitively.
type Redditor struct {
	base
}

func newRedditor(r *Reddit) *Redditor {
	u := &Redditor{}
	u.base = newBase(r, "Redditor", types.KindRedditor, "name")
	u.foldCase = true
	u.fetcher = u.fetch
	return u
}

func newRedditorFromData(r *Reddit, data map[string]any) *Redditor {
	u := newRedditor(r)
	u.load(data)
	u.fetched = true
	return u
}

// Redditor returns a lazy redditor with the given name.
func (r *Reddit) Redditor(name string) *Redditor {
	u := newRedditor(r)
	u.attrs["name"] = name
	return u
}

// RedditorFromFullname returns a lazy redditor known only by its t2_
// fullname. The name is looked up on first fetch.
func (r *Reddit) RedditorFromFullname(fullname string) *Redditor {
	u := newRedditor(r)
	u.attrs["_fullname"] = fullname
	return u
}

// Name returns the account name, resolving it first when the redditor was
// created from a fullname.
func (u *Redditor) Name(ctx context.Context) (string, error) {
	if name := asString(u.attrs["name"]); name != "" {
		return name, nil
	}
	if err := u.resolveName(ctx); err != nil {
		return "", err
	}
	return asString(u.attrs["name"]), nil
}

func (u *Redditor) resolveName(ctx context.Context) error {
	fullname := asString(u.attrs["_fullname"])
	if fullname == "" {
		return &pkgerrs.StateError{Operation: "fetch redditor", Message: "redditor has neither name nor fullname"}
	}
	result, err := u.reddit.Get(ctx, internal.Endpoint("user_by_fullname", nil), url.Values{"ids": {fullname}})
	if err != nil {
		return err
	}
	data := asMap(asMap(result)[fullname])
	if data == nil {
		return &pkgerrs.MissingObjectError{Message: "no account found for " + fullname}
	}
	u.attrs["name"] = asString(data["name"])
	return nil
}

func (u *Redditor) fetch(ctx context.Context) (map[string]any, error) {
	name, err := u.Name(ctx)
	if err != nil {
		return nil, err
	}
	result, err := u.reddit.Get(ctx, internal.Endpoint("user_about", internal.Fields{"user": name}), nil)
	if err != nil {
		return nil, err
	}
	switch v := result.(type) {
	case *Redditor:
		return v.attrs, nil
	case map[string]any:
		return v, nil
	}
	return nil, &pkgerrs.ParseError{Operation: "fetch redditor", Message: "unexpected response for " + name}
}

// Fullname returns the t2_ fullname. It is known without fetching when the
// redditor was created from one.
func (u *Redditor) Fullname() string {
	if fn := u.base.Fullname(); fn != "" {
		return fn
	}
	return asString(u.attrs["_fullname"])
}

// Key returns the lowercased name, or the lowercased fullname while the
// name is still unresolved.
func (u *Redditor) Key() string {
	if name := asString(u.attrs["name"]); name != "" {
		return strings.ToLower(name)
	}
	return strings.ToLower(asString(u.attrs["_fullname"]))
}

// LinkKarma returns the karma earned from submissions.
func (u *Redditor) LinkKarma(ctx context.Context) (int, error) {
	return u.GetInt(ctx, "link_karma")
}

// CommentKarma returns the karma earned from comments.
func (u *Redditor) CommentKarma(ctx context.Context) (int, error) {
	return u.GetInt(ctx, "comment_karma")
}

// userListing lists user/<name>/<sub>. The name is resolved when the first
// page is requested.
func userListing[T any](u *Redditor, sub string, opts *ListingOptions) *ListingGenerator[T] {
	g := newListing[T](u.reddit, "", opts)
	g.prepare = func(ctx context.Context) error {
		name, err := u.Name(ctx)
		if err != nil {
			return err
		}
		g.path = internal.Endpoint("user", internal.Fields{"user": name}) + sub
		return nil
	}
	return g
}

// Comments lists the redditor's newest comments.
func (u *Redditor) Comments(opts *ListingOptions) *ListingGenerator[*Comment] {
	return userListing[*Comment](u, "comments/", opts)
}

// Submissions lists the redditor's newest submissions.
func (u *Redditor) Submissions(opts *ListingOptions) *ListingGenerator[*Submission] {
	return userListing[*Submission](u, "submitted/", opts)
}

// Stream returns the redditor's comment and submission streams.
func (u *Redditor) Stream() *RedditorStream {
	return &RedditorStream{redditor: u}
}

// Message sends a private message to the redditor.
func (u *Redditor) Message(ctx context.Context, subject, body string) error {
	if err := u.reddit.requireUser("message"); err != nil {
		return err
	}
	if subject == "" {
		return &pkgerrs.InvalidInputError{Field: "subject", Message: "subject cannot be empty"}
	}
	name, err := u.Name(ctx)
	if err != nil {
		return err
	}
	if err := u.reddit.validator.ValidateUsername(name); err != nil {
		return err
	}
	data := url.Values{"to": {name}, "subject": {subject}, "text": {body}}
	_, err = u.reddit.Post(ctx, internal.Endpoint("compose", nil), data, nil, nil)
	return err
}

// Notes lists the moderator notes about the redditor in subreddit.
func (u *Redditor) Notes(subreddit string, opts *ModNotesOptions) *ListingGenerator[*ModNote] {
	name := asString(u.attrs["name"])
	if name != "" {
		return modNotesListing(u.reddit, subreddit, name, opts)
	}
	g := modNotesListing(u.reddit, subreddit, asString(u.attrs["_fullname"]), opts)
	g.prepare = func(ctx context.Context) error {
		name, err := u.Name(ctx)
		if err != nil {
			return err
		}
		g.params.Set("user", name)
		return nil
	}
	return g
}

// RedditorStream streams a redditor's new contributions.
type RedditorStream struct {
	redditor *Redditor
}

// Comments streams new comments by the redditor.
func (s *RedditorStream) Comments(opts *StreamOptions) *Stream[*Comment] {
	return newStream(s.redditor.reddit, s.redditor.Comments, commentID, opts)
}

// Submissions streams new submissions by the redditor.
func (s *RedditorStream) Submissions(opts *StreamOptions) *Stream[*Submission] {
	return newStream(s.redditor.reddit, s.redditor.Submissions, submissionID, opts)
}
