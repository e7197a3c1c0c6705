package graw

import (
	"context"
	"net/url"

	"github.com/jamesprial/graw/internal"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/types"
)

// LiveThread is a live thread, a feed of short updates.
type LiveThread struct {
	base
}

func newLiveThread(r *Reddit) *LiveThread {
	t := &LiveThread{}
	t.base = newBase(r, "LiveThread", types.KindLiveUpdateEvent, "id")
	t.fetcher = t.fetch
	return t
}

func newLiveThreadFromData(r *Reddit, data map[string]any) *LiveThread {
	t := newLiveThread(r)
	t.load(data)
	t.fetched = true
	return t
}

// LiveThread returns a lazy live thread with the given id.
func (r *Reddit) LiveThread(id string) *LiveThread {
	t := newLiveThread(r)
	t.attrs["id"] = id
	return t
}

// ID returns the thread id.
func (t *LiveThread) ID() string {
	return asString(t.attrs["id"])
}

// Title returns the thread title.
func (t *LiveThread) Title(ctx context.Context) (string, error) {
	return t.GetString(ctx, "title")
}

func (t *LiveThread) fetch(ctx context.Context) (map[string]any, error) {
	result, err := t.reddit.Get(ctx, internal.Endpoint("live_about", internal.Fields{"id": t.ID()}), nil)
	if err != nil {
		return nil, err
	}
	fetched, ok := result.(*LiveThread)
	if !ok {
		return nil, &pkgerrs.ParseError{Operation: "fetch live thread", Message: "response is not a live thread"}
	}
	return fetched.attrs, nil
}

// Updates lists the thread's updates, newest first.
func (t *LiveThread) Updates(opts *ListingOptions) *ListingGenerator[*LiveUpdate] {
	g := newListing[*LiveUpdate](t.reddit, internal.Endpoint("live_updates", internal.Fields{"id": t.ID()}), opts)
	g.convert = func(v any) (*LiveUpdate, bool) {
		u, ok := v.(*LiveUpdate)
		if ok {
			u.thread = t
		}
		return u, ok
	}
	return g
}

// Update returns a lazy update of the thread.
func (t *LiveThread) Update(id string) *LiveUpdate {
	u := newLiveUpdate(t.reddit, t)
	u.attrs["id"] = id
	return u
}

// Add posts a new update to the thread.
func (t *LiveThread) Add(ctx context.Context, body string) error {
	if err := t.reddit.requireUser("live update"); err != nil {
		return err
	}
	if body == "" {
		return &pkgerrs.InvalidInputError{Field: "body", Message: "update body cannot be empty"}
	}
	path := internal.Endpoint("live_add_update", internal.Fields{"id": t.ID()})
	_, err := t.reddit.Post(ctx, path, url.Values{"body": {body}}, nil, nil)
	return err
}

// Stream returns the thread's update stream.
func (t *LiveThread) Stream() *LiveThreadStream {
	return &LiveThreadStream{thread: t}
}

// LiveThreadStream streams new updates of a live thread.
type LiveThreadStream struct {
	thread *LiveThread
}

// Updates streams new updates, oldest first.
func (s *LiveThreadStream) Updates(opts *StreamOptions) *Stream[*LiveUpdate] {
	return newStream(s.thread.reddit, s.thread.Updates, func(u *LiveUpdate) string { return u.ID() }, opts)
}

// LiveUpdate is a single update in a live thread.
type LiveUpdate struct {
	base
	thread *LiveThread
}

func newLiveUpdate(r *Reddit, thread *LiveThread) *LiveUpdate {
	u := &LiveUpdate{thread: thread}
	u.base = newBase(r, "LiveUpdate", types.KindLiveUpdate, "id")
	u.fetcher = u.fetch
	u.rule = u.objectifyAttr
	return u
}

func newLiveUpdateFromData(r *Reddit, thread *LiveThread, data map[string]any) *LiveUpdate {
	u := newLiveUpdate(r, thread)
	u.load(data)
	u.fetched = true
	return u
}

func (u *LiveUpdate) objectifyAttr(name string, v any) any {
	if name == "author" {
		return redditorAttr(u.reddit, v)
	}
	return v
}

// ID returns the update id.
func (u *LiveUpdate) ID() string {
	return asString(u.attrs["id"])
}

// Thread returns the thread the update belongs to, or nil when unknown.
func (u *LiveUpdate) Thread() *LiveThread {
	return u.thread
}

// Body returns the markdown body.
func (u *LiveUpdate) Body(ctx context.Context) (string, error) {
	return u.GetString(ctx, "body")
}

// Author returns the author.
func (u *LiveUpdate) Author(ctx context.Context) (*Redditor, error) {
	v, err := u.Get(ctx, "author")
	if err != nil {
		return nil, err
	}
	return entityAs[*Redditor](v), nil
}

func (u *LiveUpdate) fetch(ctx context.Context) (map[string]any, error) {
	if u.thread == nil {
		return nil, &pkgerrs.StateError{Operation: "fetch live update", Message: "update is not attached to a thread"}
	}
	path := internal.Endpoint("live_focus", internal.Fields{"thread_id": u.thread.ID(), "update_id": u.ID()})
	result, err := u.reddit.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	listing, err := extractListing(result)
	if err != nil {
		return nil, err
	}
	if len(listing.Children) == 0 {
		return nil, &pkgerrs.MissingObjectError{Message: "live update " + u.ID() + " does not exist"}
	}
	fetched, ok := listing.Children[0].(*LiveUpdate)
	if !ok {
		return nil, &pkgerrs.ParseError{Operation: "fetch live update", Message: "response is not a live update"}
	}
	return fetched.attrs, nil
}
