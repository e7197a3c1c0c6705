package graw

import (
	"context"
	"net/url"

	"github.com/jamesprial/graw/internal"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

// Draft is an unsubmitted post saved in the user's account.
type Draft struct {
	base
}

func newDraft(r *Reddit, id string) *Draft {
	d := &Draft{}
	d.base = newBase(r, "Draft", "", "id")
	d.attrs["id"] = id
	d.fetcher = d.fetch
	return d
}

// Draft returns a lazy draft with the given id.
func (r *Reddit) Draft(id string) *Draft {
	return newDraft(r, id)
}

// Drafts returns the current user's drafts.
func (r *Reddit) Drafts(ctx context.Context) ([]*Draft, error) {
	if err := r.requireUser("drafts"); err != nil {
		return nil, err
	}
	result, err := r.Get(ctx, internal.Endpoint("drafts", nil), url.Values{"md_body": {"true"}})
	if err != nil {
		return nil, err
	}
	resp := asMap(result)

	names := map[string]string{}
	for _, item := range asSlice(resp["subreddits"]) {
		sub := asMap(item)
		names[asString(sub["name"])] = asString(sub["display_name"])
	}

	items := asSlice(resp["drafts"])
	drafts := make([]*Draft, 0, len(items))
	for _, item := range items {
		data := asMap(item)
		if data == nil {
			continue
		}
		d := newDraft(r, "")
		d.load(data)
		if name, ok := names[asString(data["subreddit"])]; ok {
			d.attrs["subreddit"] = r.Subreddit(name)
		}
		d.fetched = true
		drafts = append(drafts, d)
	}
	return drafts, nil
}

// ID returns the draft id.
func (d *Draft) ID() string {
	return asString(d.attrs["id"])
}

// Title returns the draft title.
func (d *Draft) Title(ctx context.Context) (string, error) {
	return d.GetString(ctx, "title")
}

// Body returns the markdown body.
func (d *Draft) Body(ctx context.Context) (string, error) {
	return d.GetString(ctx, "body")
}

func (d *Draft) fetch(ctx context.Context) (map[string]any, error) {
	drafts, err := d.reddit.Drafts(ctx)
	if err != nil {
		return nil, err
	}
	for _, other := range drafts {
		if other.ID() == d.ID() {
			return other.attrs, nil
		}
	}
	return nil, &pkgerrs.MissingObjectError{Message: "draft " + d.ID() + " could not be found"}
}

// Delete deletes the draft.
func (d *Draft) Delete(ctx context.Context) error {
	if err := d.reddit.requireUser("delete draft"); err != nil {
		return err
	}
	_, err := d.reddit.Delete(ctx, internal.Endpoint("draft", nil), url.Values{"draft_id": {d.ID()}})
	return err
}
