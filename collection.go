package graw

import (
	"context"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/jamesprial/graw/internal"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

// Collection is an ordered set of submissions curated by moderators.
type Collection struct {
	base
}

func newCollection(r *Reddit) *Collection {
	c := &Collection{}
	c.base = newBase(r, "Collection", "", "collection_id")
	c.fetcher = c.fetch
	c.rule = c.objectifyAttr
	return c
}

// Collection returns a lazy collection. id must be a UUID.
func (r *Reddit) Collection(id string) (*Collection, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, &pkgerrs.InvalidInputError{Field: "collection_id", Message: "invalid collection id " + strconv.Quote(id)}
	}
	c := newCollection(r)
	c.attrs["collection_id"] = parsed.String()
	return c, nil
}

// CollectionFromPermalink returns a lazy collection for a URL such as
// https://www.reddit.com/r/SUBREDDIT/collection/ID.
func (r *Reddit) CollectionFromPermalink(permalink string) (*Collection, error) {
	parts, err := urlParts(permalink)
	if err != nil {
		return nil, err
	}
	c, err := r.Collection(parts[len(parts)-1])
	if err != nil {
		return nil, &pkgerrs.InvalidURLError{URL: permalink, Message: "no collection id"}
	}
	return c, nil
}

func (c *Collection) objectifyAttr(name string, v any) any {
	listing, ok := v.(*Listing)
	if name != "sorted_links" || !ok {
		return v
	}
	subs := make([]*Submission, 0, len(listing.Children))
	for _, child := range listing.Children {
		if s, ok := child.(*Submission); ok {
			subs = append(subs, s)
		}
	}
	return subs
}

// ID returns the collection's UUID.
func (c *Collection) ID() string {
	return asString(c.attrs["collection_id"])
}

// Title returns the collection title.
func (c *Collection) Title(ctx context.Context) (string, error) {
	return c.GetString(ctx, "title")
}

// Author returns the redditor who created the collection.
func (c *Collection) Author(ctx context.Context) (*Redditor, error) {
	name, err := c.GetString(ctx, "author_name")
	if err != nil {
		return nil, err
	}
	return entityAs[*Redditor](redditorAttr(c.reddit, name)), nil
}

// Submissions returns the collection's submissions in order.
func (c *Collection) Submissions(ctx context.Context) ([]*Submission, error) {
	v, err := c.Get(ctx, "sorted_links")
	if err != nil {
		return nil, err
	}
	return entityAs[[]*Submission](v), nil
}

func (c *Collection) fetch(ctx context.Context) (map[string]any, error) {
	params := url.Values{"collection_id": {c.ID()}, "include_links": {"true"}}
	result, err := c.reddit.Get(ctx, internal.Endpoint("collection", nil), params)
	if err != nil && !pkgerrs.IsNotFound(err) {
		return nil, err
	}
	data := asMap(result)
	if data == nil {
		return nil, &pkgerrs.MissingObjectError{Message: "collection " + c.ID() + " could not be found"}
	}
	return data, nil
}

// Follow subscribes the current user to the collection.
func (c *Collection) Follow(ctx context.Context) error {
	return c.follow(ctx, true)
}

// Unfollow reverses Follow.
func (c *Collection) Unfollow(ctx context.Context) error {
	return c.follow(ctx, false)
}

func (c *Collection) follow(ctx context.Context, state bool) error {
	if err := c.reddit.requireUser("follow collection"); err != nil {
		return err
	}
	data := url.Values{"collection_id": {c.ID()}, "follow": {strconv.FormatBool(state)}}
	_, err := c.reddit.Post(ctx, internal.Endpoint("collection_follow", nil), data, nil, nil)
	return err
}
