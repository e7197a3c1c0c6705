package graw

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"maps"
	"net/url"
	"slices"
	"strconv"

	"github.com/jamesprial/graw/internal"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

// NoLimit drains a listing when used as ListingOptions.Limit.
const NoLimit = -1

// DefaultListingLimit is the number of items a listing yields when no limit is set.
const DefaultListingLimit = 100

// Listing is one page of a cursor-paginated collection.
type Listing struct {
	Children []any
	After    string
	Before   string
}

// ListingOptions configures a listing generator.
type ListingOptions struct {
	// Limit is the total number of items to yield. Zero means
	// DefaultListingLimit and NoLimit drains the listing.
	Limit int
	// Params are added to every page request.
	Params url.Values
}

// ListingGenerator yields the items of a listing, requesting pages of up to
// 100 items as they are consumed. Nothing is requested before the first call
// to Next. A generator is single use.
//
// Example usage:
//
//	gen := reddit.Subreddit("golang").New(&graw.ListingOptions{Limit: 250})
//	for gen.HasNext() {
//		submission, err := gen.Next(ctx)
//		if err != nil {
//			break
//		}
//		fmt.Println(submission.ID())
//	}
type ListingGenerator[T any] struct {
	reddit     *Reddit
	path       string
	params     url.Values
	afterParam string
	convert    func(any) (T, bool)
	cursor     *internal.Cursor[T]
	// prepare runs once before the first page request. It fills in path
	// or params that need a request of their own to resolve.
	prepare func(ctx context.Context) error

	err     error
	errSeen bool
}

func newListing[T any](r *Reddit, path string, opts *ListingOptions) *ListingGenerator[T] {
	g := &ListingGenerator[T]{
		reddit:     r,
		path:       path,
		params:     url.Values{},
		afterParam: "after",
		convert:    assertItem[T],
	}

	limit := DefaultListingLimit
	if opts != nil {
		if opts.Limit != 0 {
			limit = opts.Limit
		}
		for k, v := range opts.Params {
			g.params[k] = slices.Clone(v)
		}
	}
	if err := r.validator.ValidateLimit(limit); err != nil {
		g.err = err
	}

	g.cursor = internal.NewCursor(g.fetchPage, limit, r.logger)
	return g
}

// failedListing returns a generator whose first Next reports err.
func failedListing[T any](err error) *ListingGenerator[T] {
	return &ListingGenerator[T]{err: err}
}

func assertItem[T any](v any) (T, bool) {
	t, ok := v.(T)
	return t, ok
}

// HasNext returns true if another call to Next may produce an item.
func (g *ListingGenerator[T]) HasNext() bool {
	if g.err != nil {
		return !g.errSeen
	}
	return g.cursor.HasNext()
}

// Next returns the next item, errors.ErrNoMoreItems when the listing is
// drained, or the error of the request that failed.
func (g *ListingGenerator[T]) Next(ctx context.Context) (T, error) {
	if g.err != nil {
		g.errSeen = true
		var zero T
		return zero, g.err
	}
	return g.cursor.Next(ctx)
}

// All returns an iterator over the remaining items. Iteration stops after
// the first error.
func (g *ListingGenerator[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			item, err := g.Next(ctx)
			if errors.Is(err, pkgerrs.ErrNoMoreItems) {
				return
			}
			if !yield(item, err) || err != nil {
				return
			}
		}
	}
}

// Collect drains the generator into a slice.
func (g *ListingGenerator[T]) Collect(ctx context.Context) ([]T, error) {
	var out []T
	for item, err := range g.All(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (g *ListingGenerator[T]) fetchPage(ctx context.Context, after string, limit int) ([]T, string, error) {
	if g.prepare != nil {
		if err := g.prepare(ctx); err != nil {
			return nil, "", err
		}
		g.prepare = nil
	}

	params := maps.Clone(g.params)
	params.Set("limit", strconv.Itoa(limit))
	if after != "" {
		params.Set(g.afterParam, after)
	}

	result, err := g.reddit.Get(ctx, g.path, params)
	if err != nil {
		return nil, "", err
	}

	listing, err := extractListing(result)
	if err != nil {
		return nil, "", err
	}

	items := make([]T, 0, len(listing.Children))
	for _, child := range listing.Children {
		item, ok := g.convert(child)
		if !ok {
			return nil, "", &pkgerrs.ParseError{
				Operation: "listing " + g.path,
				Message:   fmt.Sprintf("unexpected item of type %T", child),
			}
		}
		items = append(items, item)
	}
	return items, listing.After, nil
}

// extractListing finds the listing in a page response. A list-shaped
// response carries it in its second element, and flair lists arrive as
// {"users", "next", "prev"}.
func extractListing(result any) (*Listing, error) {
	switch v := result.(type) {
	case *Listing:
		return v, nil
	case []any:
		if len(v) < 2 {
			return nil, &pkgerrs.ParseError{Operation: "listing", Message: "list response has fewer than two elements"}
		}
		return extractListing(v[1])
	case map[string]any:
		if users, ok := v["users"].([]any); ok {
			return &Listing{Children: users, After: asString(v["next"]), Before: asString(v["prev"])}, nil
		}
	}
	return nil, &pkgerrs.ParseError{Operation: "listing", Message: fmt.Sprintf("unexpected response of type %T", result)}
}

// sortedListing builds the hot/new/top/... listings shared by subreddits,
// multireddits and redditors. basePath ends with a slash.
func sortedListing(r *Reddit, basePath, sort, timeFilter string, opts *ListingOptions) *ListingGenerator[*Submission] {
	if err := r.validator.ValidateTimeFilter(timeFilter); err != nil {
		return failedListing[*Submission](err)
	}
	if timeFilter != "" {
		opts = withParam(opts, "t", timeFilter)
	}
	return newListing[*Submission](r, basePath+sort, opts)
}

// withParam returns a copy of opts with key set to value.
func withParam(opts *ListingOptions, key, value string) *ListingOptions {
	out := &ListingOptions{Params: url.Values{}}
	if opts != nil {
		out.Limit = opts.Limit
		for k, v := range opts.Params {
			out.Params[k] = slices.Clone(v)
		}
	}
	out.Params.Set(key, value)
	return out
}
