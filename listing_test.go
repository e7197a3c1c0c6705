package graw

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

func submissionIDs(items []*Submission) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = s.ID()
	}
	return out
}

func TestListingPagesUntilAfterIsEmpty(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodGet, "r/test/hot",
		listingOf("t3_b", submissionThing("a", nil), submissionThing("b", nil)),
		listingOf("", submissionThing("c", nil)),
	)
	r := newTestReddit(t, fake)

	gen := r.Subreddit("test").Hot(&ListingOptions{Limit: NoLimit})
	assert.Empty(t, fake.requests, "no request before the first Next")

	items, err := gen.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, submissionIDs(items))

	require.Len(t, fake.requests, 2)
	assert.Equal(t, "100", fake.requests[0].Params.Get("limit"))
	assert.Empty(t, fake.requests[0].Params.Get("after"))
	assert.Equal(t, "t3_b", fake.requests[1].Params.Get("after"))
	assert.False(t, gen.HasNext())
}

func TestListingStopsAtLimit(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodGet, "r/test/new",
		listingOf("t3_b", submissionThing("a", nil), submissionThing("b", nil)),
		listingOf("t3_d", submissionThing("c", nil), submissionThing("d", nil)),
	)
	r := newTestReddit(t, fake)

	items, err := r.Subreddit("test").New(&ListingOptions{Limit: 3}).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, submissionIDs(items))

	require.Len(t, fake.requests, 2)
	assert.Equal(t, "3", fake.requests[0].Params.Get("limit"))
	assert.Equal(t, "1", fake.requests[1].Params.Get("limit"), "the last page only asks for what is left")
}

func TestListingStopsWhenCursorRepeats(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodGet, "r/test/rising",
		listingOf("t3_a", submissionThing("a", nil)),
	)
	r := newTestReddit(t, fake)

	items, err := r.Subreddit("test").Rising(&ListingOptions{Limit: NoLimit}).Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Len(t, fake.requests, 2)
}

func TestListingEmptyPage(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodGet, "r/test/hot", listingOf("t3_zzz"))
	r := newTestReddit(t, fake)

	gen := r.Subreddit("test").Hot(nil)
	_, err := gen.Next(context.Background())
	assert.ErrorIs(t, err, pkgerrs.ErrNoMoreItems)
	assert.False(t, gen.HasNext())
	assert.Len(t, fake.requests, 1)
}

func TestListingErrorIsSticky(t *testing.T) {
	fake := newFakeRequestor(t).fail(http.MethodGet, "r/test/hot",
		&pkgerrs.APIError{StatusCode: http.StatusServiceUnavailable, Message: "down"})
	r := newTestReddit(t, fake)
	ctx := context.Background()

	gen := r.Subreddit("test").Hot(nil)
	_, err := gen.Next(ctx)
	var apiErr *pkgerrs.APIError
	require.ErrorAs(t, err, &apiErr)

	_, err = gen.Next(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Len(t, fake.requests, 1)
	assert.False(t, gen.HasNext())
}

func TestListingTimeFilter(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodGet, "r/test/top", listingOf(""))
	r := newTestReddit(t, fake)
	ctx := context.Background()

	_, err := r.Subreddit("test").Top("week", &ListingOptions{Params: url.Values{"sr_detail": {"1"}}}).Collect(ctx)
	require.NoError(t, err)
	require.Len(t, fake.requests, 1)
	assert.Equal(t, "week", fake.requests[0].Params.Get("t"))
	assert.Equal(t, "1", fake.requests[0].Params.Get("sr_detail"))

	_, err = r.Subreddit("test").Controversial("decade", nil).Next(ctx)
	var inputErr *pkgerrs.InvalidInputError
	require.ErrorAs(t, err, &inputErr)
	assert.Len(t, fake.requests, 1, "an invalid filter never reaches Reddit")
}

func TestListingInvalidLimit(t *testing.T) {
	r := newTestReddit(t, newFakeRequestor(t))

	_, err := r.Subreddit("test").Hot(&ListingOptions{Limit: -5}).Next(context.Background())
	var inputErr *pkgerrs.InvalidInputError
	assert.ErrorAs(t, err, &inputErr)
}

func TestListingUnexpectedItem(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodGet, "r/test/hot",
		listingOf("", commentThing("c1", "t3_a", "t3_a", nil)))
	r := newTestReddit(t, fake)

	_, err := r.Subreddit("test").Hot(nil).Next(context.Background())
	var parseErr *pkgerrs.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestListingAll(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodGet, "r/test/hot",
		listingOf("", submissionThing("a", nil), submissionThing("b", nil), submissionThing("c", nil)))
	r := newTestReddit(t, fake)

	var ids []string
	for s, err := range r.Subreddit("test").Hot(nil).All(context.Background()) {
		require.NoError(t, err)
		ids = append(ids, s.ID())
		if len(ids) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestExtractListing(t *testing.T) {
	page := &Listing{After: "t3_x"}

	got, err := extractListing([]any{&Listing{}, page})
	require.NoError(t, err)
	assert.Same(t, page, got)

	got, err = extractListing(map[string]any{"users": []any{"a"}, "next": "n", "prev": "p"})
	require.NoError(t, err)
	assert.Equal(t, "n", got.After)
	assert.Equal(t, "p", got.Before)

	_, err = extractListing([]any{page})
	assert.Error(t, err)
	_, err = extractListing("nope")
	assert.Error(t, err)
}

func TestInfoChunksFullnames(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodGet, "api/info/",
		listingOf("", submissionThing("a", nil), commentThing("b", "t3_a", "t3_a", nil)))
	r := newTestReddit(t, fake)

	fullnames := make([]string, 150)
	for i := range fullnames {
		fullnames[i] = fmt.Sprintf("t3_%x", i+1000)
	}

	items, err := r.Info(context.Background(), fullnames)
	require.NoError(t, err)
	assert.Len(t, items, 4)

	calls := fake.calls(http.MethodGet, "api/info/")
	require.Len(t, calls, 2)
	assert.Len(t, strings.Split(calls[0].Params.Get("id"), ","), 100)
	assert.Len(t, strings.Split(calls[1].Params.Get("id"), ","), 50)

	_, err = r.Info(context.Background(), []string{"bogus"})
	var inputErr *pkgerrs.InvalidInputError
	assert.ErrorAs(t, err, &inputErr)
}
