package graw

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

func page(ids ...string) map[string]any {
	children := make([]map[string]any, len(ids))
	for i, id := range ids {
		children[i] = submissionThing(id, nil)
	}
	return listingOf("", children...)
}

func nextIDs(t *testing.T, s *Stream[*Submission], n int) []string {
	t.Helper()
	var out []string
	for range n {
		item, err := s.Next(context.Background())
		require.NoError(t, err)
		if item == nil {
			out = append(out, "<pause>")
			continue
		}
		out = append(out, item.ID())
	}
	return out
}

func TestStreamYieldsOldestFirstWithoutDuplicates(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodGet, "r/test/new",
		page("c", "b", "a"),
		page("e", "d", "c", "b"),
	)
	r := newTestReddit(t, fake)

	stream := r.Subreddit("test").Stream().Submissions(nil)
	stream.sleep = noSleep

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, nextIDs(t, stream, 5))

	calls := fake.calls(http.MethodGet, "r/test/new")
	require.Len(t, calls, 2)
	assert.Equal(t, "100", calls[0].Params.Get("limit"))
	assert.Empty(t, calls[0].Params.Get("before"))
	assert.Equal(t, "t3_c", calls[1].Params.Get("before"))
}

func TestStreamSkipExisting(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodGet, "r/test/new",
		page("b", "a"),
		page("b", "a"),
		page("c", "b", "a"),
	)
	r := newTestReddit(t, fake)

	stream := r.Subreddit("test").Stream().Submissions(&StreamOptions{SkipExisting: true, PauseAfter: PauseAfter(0)})
	stream.sleep = noSleep

	assert.Equal(t, []string{"<pause>", "c"}, nextIDs(t, stream, 2))
	assert.Len(t, fake.requests, 3)
}

func TestStreamPauseAfterZero(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodGet, "r/test/new", listingOf(""))
	r := newTestReddit(t, fake)

	stream := r.Subreddit("test").Stream().Submissions(&StreamOptions{PauseAfter: PauseAfter(0)})
	stream.sleep = func(context.Context, time.Duration) error {
		t.Fatal("a pausing stream does not sleep before its first pause")
		return nil
	}

	assert.Equal(t, []string{"<pause>"}, nextIDs(t, stream, 1))
	assert.Len(t, fake.requests, 1)
}

func TestStreamPauseAfterEveryPoll(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodGet, "r/test/new",
		page("a"),
		page("b", "a"),
	)
	r := newTestReddit(t, fake)

	stream := r.Subreddit("test").Stream().Submissions(&StreamOptions{PauseAfter: PauseAfter(-1)})
	stream.sleep = noSleep

	assert.Equal(t, []string{"a", "<pause>", "b", "<pause>"}, nextIDs(t, stream, 4))
}

func TestStreamBacksOffOnEmptyPolls(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodGet, "r/test/new",
		page("a"),
		page("a"),
		page("a"),
		page("b", "a"),
	)
	r := newTestReddit(t, fake)

	var delays []time.Duration
	stream := r.Subreddit("test").Stream().Submissions(nil)
	stream.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	assert.Equal(t, []string{"a", "b"}, nextIDs(t, stream, 2))
	require.Len(t, delays, 2)
	assert.InDelta(t, time.Second, delays[0], float64(time.Second/16))
	assert.InDelta(t, 2*time.Second, delays[1], float64(time.Second/8))
}

func TestStreamErrorsAreNotSticky(t *testing.T) {
	fake := newFakeRequestor(t).fail(http.MethodGet, "r/test/new",
		&pkgerrs.APIError{StatusCode: http.StatusBadGateway, Message: "bad gateway"})
	r := newTestReddit(t, fake)
	ctx := context.Background()

	stream := r.Subreddit("test").Stream().Submissions(nil)
	stream.sleep = noSleep

	_, err := stream.Next(ctx)
	var apiErr *pkgerrs.APIError
	require.ErrorAs(t, err, &apiErr)

	delete(fake.errs, routeKey(http.MethodGet, "r/test/new"))
	fake.on(http.MethodGet, "r/test/new", page("a"))

	item, err := stream.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", item.ID())
}

func TestStreamRotatesLimitWithoutBefore(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodGet, "r/test/new", listingOf(""))
	r := newTestReddit(t, fake)

	stream := r.Subreddit("test").Stream().Submissions(&StreamOptions{PauseAfter: PauseAfter(-1)})
	stream.sleep = noSleep

	nextIDs(t, stream, 3)
	calls := fake.calls(http.MethodGet, "r/test/new")
	require.Len(t, calls, 3)
	assert.Equal(t, "100", calls[0].Params.Get("limit"))
	assert.Equal(t, "99", calls[1].Params.Get("limit"))
	assert.Equal(t, "98", calls[2].Params.Get("limit"))
}

func TestStreamAllStopsOnContextCancel(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodGet, "r/test/new", page("a"))
	r := newTestReddit(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream := r.Subreddit("test").Stream().Submissions(nil)

	var got []string
	for item, err := range stream.All(ctx) {
		if err != nil {
			assert.ErrorIs(t, err, context.Canceled)
			break
		}
		got = append(got, item.ID())
		cancel()
	}
	assert.Equal(t, []string{"a"}, got)
}
