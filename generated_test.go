package graw

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/graw/test_generators"
)

func generatedThread(t *testing.T, seed int64) (*fakeRequestor, *test_generators.Thread) {
	thread := test_generators.NewCommentGenerator(seed).Thread(test_generators.ThreadOptions{
		TopLevel:   20,
		MaxDepth:   6,
		MaxReplies: 3,
		MoreEvery:  4,
	})
	fake := newFakeRequestor(t).on(http.MethodGet, submissionPath, threadBody(thread.Comments...))
	return fake, thread
}

func TestGeneratedThreadLoads(t *testing.T) {
	for _, seed := range []int64{1, 7, 42} {
		fake, thread := generatedThread(t, seed)
		s, forest := loadForest(t, fake)

		tree := NewCommentTree(forest)
		assert.Equal(t, thread.CommentCount, tree.Count(), "seed %d", seed)
		assert.Equal(t, thread.Depth, tree.GetDepth(), "seed %d", seed)
		assert.Len(t, s.CommentsByID(), thread.CommentCount, "seed %d", seed)

		more := 0
		for node := range NewCommentIterator(forest, nil).All() {
			if _, ok := node.(*MoreComments); ok {
				more++
			}
		}
		assert.Equal(t, thread.MoreCount, more, "seed %d", seed)

		for _, c := range tree.Flatten() {
			assert.Same(t, s, c.submission)
		}
	}
}

func TestGeneratedThreadReplaceMoreWithoutFetching(t *testing.T) {
	fake, thread := generatedThread(t, 3)
	_, forest := loadForest(t, fake)
	require.Positive(t, thread.MoreCount)

	skipped, err := forest.ReplaceMore(context.Background(), &ReplaceMoreOptions{Limit: ExpandNone})
	require.NoError(t, err)
	assert.Len(t, skipped, thread.MoreCount)
	assert.Len(t, fake.requests, 1)

	for node := range NewCommentIterator(forest, nil).All() {
		assert.IsType(t, &Comment{}, node)
	}
	assert.Equal(t, thread.CommentCount, NewCommentTree(forest).Count())
}

func TestGeneratedListingPages(t *testing.T) {
	pages := test_generators.NewPostGenerator(9).Pages("golang", 230, 100)
	require.Len(t, pages, 3)

	bodies := make([]any, len(pages))
	for i, p := range pages {
		bodies[i] = p
	}
	fake := newFakeRequestor(t).on(http.MethodGet, "r/golang/new", bodies...)
	r := newTestReddit(t, fake)

	posts, err := r.Subreddit("golang").New(&ListingOptions{Limit: NoLimit}).Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, posts, 230)

	require.Len(t, fake.requests, 3)
	assert.Empty(t, fake.requests[0].Params.Get("after"))
	assert.Equal(t, posts[99].Fullname(), fake.requests[1].Params.Get("after"))
	assert.Equal(t, posts[199].Fullname(), fake.requests[2].Params.Get("after"))
}

func BenchmarkLoadGeneratedThread(b *testing.B) {
	thread := test_generators.NewCommentGenerator(1).Thread(test_generators.ThreadOptions{
		TopLevel:   200,
		MaxDepth:   8,
		MaxReplies: 4,
		MoreEvery:  10,
	})
	body := threadBody(thread.Comments...)

	b.ReportAllocs()
	for b.Loop() {
		r, err := NewClientWithRequestor(nil, &fakeRequestor{
			responses: map[string][]any{routeKey(http.MethodGet, submissionPath): {body}},
			served:    map[string]int{},
			errs:      map[string]error{},
		})
		if err != nil {
			b.Fatal(err)
		}
		if _, err := r.Submission("abc").Comments(context.Background()); err != nil {
			b.Fatal(err)
		}
	}
}
