package graw_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	graw "github.com/jamesprial/graw"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/test_helpers"
)

func hotListing(ids ...string) map[string]any {
	children := make([]any, len(ids))
	for i, id := range ids {
		children[i] = map[string]any{"kind": "t3", "data": map[string]any{
			"id": id, "name": "t3_" + id, "title": "post " + id, "subreddit": "golang",
		}}
	}
	return map[string]any{"kind": "Listing", "data": map[string]any{"after": nil, "children": children}}
}

func TestClientListingEndToEnd(t *testing.T) {
	tc := test_helpers.NewTestClient(nil)
	defer tc.Close()
	tc.Server().On(http.MethodGet, "r/golang/hot", test_helpers.JSON(hotListing("a", "b")))

	posts, err := tc.Subreddit("golang").Hot(&graw.ListingOptions{Limit: 5}).Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "b", posts[1].ID())

	req, err := tc.Server().LastRequest("r/golang/hot")
	require.NoError(t, err)
	assert.Equal(t, "Bearer mock_token_1", req.Headers.Get("Authorization"))
	assert.Equal(t, "test:graw:1.0 (by /u/tester)", req.Headers.Get("User-Agent"))
	assert.Equal(t, "1", req.Query.Get("raw_json"))
	assert.Equal(t, "5", req.Query.Get("limit"))
	assert.Equal(t, 1, tc.Server().TokenRequests())
	assert.False(t, tc.ReadOnly())
}

func TestClientSharedAcrossGoroutines(t *testing.T) {
	tc := test_helpers.NewTestClient(nil)
	defer tc.Close()
	tc.Server().On(http.MethodGet, "r/golang/hot", test_helpers.JSON(hotListing("a", "b")))

	g, ctx := errgroup.WithContext(context.Background())
	for range 8 {
		g.Go(func() error {
			posts, err := tc.Subreddit("golang").Hot(nil).Collect(ctx)
			if err == nil && len(posts) != 2 {
				t.Errorf("got %d posts, want 2", len(posts))
			}
			return err
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 1, tc.Server().TokenRequests())
}

func TestClientErrorEnvelopeFromBadRequest(t *testing.T) {
	tc := test_helpers.NewTestClient(nil)
	defer tc.Close()
	tc.Server().On(http.MethodPost, "api/comment/", test_helpers.Status(http.StatusBadRequest,
		`{"json": {"errors": [["TOO_LONG", "this is too long (max: 10000)", "text"]]}}`))

	_, err := tc.Submission("abc").Reply(context.Background(), "hello")
	var apiErr *pkgerrs.RedditAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "TOO_LONG", apiErr.First().ErrorType)
	assert.Equal(t, "text", apiErr.First().Field)

	req, err := tc.Server().LastRequest("api/comment/")
	require.NoError(t, err)
	assert.Equal(t, "json", req.Form.Get("api_type"))
	assert.Equal(t, "t3_abc", req.Form.Get("thing_id"))
}

func TestClientRenewsTokenOnUnauthorized(t *testing.T) {
	tc := test_helpers.NewTestClient(nil)
	defer tc.Close()
	tc.Server().On(http.MethodGet, "r/golang/hot",
		test_helpers.Status(http.StatusUnauthorized, `{"message": "Unauthorized", "error": 401}`),
		test_helpers.JSON(hotListing("a")),
	)

	posts, err := tc.Subreddit("golang").Hot(nil).Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, 2, tc.Server().TokenRequests())

	req, err := tc.Server().LastRequest("r/golang/hot")
	require.NoError(t, err)
	assert.Equal(t, "Bearer mock_token_2", req.Headers.Get("Authorization"))
}

func TestClientFollowsRandomRedirect(t *testing.T) {
	tc := test_helpers.NewTestClient(nil)
	defer tc.Close()
	tc.Server().On(http.MethodGet, "r/golang/random/", test_helpers.Redirect("/r/golang/comments/xyz/some_title/"))

	post, err := tc.Subreddit("golang").Random(context.Background())
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, "xyz", post.ID())
}

func TestClientMissingSubredditRedirect(t *testing.T) {
	tc := test_helpers.NewTestClient(nil)
	defer tc.Close()
	tc.Server().On(http.MethodGet, "r/nope/about/", test_helpers.Redirect("/subreddits/search.json?q=nope"))

	_, err := tc.Subreddit("nope").Subscribers(context.Background())
	var missing *pkgerrs.MissingObjectError
	assert.ErrorAs(t, err, &missing)
}

func TestClientReadOnly(t *testing.T) {
	tc := test_helpers.NewTestClient(&test_helpers.ClientOptions{ReadOnly: true})
	defer tc.Close()

	assert.True(t, tc.ReadOnly())
	_, err := tc.Me(context.Background())
	var roErr *pkgerrs.ReadOnlyError
	assert.ErrorAs(t, err, &roErr)
	assert.Empty(t, tc.Server().Requests())
}

func TestClientTokenFailure(t *testing.T) {
	tc := test_helpers.NewTestClient(nil)
	defer tc.Close()
	tc.Server().FailTokens(http.StatusUnauthorized)

	err := tc.Connect(context.Background())
	var authErr *pkgerrs.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
	assert.Empty(t, tc.Server().Requests())
}

func TestClientMe(t *testing.T) {
	tc := test_helpers.NewTestClient(nil)
	defer tc.Close()
	tc.Server().On(http.MethodGet, "api/v1/me", test_helpers.JSON(map[string]any{"name": "test_user", "id": "u1", "link_karma": 5}))

	me, err := tc.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test_user", me.Key())
	karma, err := me.LinkKarma(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, karma)
}
