package graw

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/types"
)

func TestEqual(t *testing.T) {
	r := newTestReddit(t, newFakeRequestor(t))

	tests := []struct {
		name string
		a, b Entity
		want bool
	}{
		{"subreddit names fold case", r.Subreddit("GoLang"), r.Subreddit("golang"), true},
		{"redditor names fold case", r.Redditor("Spez"), r.Redditor("spez"), true},
		{"submission ids are case sensitive", r.Submission("abc"), r.Submission("ABC"), false},
		{"same submission id", r.Submission("abc"), r.Submission("abc"), true},
		{"different types never match", r.Subreddit("spez"), r.Redditor("spez"), false},
		{"unresolved fullnames differ", r.RedditorFromFullname("t2_aaa"), r.RedditorFromFullname("t2_bbb"), false},
		{"same unresolved fullname", r.RedditorFromFullname("t2_aaa"), r.RedditorFromFullname("t2_aaa"), true},
		{"multireddit paths fold case", r.Multireddit("Spez", "Tech"), r.Multireddit("spez", "tech"), true},
		{"nil against entity", nil, r.Submission("abc"), false},
		{"nil against nil", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestKeyKeepsDisplayCase(t *testing.T) {
	r := newTestReddit(t, newFakeRequestor(t))

	sub := r.Subreddit("GoLang")
	assert.Equal(t, "golang", sub.Key())
	assert.Equal(t, "GoLang", sub.DisplayName())
	assert.Equal(t, "GoLang", sub.String())
}

func TestFullnameRoundTrip(t *testing.T) {
	r := newTestReddit(t, newFakeRequestor(t))

	for _, fullname := range []string{
		r.Submission("2gmzqe").Fullname(),
		r.Comment("cklhv0f").Fullname(),
		r.RedditorFromFullname("t2_1w72").Fullname(),
	} {
		parsed, err := types.ParseFullname(fullname)
		require.NoError(t, err)
		assert.Equal(t, fullname, parsed.String())
	}

	assert.Equal(t, "t3_2gmzqe", r.Submission("2gmzqe").Fullname())
	assert.Equal(t, "t1_cklhv0f", r.Comment("cklhv0f").Fullname())
	assert.Equal(t, "t2_1w72", r.RedditorFromFullname("t2_1w72").Fullname())
	assert.Empty(t, r.Redditor("spez").Fullname(), "fullname is unknown before a fetch")
}

func TestLazyFetchHappensOnce(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodGet, "user/spez/about/",
		thing("t2", map[string]any{"name": "spez", "id": "1w72", "link_karma": 100, "comment_karma": 50}))
	r := newTestReddit(t, fake)
	ctx := context.Background()

	u := r.Redditor("spez")
	assert.False(t, u.Fetched())
	assert.Empty(t, fake.requests, "creating an entity does not request anything")

	link, err := u.LinkKarma(ctx)
	require.NoError(t, err)
	comment, err := u.CommentKarma(ctx)
	require.NoError(t, err)

	assert.Equal(t, 100, link)
	assert.Equal(t, 50, comment)
	assert.True(t, u.Fetched())
	assert.Len(t, fake.requests, 1)
	assert.Equal(t, "t2_1w72", u.Fullname())
}

func TestGetMissingAttribute(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodGet, "user/spez/about/",
		thing("t2", map[string]any{"name": "spez", "id": "1w72"}))
	r := newTestReddit(t, fake)
	ctx := context.Background()

	u := r.Redditor("spez")
	_, err := u.Get(ctx, "no_such_attribute")
	var attrErr *pkgerrs.AttributeError
	require.ErrorAs(t, err, &attrErr)
	assert.Equal(t, "Redditor", attrErr.Type)

	_, err = u.Get(ctx, "still_missing")
	require.ErrorAs(t, err, &attrErr)
	assert.Len(t, fake.requests, 1, "a fetched entity is not fetched again")
}

func TestGetPrivateAttributeNeverFetches(t *testing.T) {
	fake := newFakeRequestor(t)
	r := newTestReddit(t, fake)

	_, err := r.Submission("abc").Get(context.Background(), "_private")
	var attrErr *pkgerrs.AttributeError
	require.ErrorAs(t, err, &attrErr)
	assert.Empty(t, fake.requests)
}

func TestFailedFetchIsRetried(t *testing.T) {
	fake := newFakeRequestor(t).fail(http.MethodGet, "user/spez/about/",
		&pkgerrs.APIError{StatusCode: http.StatusInternalServerError, Message: "boom"})
	r := newTestReddit(t, fake)
	ctx := context.Background()

	u := r.Redditor("spez")
	_, err := u.LinkKarma(ctx)
	require.Error(t, err)
	assert.False(t, u.Fetched())

	_, err = u.LinkKarma(ctx)
	require.Error(t, err)
	assert.Len(t, fake.requests, 2)
}

func TestFetchKeepsIdentifier(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodGet, "r/GoLang/about/",
		thing("t5", map[string]any{"display_name": "golang", "title": "The Go Programming Language", "subscribers": 250000}))
	r := newTestReddit(t, fake)

	sub := r.Subreddit("GoLang")
	title, err := sub.Title(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "The Go Programming Language", title)
	assert.Equal(t, "golang", sub.Key())

	count, err := sub.Subscribers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 250000, count)
}

func TestRedditorFromFullnameResolvesName(t *testing.T) {
	fake := newFakeRequestor(t).
		on(http.MethodGet, "api/user_data_by_account_ids", map[string]any{"t2_1w72": map[string]any{"name": "spez"}}).
		on(http.MethodGet, "user/spez/about/", thing("t2", map[string]any{"name": "spez", "id": "1w72", "link_karma": 7}))
	r := newTestReddit(t, fake)
	ctx := context.Background()

	u := r.RedditorFromFullname("t2_1w72")
	name, err := u.Name(ctx)
	require.NoError(t, err)
	assert.Equal(t, "spez", name)

	karma, err := u.LinkKarma(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, karma)
	require.Len(t, fake.requests, 2)
	assert.Equal(t, "t2_1w72", fake.requests[0].Params.Get("ids"))
}

func TestRedditorKeyBeforeNameResolved(t *testing.T) {
	fake := newFakeRequestor(t).
		on(http.MethodGet, "api/user_data_by_account_ids", map[string]any{"t2_aaa": map[string]any{"name": "Spez"}})
	r := newTestReddit(t, fake)

	u := r.RedditorFromFullname("t2_AAA")
	assert.Equal(t, "t2_aaa", u.Key())
	assert.Empty(t, fake.requests, "key does not resolve the name")
}

func TestRedditorListingsResolveNameFirst(t *testing.T) {
	fake := newFakeRequestor(t).
		on(http.MethodGet, "api/user_data_by_account_ids", map[string]any{"t2_aaa": map[string]any{"name": "spez"}}).
		on(http.MethodGet, "user/spez/comments/", listingOf("", commentThing("c1", "t3_abc", "t3_abc", nil))).
		on(http.MethodGet, "user/spez/submitted/", listingOf("", submissionThing("abc", nil)))
	r := newTestReddit(t, fake)
	ctx := context.Background()

	u := r.RedditorFromFullname("t2_aaa")
	gen := u.Comments(nil)
	assert.Empty(t, fake.requests, "nothing is requested before Next")

	comments, err := gen.Collect(ctx)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "c1", comments[0].ID())

	require.Len(t, fake.requests, 2)
	assert.Equal(t, "api/user_data_by_account_ids", fake.requests[0].Path)
	assert.Equal(t, "user/spez/comments/", fake.requests[1].Path)

	submissions, err := u.Submissions(nil).Collect(ctx)
	require.NoError(t, err)
	require.Len(t, submissions, 1)
	assert.Len(t, fake.calls(http.MethodGet, "api/user_data_by_account_ids"), 1, "the name is resolved once")
	assert.Len(t, fake.calls(http.MethodGet, "user/spez/submitted/"), 1)
}

func TestRedditorListingNameLookupFails(t *testing.T) {
	fake := newFakeRequestor(t).
		on(http.MethodGet, "api/user_data_by_account_ids", map[string]any{})
	r := newTestReddit(t, fake)

	_, err := r.RedditorFromFullname("t2_gone").Comments(nil).Next(context.Background())
	var missing *pkgerrs.MissingObjectError
	require.ErrorAs(t, err, &missing)
	assert.Len(t, fake.requests, 1)
}

func TestMarshalJSONDoesNotFetch(t *testing.T) {
	fake := newFakeRequestor(t)
	r := newTestReddit(t, fake)

	b, err := r.Subreddit("golang").MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"display_name":"golang"}`, string(b))
	assert.Empty(t, fake.requests)
}
