package graw

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

const collectionID = "3aa31024-6b6a-4d43-9b09-5e3ff3b2a9b4"

func TestCollectionRequiresUUID(t *testing.T) {
	r := newTestReddit(t, newFakeRequestor(t))

	_, err := r.Collection("not-a-uuid")
	var inputErr *pkgerrs.InvalidInputError
	assert.ErrorAs(t, err, &inputErr)

	c, err := r.Collection("3AA31024-6B6A-4D43-9B09-5E3FF3B2A9B4")
	require.NoError(t, err)
	assert.Equal(t, collectionID, c.ID())
}

func TestCollectionFromPermalink(t *testing.T) {
	r := newTestReddit(t, newFakeRequestor(t))

	c, err := r.CollectionFromPermalink("https://www.reddit.com/r/test/collection/" + collectionID)
	require.NoError(t, err)
	assert.Equal(t, collectionID, c.ID())

	_, err = r.CollectionFromPermalink("https://www.reddit.com/r/test/collection/")
	var urlErr *pkgerrs.InvalidURLError
	assert.ErrorAs(t, err, &urlErr)
}

func TestCollectionFetch(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodGet, "api/v1/collections/collection", map[string]any{
		"collection_id": collectionID,
		"title":         "Best of",
		"author_name":   "curator",
		"sorted_links":  listingOf("", submissionThing("a", nil), submissionThing("b", nil)),
	})
	r := newTestReddit(t, fake)
	ctx := context.Background()

	c, err := r.Collection(collectionID)
	require.NoError(t, err)
	subs, err := c.Submissions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "b", subs[1].ID())

	author, err := c.Author(ctx)
	require.NoError(t, err)
	assert.Equal(t, "curator", author.Key())

	params := fake.requests[0].Params
	assert.Equal(t, collectionID, params.Get("collection_id"))
	assert.Equal(t, "true", params.Get("include_links"))
	assert.Len(t, fake.requests, 1)
}

func TestCollectionMissing(t *testing.T) {
	r := newTestReddit(t, newFakeRequestor(t))

	c, err := r.Collection(collectionID)
	require.NoError(t, err)
	_, err = c.Title(context.Background())
	var missing *pkgerrs.MissingObjectError
	assert.ErrorAs(t, err, &missing)
}

func TestCollectionFollow(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodPost, "api/v1/collections/follow_collection", map[string]any{})
	r := newTestReddit(t, fake)
	ctx := context.Background()

	c, err := r.Collection(collectionID)
	require.NoError(t, err)
	require.NoError(t, c.Follow(ctx))
	require.NoError(t, c.Unfollow(ctx))

	calls := fake.calls(http.MethodPost, "api/v1/collections/follow_collection")
	require.Len(t, calls, 2)
	assert.Equal(t, "true", calls[0].Data.Get("follow"))
	assert.Equal(t, "false", calls[1].Data.Get("follow"))
}
