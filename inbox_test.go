package graw

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

func messageThing(id string, replies any) map[string]any {
	if replies == nil {
		replies = ""
	}
	return thing("t4", map[string]any{
		"id":      id,
		"name":    "t4_" + id,
		"subject": "subject " + id,
		"body":    "body " + id,
		"author":  "sender",
		"dest":    "me",
		"replies": replies,
	})
}

func TestInboxListsMixedItems(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodGet, "message/inbox/", listingOf("",
		messageThing("m1", nil),
		commentThing("c1", "t3_a", "t3_a", nil),
	))
	r := newTestReddit(t, fake)

	items, err := r.Inbox().All(nil).Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	msg, ok := items[0].(*Message)
	require.True(t, ok)
	assert.Equal(t, "subject m1", msg.Subject())
	assert.Equal(t, "sender", msg.Author().Key())
	assert.Empty(t, msg.Replies())
	assert.IsType(t, &Comment{}, items[1])
}

func TestInboxRequiresUser(t *testing.T) {
	fake := newFakeRequestor(t)
	fake.readOnly = true
	r := newTestReddit(t, fake)

	_, err := r.Inbox().Unread(nil).Next(context.Background())
	var roErr *pkgerrs.ReadOnlyError
	assert.ErrorAs(t, err, &roErr)
	assert.Empty(t, fake.requests)
}

func TestInboxMessageFindsReply(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodGet, "message/messages/r2", listingOf("",
		messageThing("root", listingOf("", messageThing("r1", nil), messageThing("r2", nil))),
	))
	r := newTestReddit(t, fake)

	msg, err := r.Inbox().Message(context.Background(), "r2")
	require.NoError(t, err)
	assert.Equal(t, "r2", msg.ID())
	assert.Equal(t, "body r2", msg.Body())
}

func TestInboxMarkReadBatches(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodPost, "api/read_message/", map[string]any{})
	r := newTestReddit(t, fake)

	items := make([]Entity, 30)
	for i := range items {
		items[i] = newMessageFromData(r, map[string]any{"id": fmt.Sprintf("m%d", i)})
	}
	require.NoError(t, r.Inbox().MarkRead(context.Background(), items...))

	calls := fake.calls(http.MethodPost, "api/read_message/")
	require.Len(t, calls, 2)
	first := strings.Split(calls[0].Data.Get("id"), ",")
	assert.Len(t, first, inboxBatchSize)
	assert.Equal(t, "t4_m0", first[0])
	assert.Equal(t, "t4_m25,t4_m26,t4_m27,t4_m28,t4_m29", calls[1].Data.Get("id"))
}

func TestMessageReply(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodPost, "api/comment/", map[string]any{"json": map[string]any{
		"errors": []any{},
		"data":   map[string]any{"things": []any{messageThing("m2", nil)}},
	}})
	r := newTestReddit(t, fake)

	parent := newMessageFromData(r, map[string]any{"id": "m1"})
	reply, err := parent.Reply(context.Background(), "thanks")
	require.NoError(t, err)
	assert.Equal(t, "m2", reply.ID())
	assert.Equal(t, "t4_m1", fake.requests[0].Data.Get("thing_id"))
}

func TestRedditorMessage(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodPost, "api/compose/", map[string]any{})
	r := newTestReddit(t, fake)
	ctx := context.Background()

	require.NoError(t, r.Redditor("spez").Message(ctx, "hi", "hello there"))
	data := fake.requests[0].Data
	assert.Equal(t, "spez", data.Get("to"))
	assert.Equal(t, "hi", data.Get("subject"))
	assert.Equal(t, "hello there", data.Get("text"))

	err := r.Redditor("spez").Message(ctx, "", "body")
	var inputErr *pkgerrs.InvalidInputError
	assert.ErrorAs(t, err, &inputErr)
}

func TestRedditorMessageRejectsInvalidName(t *testing.T) {
	fake := newFakeRequestor(t)
	r := newTestReddit(t, fake)

	err := r.Redditor("../api/v1/me").Message(context.Background(), "hi", "body")
	var inputErr *pkgerrs.InvalidInputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "user", inputErr.Field)
	assert.Empty(t, fake.requests)
}

func TestRedditorStreamSubmissions(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodGet, "user/spez/submitted/", listingOf("",
		submissionThing("b", nil), submissionThing("a", nil),
	))
	r := newTestReddit(t, fake)

	s := r.Redditor("spez").Stream().Submissions(nil)
	s.sleep = noSleep
	ctx := context.Background()

	first, err := s.Next(ctx)
	require.NoError(t, err)
	second, err := s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", first.ID())
	assert.Equal(t, "b", second.ID())
}
