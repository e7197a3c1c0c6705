package graw

import (
	"context"
	"net/url"
	"slices"
	"strings"

	"github.com/jamesprial/graw/internal"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

// inboxBatchSize is the number of fullnames read_message and unread_message accept at once.
const inboxBatchSize = 25

// Inbox is the current user's inbox. Every operation requires a user identity.
type Inbox struct {
	reddit *Reddit
}

// Inbox returns the current user's inbox.
func (r *Reddit) Inbox() *Inbox {
	return &Inbox{reddit: r}
}

func (i *Inbox) listing(endpoint string, opts *ListingOptions) *ListingGenerator[Entity] {
	if err := i.reddit.requireUser("inbox"); err != nil {
		return failedListing[Entity](err)
	}
	return newListing[Entity](i.reddit, internal.Endpoint(endpoint, nil), opts)
}

// All lists every inbox item: messages and comment replies.
func (i *Inbox) All(opts *ListingOptions) *ListingGenerator[Entity] {
	return i.listing("message_inbox", opts)
}

// Unread lists unread inbox items.
func (i *Inbox) Unread(opts *ListingOptions) *ListingGenerator[Entity] {
	return i.listing("message_unread", opts)
}

// Messages lists private messages.
func (i *Inbox) Messages(opts *ListingOptions) *ListingGenerator[Entity] {
	return i.listing("message_messages", opts)
}

// Sent lists messages the user sent.
func (i *Inbox) Sent(opts *ListingOptions) *ListingGenerator[Entity] {
	return i.listing("message_sent", opts)
}

// CommentReplies lists replies to the user's comments.
func (i *Inbox) CommentReplies(opts *ListingOptions) *ListingGenerator[Entity] {
	return i.listing("message_comments", opts)
}

// Message returns the message with the given id, with its replies loaded.
func (i *Inbox) Message(ctx context.Context, id string) (*Message, error) {
	if err := i.reddit.requireUser("inbox"); err != nil {
		return nil, err
	}
	result, err := i.reddit.Get(ctx, internal.Endpoint("message_messages", nil)+id, nil)
	if err != nil {
		return nil, err
	}
	listing, err := extractListing(result)
	if err != nil {
		return nil, err
	}
	if len(listing.Children) == 0 {
		return nil, &pkgerrs.MissingObjectError{Message: "message " + id + " does not exist"}
	}
	msg, ok := listing.Children[0].(*Message)
	if !ok {
		return nil, &pkgerrs.ParseError{Operation: "inbox message", Message: "response is not a message"}
	}
	if msg.ID() == id {
		return msg, nil
	}
	for _, reply := range msg.Replies() {
		if reply.ID() == id {
			return reply, nil
		}
	}
	return msg, nil
}

// Stream streams new unread items.
func (i *Inbox) Stream(opts *StreamOptions) *Stream[Entity] {
	return newStream(i.reddit, i.Unread, entityFullname, opts)
}

// MarkRead marks items as read, 25 per request.
func (i *Inbox) MarkRead(ctx context.Context, items ...Entity) error {
	return i.mark(ctx, "read_message", items)
}

// MarkUnread marks items as unread, 25 per request.
func (i *Inbox) MarkUnread(ctx context.Context, items ...Entity) error {
	return i.mark(ctx, "unread_message", items)
}

func (i *Inbox) mark(ctx context.Context, endpoint string, items []Entity) error {
	if err := i.reddit.requireUser(endpoint); err != nil {
		return err
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, entityFullname(item))
	}
	for chunk := range slices.Chunk(names, inboxBatchSize) {
		data := url.Values{"id": {strings.Join(chunk, ",")}}
		if _, err := i.reddit.Post(ctx, internal.Endpoint(endpoint, nil), data, nil, nil); err != nil {
			return err
		}
	}
	return nil
}

func entityFullname(e Entity) string {
	if f, ok := e.(interface{ Fullname() string }); ok {
		return f.Fullname()
	}
	return e.Key()
}
