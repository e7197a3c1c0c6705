package graw

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/jamesprial/graw/internal"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/types"
)

// ModmailMessage is one message of a modmail conversation.
type ModmailMessage struct {
	ID           string
	Author       *Redditor
	Body         string
	BodyMarkdown string
	Date         string
	IsInternal   bool
}

// ModmailAction is a moderator action recorded in a conversation.
type ModmailAction struct {
	ID           string
	Author       *Redditor
	ActionTypeID int
	Date         string
}

// ModmailConversation is a new-modmail conversation. Attribute names are
// snake_case even though Reddit sends them in camelCase.
type ModmailConversation struct {
	base
}

func newModmailConversation(r *Reddit) *ModmailConversation {
	c := &ModmailConversation{}
	c.base = newBase(r, "ModmailConversation", types.KindModmailConversation, "id")
	c.fetcher = c.fetch
	c.rule = c.objectifyAttr
	return c
}

// newModmailConversationFromData builds a conversation from the
// {conversation, messages, modActions} response shape.
func newModmailConversationFromData(r *Reddit, data map[string]any) *ModmailConversation {
	c := newModmailConversation(r)
	c.load(modmailAttrs(data))
	c.fetched = true
	return c
}

// ModmailConversation returns a lazy conversation with the given id.
func (r *Reddit) ModmailConversation(id string) *ModmailConversation {
	c := newModmailConversation(r)
	c.attrs["id"] = id
	return c
}

func modmailAttrs(data map[string]any) map[string]any {
	conv := asMap(data["conversation"])
	messages := asMap(data["messages"])
	actions := asMap(data["modActions"])

	var orderedMessages, orderedActions []any
	for _, obj := range asSlice(conv["objIds"]) {
		ref := asMap(obj)
		id := asString(ref["id"])
		switch asString(ref["key"]) {
		case "messages":
			if m, ok := messages[id]; ok {
				orderedMessages = append(orderedMessages, m)
			}
		case "modActions":
			if a, ok := actions[id]; ok {
				orderedActions = append(orderedActions, a)
			}
		}
	}

	attrs := internal.SnakeCaseKeys(conv)
	attrs["messages"] = orderedMessages
	attrs["mod_actions"] = orderedActions
	if user := asMap(data["user"]); user != nil {
		attrs["user"] = internal.SnakeCaseKeys(user)
	}
	return attrs
}

func (c *ModmailConversation) objectifyAttr(name string, v any) any {
	switch name {
	case "messages":
		items, ok := v.([]any)
		if !ok {
			return v
		}
		out := make([]ModmailMessage, 0, len(items))
		for _, item := range items {
			m := internal.SnakeCaseKeys(asMap(item))
			out = append(out, ModmailMessage{
				ID:           asString(m["id"]),
				Author:       c.author(m["author"]),
				Body:         asString(m["body"]),
				BodyMarkdown: asString(m["body_markdown"]),
				Date:         asString(m["date"]),
				IsInternal:   asBool(m["is_internal"]),
			})
		}
		return out
	case "mod_actions":
		items, ok := v.([]any)
		if !ok {
			return v
		}
		out := make([]ModmailAction, 0, len(items))
		for _, item := range items {
			m := internal.SnakeCaseKeys(asMap(item))
			out = append(out, ModmailAction{
				ID:           asString(m["id"]),
				Author:       c.author(m["author"]),
				ActionTypeID: asInt(m["action_type_id"]),
				Date:         asString(m["date"]),
			})
		}
		return out
	case "owner":
		if m := asMap(v); m != nil {
			return c.reddit.Subreddit(asString(m["displayName"]))
		}
	case "participant":
		if m := asMap(v); m != nil {
			return c.author(m)
		}
	case "authors":
		items, ok := v.([]any)
		if !ok {
			return v
		}
		out := make([]*Redditor, 0, len(items))
		for _, item := range items {
			if u := c.author(item); u != nil {
				out = append(out, u)
			}
		}
		return out
	}
	return v
}

func (c *ModmailConversation) author(v any) *Redditor {
	name := asString(asMap(v)["name"])
	if name == "" {
		return nil
	}
	return c.reddit.Redditor(name)
}

func (c *ModmailConversation) fetch(ctx context.Context) (map[string]any, error) {
	conv, err := conversationResult(c.reddit.Get(ctx, c.path(""), nil))
	if err != nil {
		return nil, err
	}
	return conv.attrs, nil
}

func conversationResult(result any, err error) (*ModmailConversation, error) {
	if err != nil {
		return nil, err
	}
	conv, ok := result.(*ModmailConversation)
	if !ok {
		return nil, &pkgerrs.ParseError{Operation: "modmail", Message: "response is not a conversation"}
	}
	return conv, nil
}

func (c *ModmailConversation) path(action string) string {
	if action == "" {
		return internal.Endpoint("modmail_conversation", internal.Fields{"id": c.ID()})
	}
	return internal.Endpoint("modmail_"+action, internal.Fields{"id": c.ID()})
}

// ID returns the conversation id.
func (c *ModmailConversation) ID() string {
	return asString(c.attrs["id"])
}

// Subject returns the conversation subject.
func (c *ModmailConversation) Subject(ctx context.Context) (string, error) {
	return c.GetString(ctx, "subject")
}

// Messages returns the messages in conversation order.
func (c *ModmailConversation) Messages(ctx context.Context) ([]ModmailMessage, error) {
	v, err := c.Get(ctx, "messages")
	if err != nil {
		return nil, err
	}
	return entityAs[[]ModmailMessage](v), nil
}

// ModActions returns the moderator actions in conversation order.
func (c *ModmailConversation) ModActions(ctx context.Context) ([]ModmailAction, error) {
	v, err := c.Get(ctx, "mod_actions")
	if err != nil {
		return nil, err
	}
	return entityAs[[]ModmailAction](v), nil
}

// Reply sends a message in the conversation and returns it.
func (c *ModmailConversation) Reply(ctx context.Context, body string, authorHidden, internalNote bool) (*ModmailMessage, error) {
	if err := c.reddit.requireUser("modmail reply"); err != nil {
		return nil, err
	}
	if body == "" {
		return nil, &pkgerrs.InvalidInputError{Field: "body", Message: "reply body cannot be empty"}
	}
	data := url.Values{
		"body":           {body},
		"isAuthorHidden": {strconv.FormatBool(authorHidden)},
		"isInternal":     {strconv.FormatBool(internalNote)},
	}
	conv, err := conversationResult(c.reddit.Post(ctx, c.path(""), data, nil, nil))
	if err != nil {
		return nil, err
	}
	c.attrs = conv.attrs
	c.fetched = true

	messages := entityAs[[]ModmailMessage](c.attrs["messages"])
	if len(messages) == 0 {
		return nil, &pkgerrs.ParseError{Operation: "modmail reply", Message: "conversation holds no messages"}
	}
	return &messages[len(messages)-1], nil
}

// Archive archives the conversation.
func (c *ModmailConversation) Archive(ctx context.Context) error {
	return c.post(ctx, c.path("archive"), nil)
}

// Unarchive moves the conversation back to the inbox.
func (c *ModmailConversation) Unarchive(ctx context.Context) error {
	return c.post(ctx, c.path("unarchive"), nil)
}

// Read marks the conversation and any others as read.
func (c *ModmailConversation) Read(ctx context.Context, others ...*ModmailConversation) error {
	ids := []string{c.ID()}
	for _, o := range others {
		ids = append(ids, o.ID())
	}
	return c.post(ctx, internal.Endpoint("modmail_read", nil), url.Values{"conversationIds": {strings.Join(ids, ",")}})
}

func (c *ModmailConversation) post(ctx context.Context, path string, data url.Values) error {
	if err := c.reddit.requireUser("modmail"); err != nil {
		return err
	}
	_, err := c.reddit.Post(ctx, path, data, nil, nil)
	return err
}
