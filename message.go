package graw

import (
	"context"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/types"
)

// Message is a private message.
type Message struct {
	base
}

func newMessageFromData(r *Reddit, data map[string]any) *Message {
	m := &Message{}
	m.base = newBase(r, "Message", types.KindMessage, "id")
	m.rule = m.objectifyAttr
	m.load(data)
	m.fetched = true
	return m
}

func (m *Message) objectifyAttr(name string, v any) any {
	switch name {
	case "author", "dest":
		return redditorAttr(m.reddit, v)
	case "subreddit":
		return subredditAttr(m.reddit, v)
	case "replies":
		if s, ok := v.(string); ok && s == "" {
			return []*Message(nil)
		}
		listing, ok := m.reddit.objector.value(v).(*Listing)
		if !ok {
			return v
		}
		out := make([]*Message, 0, len(listing.Children))
		for _, child := range listing.Children {
			if reply, ok := child.(*Message); ok {
				out = append(out, reply)
			}
		}
		return out
	}
	return v
}

// ID returns the base-36 id.
func (m *Message) ID() string {
	return asString(m.attrs["id"])
}

// Subject returns the subject line.
func (m *Message) Subject() string {
	return asString(m.attrs["subject"])
}

// Body returns the markdown body.
func (m *Message) Body() string {
	return asString(m.attrs["body"])
}

// Author returns the sender, or nil for system messages.
func (m *Message) Author() *Redditor {
	return entityAs[*Redditor](m.attrs["author"])
}

// Replies returns the replies loaded with the message.
func (m *Message) Replies() []*Message {
	return entityAs[[]*Message](m.attrs["replies"])
}

// Reply replies to the message and returns the new message.
func (m *Message) Reply(ctx context.Context, body string) (*Message, error) {
	reply, err := postReply(ctx, m.reddit, m.Fullname(), body)
	if err != nil {
		return nil, err
	}
	msg, ok := reply.(*Message)
	if !ok {
		return nil, &pkgerrs.ParseError{Operation: "reply", Message: "response is not a message"}
	}
	return msg, nil
}

// ModAction is an entry of a subreddit's moderation log.
type ModAction struct {
	base
}

func newModActionFromData(r *Reddit, data map[string]any) *ModAction {
	a := &ModAction{}
	a.base = newBase(r, "ModAction", types.KindModAction, "id")
	a.rule = func(name string, v any) any {
		if name == "mod" {
			return redditorAttr(r, v)
		}
		return v
	}
	a.load(data)
	a.fetched = true
	return a
}

// ID returns the log entry id.
func (a *ModAction) ID() string {
	return asString(a.attrs["id"])
}

// Mod returns the moderator who acted.
func (a *ModAction) Mod() *Redditor {
	return entityAs[*Redditor](a.attrs["mod"])
}

// Action returns the action name, e.g. removelink.
func (a *ModAction) Action() string {
	return asString(a.attrs["action"])
}

// TargetFullname returns the fullname of the affected item, if any.
func (a *ModAction) TargetFullname() string {
	return asString(a.attrs["target_fullname"])
}

// Details returns the action details.
func (a *ModAction) Details() string {
	return asString(a.attrs["details"])
}
