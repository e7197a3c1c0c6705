package graw

import (
	"github.com/jamesprial/graw/internal"
	"github.com/jamesprial/graw/pkg/types"
)

// Unknown holds an object whose kind has no registered parser.
type Unknown struct {
	Kind string
	Data map[string]any
}

type parseFunc func(data map[string]any) any

// objectifier rebuilds typed entities from decoded JSON.
type objectifier struct {
	reddit  *Reddit
	parsers map[string]parseFunc
}

func newObjectifier(r *Reddit) *objectifier {
	o := &objectifier{reddit: r}
	o.parsers = map[string]parseFunc{}
	o.parsers[types.KindListing] = o.parseListing
	o.parsers[types.KindComment] = func(d map[string]any) any { return newCommentFromData(r, d) }
	o.parsers[types.KindRedditor] = func(d map[string]any) any { return newRedditorFromData(r, d) }
	o.parsers[types.KindSubmission] = func(d map[string]any) any { return newSubmissionFromData(r, d) }
	o.parsers[types.KindMessage] = func(d map[string]any) any { return newMessageFromData(r, d) }
	o.parsers[types.KindSubreddit] = func(d map[string]any) any { return newSubredditFromData(r, d) }
	o.parsers[types.KindMore] = func(d map[string]any) any { return newMoreComments(r, d) }
	o.parsers[types.KindLiveUpdateEvent] = func(d map[string]any) any { return newLiveThreadFromData(r, d) }
	o.parsers[types.KindLiveUpdate] = func(d map[string]any) any { return newLiveUpdateFromData(r, nil, d) }
	o.parsers[types.KindMultireddit] = func(d map[string]any) any { return newMultiredditFromData(r, d) }
	o.parsers[types.KindModAction] = func(d map[string]any) any { return newModActionFromData(r, d) }
	o.parsers[types.KindUserList] = o.parseUserList
	o.parsers[types.KindWikiPage] = func(d map[string]any) any { return newWikiPageFromData(r, nil, "", d) }
	return o
}

// objectify converts a response body. Error envelopes are returned as errors,
// and the {"json": {"data": ...}} wrapper of form posts is unwrapped.
func (o *objectifier) objectify(data any) (any, error) {
	if envelope := internal.ErrorEnvelope(data); envelope != nil {
		return nil, envelope
	}

	if m, ok := data.(map[string]any); ok {
		if inner, ok := m["json"].(map[string]any); ok {
			d, ok := inner["data"].(map[string]any)
			if !ok {
				return nil, nil
			}
			if things, ok := d["things"].([]any); ok {
				return o.value(things), nil
			}
			return o.value(d), nil
		}
	}

	return o.value(data), nil
}

func (o *objectifier) value(data any) any {
	switch v := data.(type) {
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = o.value(item)
		}
		return out
	case map[string]any:
		return o.dict(v)
	default:
		return data
	}
}

func (o *objectifier) dict(m map[string]any) any {
	if kind, ok := m["kind"].(string); ok {
		if data, ok := m["data"].(map[string]any); ok {
			if parse, ok := o.parsers[kind]; ok {
				return parse(data)
			}
			return &Unknown{Kind: kind, Data: data}
		}
		if isWidgetKind(kind) {
			return newWidget(o.reddit, m)
		}
	}

	switch {
	case hasKeys(m, "conversation", "messages"):
		return newModmailConversationFromData(o.reddit, m)
	case hasKeys(m, "mod_notes", "end_cursor"):
		return o.parseModNotes(m)
	case hasKeys(m, "user_note_data", "mod_action_data"):
		return newModNoteFromData(o.reddit, m)
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = o.value(v)
	}
	return out
}

func (o *objectifier) parseListing(data map[string]any) any {
	children := asSlice(data["children"])
	l := &Listing{
		Children: make([]any, 0, len(children)),
		After:    asString(data["after"]),
		Before:   asString(data["before"]),
	}
	for _, child := range children {
		l.Children = append(l.Children, o.value(child))
	}
	return l
}

// parseModNotes reads the mod notes page shape, whose cursor is end_cursor.
func (o *objectifier) parseModNotes(m map[string]any) any {
	notes := asSlice(m["mod_notes"])
	l := &Listing{Children: make([]any, 0, len(notes))}
	for _, note := range notes {
		l.Children = append(l.Children, o.value(note))
	}
	if asBool(m["has_next_page"]) {
		l.After = asString(m["end_cursor"])
	}
	return l
}

func (o *objectifier) parseUserList(data map[string]any) any {
	children := asSlice(data["children"])
	out := make([]*Redditor, 0, len(children))
	for _, child := range children {
		if m := asMap(child); m != nil {
			out = append(out, newRedditorFromData(o.reddit, m))
		}
	}
	return out
}

func hasKeys(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			return false
		}
	}
	return true
}
