package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind prefixes Reddit emits to discriminate objects.
const (
	KindComment             = "t1"
	KindRedditor            = "t2"
	KindSubmission          = "t3"
	KindMessage             = "t4"
	KindSubreddit           = "t5"
	KindAward               = "t6"
	KindListing             = "Listing"
	KindMore                = "more"
	KindLiveUpdate          = "LiveUpdate"
	KindLiveUpdateEvent     = "LiveUpdateEvent"
	KindMultireddit         = "LabeledMulti"
	KindModAction           = "modaction"
	KindModmailConversation = "ModmailConversation"
	KindUserList            = "UserList"
	KindWikiPage            = "wikipage"
)

// Fullname is a kind-prefixed identifier such as "t3_abc123".
type Fullname struct {
	Kind string
	ID   string
}

// String formats the fullname as "<kind>_<id>".
func (f Fullname) String() string {
	return f.Kind + "_" + f.ID
}

// MakeFullname joins a kind and an id.
func MakeFullname(kind, id string) string {
	return kind + "_" + id
}

// ParseFullname splits a fullname at its first underscore.
func ParseFullname(s string) (Fullname, error) {
	kind, id, ok := strings.Cut(s, "_")
	if !ok || kind == "" || id == "" {
		return Fullname{}, fmt.Errorf("invalid fullname %q", s)
	}
	return Fullname{Kind: kind, ID: id}, nil
}

// Edited represents a field that can be a boolean or a timestamp.
// If IsEdited is true and Timestamp is 0, it was an old edit marked as `true`.
// If IsEdited is true and Timestamp is non-zero, it's a modern edit with a timestamp.
// If IsEdited is false, the item was not edited.
type Edited struct {
	IsEdited  bool
	Timestamp float64
}

// UnmarshalJSON implements json.Unmarshaler to handle mixed types for the "edited" field.
func (e *Edited) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	edited, ok := editedFrom(v)
	if !ok {
		return fmt.Errorf("unrecognized type for 'edited' field: %s", string(data))
	}
	*e = edited
	return nil
}

// EditedFromValue converts a decoded JSON value into an Edited.
// Unrecognized values read as not edited.
func EditedFromValue(v any) Edited {
	e, _ := editedFrom(v)
	return e
}

func editedFrom(v any) (Edited, bool) {
	switch val := v.(type) {
	case nil:
		return Edited{}, true
	case bool:
		return Edited{IsEdited: val}, true
	case float64:
		return Edited{IsEdited: true, Timestamp: val}, true
	default:
		return Edited{}, false
	}
}

// Comment sort orders accepted by the comments endpoints.
const (
	SortConfidence    = "confidence"
	SortBest          = "best"
	SortTop           = "top"
	SortNew           = "new"
	SortControversial = "controversial"
	SortOld           = "old"
	SortRandom        = "random"
	SortQA            = "qa"
	SortLive          = "live"
)

// Time filters accepted by top and controversial listings.
const (
	TimeAll   = "all"
	TimeHour  = "hour"
	TimeDay   = "day"
	TimeWeek  = "week"
	TimeMonth = "month"
	TimeYear  = "year"
)

var commentSorts = map[string]bool{
	SortConfidence: true, SortBest: true, SortTop: true, SortNew: true,
	SortControversial: true, SortOld: true, SortRandom: true, SortQA: true, SortLive: true,
}

var timeFilters = map[string]bool{
	TimeAll: true, TimeHour: true, TimeDay: true, TimeWeek: true, TimeMonth: true, TimeYear: true,
}

// IsCommentSort reports whether s names a comment sort.
func IsCommentSort(s string) bool {
	return commentSorts[s]
}

// IsTimeFilter reports whether s names a time filter.
func IsTimeFilter(s string) bool {
	return timeFilters[s]
}
