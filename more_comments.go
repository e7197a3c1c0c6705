package graw

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/jamesprial/graw/internal"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

// MoreComments stands in for comments Reddit left out of a tree. Count is
// the number of hidden descendants. A placeholder with a zero count and no
// children is a "continue this thread" link.
type MoreComments struct {
	reddit   *Reddit
	ID       string
	Name     string
	ParentID string
	Count    int
	Children []string

	submission *Submission
	parent     *CommentForest
	comments   []ForestNode
	expanded   bool
}

func newMoreComments(r *Reddit, data map[string]any) *MoreComments {
	return &MoreComments{
		reddit:   r,
		ID:       asString(data["id"]),
		Name:     asString(data["name"]),
		ParentID: asString(data["parent_id"]),
		Count:    asInt(data["count"]),
		Children: asStrings(data["children"]),
	}
}

func (m *MoreComments) forestNode() {}

func (m *MoreComments) String() string {
	children := m.Children
	if len(children) > 4 {
		children = append(children[:2:2], "...")
	}
	return "<MoreComments count=" + strconv.Itoa(m.Count) + ", children=[" + strings.Join(children, ", ") + "]>"
}

func (m *MoreComments) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"kind":      "more",
		"id":        m.ID,
		"parent_id": m.ParentID,
		"count":     m.Count,
		"children":  m.Children,
	})
}

// detach removes the placeholder from the forest it lives in.
func (m *MoreComments) detach() {
	if m.parent != nil {
		m.parent.remove(m)
		m.parent = nil
	}
}

// Comments fetches the comments the placeholder stands for. The result is
// cached and not inserted into any forest.
func (m *MoreComments) Comments(ctx context.Context) ([]ForestNode, error) {
	if m.comments != nil {
		return m.comments, nil
	}
	if m.submission == nil {
		return nil, &pkgerrs.StateError{Operation: "expand more comments", Message: "placeholder is not attached to a submission"}
	}

	if m.Count == 0 {
		return m.continueThread(ctx)
	}
	if len(m.Children) == 0 {
		return nil, &pkgerrs.StateError{Operation: "expand more comments", Message: "placeholder has no children"}
	}

	m.reddit.logger.Debug("expanding more comments", "count", m.Count, "children", len(m.Children))

	data := url.Values{
		"children": {strings.Join(m.Children, ",")},
		"link_id":  {m.submission.Fullname()},
		"sort":     {m.submission.commentSort},
	}
	result, err := m.reddit.Post(ctx, internal.Endpoint("morechildren", nil), data, nil, nil)
	if err != nil {
		return nil, err
	}

	m.comments = forestNodes(asSlice(result))
	return m.comments, nil
}

// continueThread loads the parent comment on its own page and returns its replies.
func (m *MoreComments) continueThread(ctx context.Context) ([]ForestNode, error) {
	_, parentID, _ := strings.Cut(m.ParentID, "_")
	path := internal.Endpoint("comment_thread", internal.Fields{"id": m.submission.ID(), "comment": parentID})
	params := url.Values{
		"limit": {strconv.Itoa(m.submission.commentLimit)},
		"sort":  {m.submission.commentSort},
	}

	m.reddit.logger.Debug("continuing comment thread", "parent", m.ParentID)

	result, err := m.reddit.Get(ctx, path, params)
	if err != nil {
		return nil, err
	}

	parts := asSlice(result)
	if len(parts) != 2 {
		return nil, &pkgerrs.ParseError{Operation: "continue thread", Message: "expected submission and comment listings"}
	}
	listing, ok := parts[1].(*Listing)
	if !ok || len(listing.Children) != 1 {
		return nil, &pkgerrs.ParseError{Operation: "continue thread", Message: "expected exactly one parent comment"}
	}
	parent, ok := listing.Children[0].(*Comment)
	if !ok {
		return nil, &pkgerrs.ParseError{Operation: "continue thread", Message: "parent is not a comment"}
	}

	m.comments = parent.Replies().Nodes()
	return m.comments, nil
}
