package graw

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/jamesprial/graw/internal"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

// DefaultReplaceMoreLimit is the number of placeholders ReplaceMore expands
// when called with nil options or a zero Limit.
const DefaultReplaceMoreLimit = 32

// ExpandNone used as ReplaceMoreOptions.Limit removes every placeholder from
// the tree without fetching any of them.
const ExpandNone = -2

// ForestNode is a node of a comment forest: a *Comment or a *MoreComments.
type ForestNode interface {
	forestNode()
}

var (
	_ ForestNode = (*Comment)(nil)
	_ ForestNode = (*MoreComments)(nil)
)

// CommentForest is an ordered list of comments and MoreComments
// placeholders. A submission's top-level forest and every comment's replies
// are forests. Comments added to a forest are indexed by their submission.
type CommentForest struct {
	submission *Submission
	nodes      []ForestNode
	walked     bool
}

// ReplaceMoreOptions configures CommentForest.ReplaceMore.
type ReplaceMoreOptions struct {
	// Limit is the number of placeholders to expand. Zero means
	// DefaultReplaceMoreLimit, NoLimit expands all of them and ExpandNone
	// removes every placeholder without fetching.
	Limit int
	// Threshold is the smallest count a placeholder needs to be expanded.
	Threshold int
	// RemoveSkipped removes placeholders that were not expanded from the tree.
	RemoveSkipped bool
}

func newCommentForest(s *Submission, nodes []ForestNode) *CommentForest {
	f := &CommentForest{submission: s}
	for _, n := range nodes {
		f.add(n)
	}
	return f
}

func (f *CommentForest) add(n ForestNode) {
	if m, ok := n.(*MoreComments); ok {
		m.parent = f
	}
	f.nodes = append(f.nodes, n)
}

func (f *CommentForest) remove(n ForestNode) {
	if i := slices.Index(f.nodes, n); i >= 0 {
		f.nodes = slices.Delete(f.nodes, i, i+1)
	}
}

// setSubmission attaches the forest and everything below it to s.
func (f *CommentForest) setSubmission(s *Submission) {
	f.submission = s
	for _, n := range f.nodes {
		switch node := n.(type) {
		case *Comment:
			node.setSubmission(s)
		case *MoreComments:
			node.submission = s
		}
	}
}

// Len returns the number of top-level nodes.
func (f *CommentForest) Len() int {
	return len(f.nodes)
}

// Nodes returns the top-level nodes.
func (f *CommentForest) Nodes() []ForestNode {
	return slices.Clone(f.nodes)
}

// Comments returns the top-level comments, skipping placeholders.
func (f *CommentForest) Comments() []*Comment {
	out := make([]*Comment, 0, len(f.nodes))
	for _, n := range f.nodes {
		if c, ok := n.(*Comment); ok {
			out = append(out, c)
		}
	}
	return out
}

// List returns every node of the forest in depth-first pre-order,
// including placeholders that have not been expanded.
func (f *CommentForest) List() []ForestNode {
	return internal.NewTree(f.nodes, forestChildren).Flatten()
}

func (f *CommentForest) MarshalJSON() ([]byte, error) {
	if f.nodes == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(f.nodes)
}

func forestChildren(n ForestNode) []ForestNode {
	if c, ok := n.(*Comment); ok && c.replies != nil {
		return c.replies.nodes
	}
	return nil
}

func forestNodes(items []any) []ForestNode {
	out := make([]ForestNode, 0, len(items))
	for _, item := range items {
		if n, ok := item.(ForestNode); ok {
			out = append(out, n)
		}
	}
	return out
}

func gatherMore(nodes []ForestNode) []*MoreComments {
	var out []*MoreComments
	for _, n := range internal.NewTree(nodes, forestChildren).Flatten() {
		if m, ok := n.(*MoreComments); ok {
			out = append(out, m)
		}
	}
	return out
}

// ReplaceMore expands MoreComments placeholders, largest count first, and
// grafts the fetched comments into the tree. It returns the placeholders it
// skipped because of Limit or Threshold. Skipped placeholders stay in the
// tree unless RemoveSkipped is set. A nil opts expands up to
// DefaultReplaceMoreLimit placeholders.
//
// Calling ReplaceMore again on a forest it already fully expanded returns
// *errors.DuplicateReplaceError.
func (f *CommentForest) ReplaceMore(ctx context.Context, opts *ReplaceMoreOptions) ([]*MoreComments, error) {
	limit := DefaultReplaceMoreLimit
	if opts == nil {
		opts = &ReplaceMoreOptions{}
	}
	switch {
	case opts.Limit < ExpandNone:
		return nil, &pkgerrs.InvalidInputError{Field: "limit", Message: fmt.Sprintf("invalid replace more limit %d", opts.Limit)}
	case opts.Limit == ExpandNone:
		limit = 0
	case opts.Limit != 0:
		limit = opts.Limit
	}
	if f.submission == nil {
		return nil, &pkgerrs.StateError{Operation: "replace more", Message: "comment forest is not attached to a submission"}
	}
	if f.walked {
		return nil, &pkgerrs.DuplicateReplaceError{}
	}

	removeSkipped := opts.RemoveSkipped || opts.Limit == ExpandNone
	remaining := limit

	var queue internal.PriorityQueue[*MoreComments]
	for _, m := range gatherMore(f.nodes) {
		queue.Push(m, m.Count)
	}

	var skipped []*MoreComments
	for queue.Len() > 0 {
		item, _ := queue.Pop()
		if item.expanded {
			continue
		}
		if (limit != NoLimit && remaining <= 0) || item.Count < opts.Threshold {
			skipped = append(skipped, item)
			if removeSkipped {
				item.detach()
			}
			continue
		}

		nodes, err := item.Comments(ctx)
		if err != nil {
			return nil, err
		}
		remaining--

		for _, n := range nodes {
			if err := f.insert(n); err != nil {
				return nil, err
			}
		}
		item.detach()
		item.expanded = true

		for _, m := range gatherMore(nodes) {
			queue.Push(m, m.Count)
		}
	}

	if len(skipped) == 0 || removeSkipped {
		f.walked = true
	}
	return skipped, nil
}

// insert places a fetched node under its parent. Root comments and
// placeholders whose parent is unknown go to the submission's top level.
func (f *CommentForest) insert(n ForestNode) error {
	s := f.submission
	switch node := n.(type) {
	case *Comment:
		name := node.Fullname()
		if _, dup := s.commentsByID[name]; dup {
			return &pkgerrs.DuplicateReplaceError{Fullname: name}
		}
		target := s.comments
		if !node.IsRoot() {
			parent, ok := s.commentsByID[node.ParentID()]
			if !ok {
				return &pkgerrs.StateError{
					Operation: "insert comment",
					Message:   fmt.Sprintf("parent %s of %s is not in the forest", node.ParentID(), name),
				}
			}
			target = parent.Replies()
		}
		target.add(node)
		node.setSubmission(s)
	case *MoreComments:
		target := s.comments
		if parent, ok := s.commentsByID[node.ParentID]; ok {
			target = parent.Replies()
		}
		target.add(node)
		node.submission = s
	}
	return nil
}
