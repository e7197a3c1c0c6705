package graw

import (
	"strings"

	"github.com/jamesprial/graw/internal"
)

// CommentTree provides utility methods for working with the loaded comments
// of a forest. MoreComments placeholders are ignored.
type CommentTree struct {
	roots []*Comment
	tree  *internal.Tree[*Comment]
}

// NewCommentTree creates a new CommentTree over the comments of forest.
func NewCommentTree(forest *CommentForest) *CommentTree {
	var roots []*Comment
	if forest != nil {
		roots = forest.Comments()
	}
	return &CommentTree{roots: roots, tree: internal.NewTree(roots, replyComments)}
}

func replyComments(c *Comment) []*Comment {
	if c.replies == nil {
		return nil
	}
	return c.replies.Comments()
}

// Flatten returns every comment in depth-first order.
func (t *CommentTree) Flatten() []*Comment {
	return t.tree.Flatten()
}

// Filter returns the comments that match fn.
func (t *CommentTree) Filter(fn func(*Comment) bool) []*Comment {
	return t.tree.Filter(fn)
}

// Find returns the first comment that matches fn, or nil.
func (t *CommentTree) Find(fn func(*Comment) bool) *Comment {
	c, _ := t.tree.Find(fn)
	return c
}

// GetByID returns the comment with the given base-36 id, or nil.
func (t *CommentTree) GetByID(id string) *Comment {
	return t.Find(func(c *Comment) bool { return c.ID() == id })
}

// GetByAuthor returns the comments written by author.
func (t *CommentTree) GetByAuthor(author string) []*Comment {
	return t.Filter(func(c *Comment) bool {
		u, ok := c.attrs["author"].(*Redditor)
		return ok && u.Key() == strings.ToLower(author)
	})
}

// GetTopLevel returns the top-level comments.
func (t *CommentTree) GetTopLevel() []*Comment {
	return t.roots
}

// GetDepth returns the number of levels in the tree.
func (t *CommentTree) GetDepth() int {
	return t.tree.Depth()
}

// Count returns the number of comments.
func (t *CommentTree) Count() int {
	return t.tree.Count()
}

// Walk calls fn for every comment in depth-first order.
func (t *CommentTree) Walk(fn func(*Comment)) {
	t.tree.Walk(fn)
}
