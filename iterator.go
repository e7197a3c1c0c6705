package graw

import (
	"iter"

	"github.com/jamesprial/graw/internal"
)

// TraversalOrder defines the order of tree traversal.
type TraversalOrder int

const (
	// DepthFirst traverses the tree depth-first (default).
	DepthFirst TraversalOrder = iota
	// BreadthFirst traverses the tree breadth-first.
	BreadthFirst
)

// TraversalOptions provides options for comment tree traversal.
type TraversalOptions struct {
	MaxDepth   int                   // Maximum depth to traverse (0 = unlimited)
	MinScore   int                   // Minimum score for comments to include
	FilterFunc func(*Comment) bool   // Custom filter function
	Order      TraversalOrder        // Order of traversal
	SkipMore   bool                  // Leave out MoreComments placeholders
	Visit      func(ForestNode, int) // Called for every yielded node with its depth
}

// CommentIterator walks the nodes of a comment forest. A comment rejected by
// MinScore or FilterFunc is skipped together with its replies.
//
//	comments, _ := submission.Comments(ctx)
//	it := graw.NewCommentIterator(comments, &graw.TraversalOptions{Order: graw.BreadthFirst})
//	for it.HasNext() {
//		node, depth, err := it.Next()
//		...
//	}
type CommentIterator struct {
	it      *internal.TreeIterator[ForestNode]
	options *TraversalOptions
}

// NewCommentIterator creates a new iterator over forest. It reads the
// forest as it is; placeholders are not expanded.
func NewCommentIterator(forest *CommentForest, opts *TraversalOptions) *CommentIterator {
	if opts == nil {
		opts = &TraversalOptions{Order: DepthFirst}
	}

	var roots []ForestNode
	if forest != nil {
		roots = forest.nodes
	}

	return &CommentIterator{
		it: internal.NewTreeIterator(roots, forestChildren, &internal.TreeIteratorOptions[ForestNode]{
			DepthFirst: opts.Order == DepthFirst,
			FilterFunc: opts.accepts,
			MaxDepth:   opts.MaxDepth,
		}),
		options: opts,
	}
}

func (o *TraversalOptions) accepts(n ForestNode) bool {
	c, ok := n.(*Comment)
	if !ok {
		return !o.SkipMore
	}
	if o.MinScore > 0 && asInt(c.attrs["score"]) < o.MinScore {
		return false
	}
	return o.FilterFunc == nil || o.FilterFunc(c)
}

// HasNext returns true if there may be more nodes to visit. Nodes that the
// filters reject are only discovered by Next, which then returns
// errors.ErrNoMoreItems.
func (it *CommentIterator) HasNext() bool {
	return it.it.HasNext()
}

// Next returns the next node and its depth, where top-level nodes have depth 0.
func (it *CommentIterator) Next() (ForestNode, int, error) {
	node, depth, err := it.it.Next()
	if err == nil && it.options.Visit != nil {
		it.options.Visit(node, depth)
	}
	return node, depth, err
}

// All returns an iterator over the remaining nodes and their depths.
func (it *CommentIterator) All() iter.Seq2[ForestNode, int] {
	return func(yield func(ForestNode, int) bool) {
		for it.HasNext() {
			node, depth, err := it.Next()
			if err != nil || !yield(node, depth) {
				return
			}
		}
	}
}
