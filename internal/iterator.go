package internal

import (
	"context"
	"log/slog"
	"slices"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

// MaxPageSize is the largest page Reddit serves for a listing request.
const MaxPageSize = 100

// PageFunc fetches one page of at most limit items following the after
// cursor. It returns the items and the cursor for the next page.
type PageFunc[T any] func(ctx context.Context, after string, limit int) (items []T, next string, err error)

// Cursor pages through a cursor-paginated listing one item at a time.
// A negative limit drains the listing.
type Cursor[T any] struct {
	fetch     PageFunc[T]
	limit     int
	yielded   int
	buffer    []T
	bufferIdx int
	after     string
	exhausted bool
	err       error
	logger    *slog.Logger
}

// NewCursor creates a cursor that yields at most limit items.
func NewCursor[T any](fetch PageFunc[T], limit int, logger *slog.Logger) *Cursor[T] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cursor[T]{
		fetch:  fetch,
		limit:  limit,
		logger: logger,
	}
}

// HasNext returns true if another call to Next may produce an item.
func (c *Cursor[T]) HasNext() bool {
	if c.err != nil || c.limitReached() {
		return false
	}
	return c.bufferIdx < len(c.buffer) || !c.exhausted
}

// Next returns the next item, ErrNoMoreItems once the listing is drained,
// or the error of the request that failed. Errors are sticky.
func (c *Cursor[T]) Next(ctx context.Context) (T, error) {
	var zero T
	if c.err != nil {
		return zero, c.err
	}
	if c.limitReached() {
		return zero, pkgerrs.ErrNoMoreItems
	}

	if c.bufferIdx >= len(c.buffer) {
		if c.exhausted {
			return zero, pkgerrs.ErrNoMoreItems
		}
		if err := c.nextBatch(ctx); err != nil {
			c.err = err
			return zero, err
		}
		if len(c.buffer) == 0 {
			return zero, pkgerrs.ErrNoMoreItems
		}
	}

	item := c.buffer[c.bufferIdx]
	c.bufferIdx++
	c.yielded++
	return item, nil
}

// After returns the cursor sent with the most recent request.
func (c *Cursor[T]) After() string {
	return c.after
}

func (c *Cursor[T]) nextBatch(ctx context.Context) error {
	batch := MaxPageSize
	if c.limit >= 0 {
		batch = min(batch, c.limit-c.yielded)
	}

	items, next, err := c.fetch(ctx, c.after, batch)
	if err != nil {
		return err
	}

	c.logger.Debug("listing page", "after", c.after, "next", next, "count", len(items))

	c.buffer = items
	c.bufferIdx = 0
	if next == "" || next == c.after || len(items) == 0 {
		c.exhausted = true
	}
	c.after = next
	return nil
}

func (c *Cursor[T]) limitReached() bool {
	return c.limit >= 0 && c.yielded >= c.limit
}

// TreeIteratorOptions provides options for tree iteration.
type TreeIteratorOptions[T any] struct {
	DepthFirst bool
	FilterFunc func(T) bool
	// MaxDepth limits how many levels are visited. Zero means unlimited.
	MaxDepth int
}

// TreeIterator walks a forest of nodes depth-first or breadth-first.
type TreeIterator[T any] struct {
	stack      []treeEntry[T]
	depthFirst bool
	filterFunc func(T) bool
	maxDepth   int
	children   func(T) []T
}

type treeEntry[T any] struct {
	node  T
	depth int
}

// NewTreeIterator creates a new iterator over roots. children returns the
// direct descendants of a node.
func NewTreeIterator[T any](roots []T, children func(T) []T, opts *TreeIteratorOptions[T]) *TreeIterator[T] {
	if opts == nil {
		opts = &TreeIteratorOptions[T]{DepthFirst: true}
	}

	it := &TreeIterator[T]{
		stack:      make([]treeEntry[T], 0, len(roots)),
		depthFirst: opts.DepthFirst,
		filterFunc: opts.FilterFunc,
		maxDepth:   opts.MaxDepth,
		children:   children,
	}
	for _, r := range roots {
		it.stack = append(it.stack, treeEntry[T]{node: r})
	}

	if opts.DepthFirst {
		slices.Reverse(it.stack)
	}

	return it
}

// HasNext returns true if there are more nodes to visit. Filtered nodes
// still count until Next skips them.
func (it *TreeIterator[T]) HasNext() bool {
	return len(it.stack) > 0
}

// Next returns the next node and its depth.
func (it *TreeIterator[T]) Next() (T, int, error) {
	for len(it.stack) > 0 {
		var entry treeEntry[T]
		if it.depthFirst {
			entry = it.stack[len(it.stack)-1]
			it.stack = it.stack[:len(it.stack)-1]
		} else {
			entry = it.stack[0]
			it.stack = it.stack[1:]
		}

		if it.filterFunc != nil && !it.filterFunc(entry.node) {
			continue
		}

		if it.maxDepth == 0 || entry.depth+1 < it.maxDepth {
			kids := it.children(entry.node)
			next := make([]treeEntry[T], len(kids))
			for i, k := range kids {
				next[i] = treeEntry[T]{node: k, depth: entry.depth + 1}
			}
			if it.depthFirst {
				slices.Reverse(next)
			}
			it.stack = append(it.stack, next...)
		}

		return entry.node, entry.depth, nil
	}

	var zero T
	return zero, 0, pkgerrs.ErrNoMoreItems
}
