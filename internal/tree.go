package internal

// Tree provides utility methods for working with a forest of nodes whose
// children are produced by a function.
type Tree[T any] struct {
	Roots    []T
	children func(T) []T
}

// NewTree creates a new Tree over roots.
func NewTree[T any](roots []T, children func(T) []T) *Tree[T] {
	return &Tree[T]{Roots: roots, children: children}
}

// Flatten returns all nodes in depth-first pre-order.
func (t *Tree[T]) Flatten() []T {
	var result []T
	t.Walk(func(n T) {
		result = append(result, n)
	})
	return result
}

// Filter returns nodes that match the given filter function.
func (t *Tree[T]) Filter(filterFunc func(T) bool) []T {
	var result []T
	t.Walk(func(n T) {
		if filterFunc(n) {
			result = append(result, n)
		}
	})
	return result
}

// Find returns the first node in pre-order that satisfies condition.
func (t *Tree[T]) Find(condition func(T) bool) (T, bool) {
	return t.findRecursive(t.Roots, condition)
}

func (t *Tree[T]) findRecursive(nodes []T, condition func(T) bool) (T, bool) {
	for _, n := range nodes {
		if condition(n) {
			return n, true
		}
		if found, ok := t.findRecursive(t.children(n), condition); ok {
			return found, true
		}
	}
	var zero T
	return zero, false
}

// Depth returns the number of levels in the tree.
func (t *Tree[T]) Depth() int {
	return t.depthRecursive(t.Roots, 0)
}

func (t *Tree[T]) depthRecursive(nodes []T, currentDepth int) int {
	if len(nodes) == 0 {
		return currentDepth
	}

	maxDepth := currentDepth + 1
	for _, n := range nodes {
		if d := t.depthRecursive(t.children(n), currentDepth+1); d > maxDepth {
			maxDepth = d
		}
	}
	return maxDepth
}

// Count returns the total number of nodes.
func (t *Tree[T]) Count() int {
	count := 0
	t.Walk(func(T) { count++ })
	return count
}

// Walk calls fn for every node in depth-first pre-order.
func (t *Tree[T]) Walk(fn func(T)) {
	t.walkRecursive(t.Roots, fn)
}

func (t *Tree[T]) walkRecursive(nodes []T, fn func(T)) {
	for _, n := range nodes {
		fn(n)
		t.walkRecursive(t.children(n), fn)
	}
}
