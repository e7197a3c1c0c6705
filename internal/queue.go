package internal

import "container/heap"

// PriorityQueue is a max-heap on an integer priority. Items with equal
// priority pop in insertion order.
type PriorityQueue[T any] struct {
	h   pqHeap[T]
	seq uint64
}

type pqItem[T any] struct {
	value    T
	priority int
	seq      uint64
}

type pqHeap[T any] []pqItem[T]

func (h pqHeap[T]) Len() int { return len(h) }

func (h pqHeap[T]) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h pqHeap[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *pqHeap[T]) Push(x any) { *h = append(*h, x.(pqItem[T])) }

func (h *pqHeap[T]) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Push adds value with the given priority.
func (q *PriorityQueue[T]) Push(value T, priority int) {
	heap.Push(&q.h, pqItem[T]{value: value, priority: priority, seq: q.seq})
	q.seq++
}

// Pop removes and returns the highest priority value.
func (q *PriorityQueue[T]) Pop() (T, bool) {
	if len(q.h) == 0 {
		var zero T
		return zero, false
	}
	item := heap.Pop(&q.h).(pqItem[T])
	return item.value, true
}

// Len returns the number of queued values.
func (q *PriorityQueue[T]) Len() int {
	return len(q.h)
}
