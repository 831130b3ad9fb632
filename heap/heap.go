// Package heap implements a generic double-ended priority queue: Pop
// returns the most-preferred element, PopLast returns the least-preferred
// one. It backs the ordered working set used during layered graph search,
// where the search loop needs fast access to both the closest unvisited
// candidate and the farthest kept result.
package heap

import "container/heap"

// Lesser is implemented by queue elements. Less(other) reports whether the
// receiver is more preferred than other, i.e. should be popped first.
type Lesser[T any] interface {
	Less(other T) bool
}

// Heap is a priority queue over T. The zero value is an empty, usable
// heap.
type Heap[T Lesser[T]] struct {
	items []T
}

// Len reports the number of elements in the heap.
func (h *Heap[T]) Len() int { return len(h.items) }

// Push inserts v into the heap.
func (h *Heap[T]) Push(v T) {
	heap.Push((*innerHeap[T])(h), v)
}

// Pop removes and returns the most-preferred element.
func (h *Heap[T]) Pop() T {
	return heap.Pop((*innerHeap[T])(h)).(T)
}

// Min returns, without removing, the most-preferred element.
func (h *Heap[T]) Min() T {
	return h.items[0]
}

// Max returns, without removing, the least-preferred element.
func (h *Heap[T]) Max() T {
	return h.items[h.maxIndex()]
}

// PopLast removes and returns the least-preferred element.
func (h *Heap[T]) PopLast() T {
	idx := h.maxIndex()
	return heap.Remove((*innerHeap[T])(h), idx).(T)
}

func (h *Heap[T]) maxIndex() int {
	worst := 0
	for i := 1; i < len(h.items); i++ {
		if h.items[worst].Less(h.items[i]) {
			worst = i
		}
	}
	return worst
}

// Slice returns a copy of the heap's elements in unspecified order.
func (h *Heap[T]) Slice() []T {
	out := make([]T, len(h.items))
	copy(out, h.items)
	return out
}

type innerHeap[T Lesser[T]] Heap[T]

func (h *innerHeap[T]) Len() int            { return len(h.items) }
func (h *innerHeap[T]) Less(i, j int) bool  { return h.items[i].Less(h.items[j]) }
func (h *innerHeap[T]) Swap(i, j int)       { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *innerHeap[T]) Push(x any)          { h.items = append(h.items, x.(T)) }
func (h *innerHeap[T]) Pop() any {
	n := len(h.items)
	v := h.items[n-1]
	h.items = h.items[:n-1]
	return v
}
