// Package queue holds the FIFO buffers combat events travel through between
// the tick goroutine and the storage worker.
package queue

import (
	"slices"
	"sync"
)

// Queue is a mutex-guarded FIFO. The tick goroutine pushes, one consumer
// takes batches from the front.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
	head  int // index of the oldest item
}

func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push appends items in order.
func (q *Queue[T]) Push(items ...T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
}

// Len returns how many items wait.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// PopN takes up to n items from the front, or nil when there are none.
// The backing array is compacted once more than half of it is consumed.
func (q *Queue[T]) PopN(n int) []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	n = min(n, len(q.items)-q.head)
	if n <= 0 {
		return nil
	}
	out := slices.Clone(q.items[q.head : q.head+n])
	clear(q.items[q.head : q.head+n])
	q.head += n

	switch {
	case q.head == len(q.items):
		q.reset()
	case q.head > len(q.items)/2:
		rest := copy(q.items, q.items[q.head:])
		clear(q.items[rest:])
		q.items = q.items[:rest]
		q.head = 0
	}
	return out
}

// Drain takes every waiting item, or nil when there are none.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head == len(q.items) {
		return nil
	}
	out := slices.Clone(q.items[q.head:])
	q.reset()
	return out
}

// Discard drops every waiting item and returns how many there were.
func (q *Queue[T]) Discard() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.items) - q.head
	q.reset()
	return n
}

func (q *Queue[T]) reset() {
	clear(q.items)
	q.items = q.items[:0]
	q.head = 0
}
