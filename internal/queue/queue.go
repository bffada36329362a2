// Package queue provides the unbounded hand-off between the harvester and the
// submission driver.
package queue

import (
	"context"
	"iter"
	"sync"
)

// Queue is an unbounded FIFO. Publish never blocks; readers block until an
// item arrives or the queue has been completed and drained.
type Queue[T any] struct {
	mu        sync.Mutex
	items     []T
	completed bool
	// ready is closed and replaced whenever items are added or the queue completes.
	ready chan struct{}
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{ready: make(chan struct{})}
}

// Publish appends item. Publishing after Complete is a programming error and panics.
func (q *Queue[T]) Publish(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.completed {
		panic("queue: publish after complete")
	}

	q.items = append(q.items, item)
	q.wakeLocked()
}

// Complete signals that no more items will be published. Safe to call more than once.
func (q *Queue[T]) Complete() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.completed {
		return
	}

	q.completed = true
	q.wakeLocked()
}

// Completed reports whether Complete has been called.
func (q *Queue[T]) Completed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.completed
}

// Len returns the number of items waiting to be read.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

// Next returns the oldest item. It blocks while the queue is empty and not
// completed. ok is false once the queue is completed and empty, or when ctx is done.
func (q *Queue[T]) Next(ctx context.Context) (T, bool) {
	for {
		if ctx.Err() != nil {
			var zero T
			return zero, false
		}

		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			var zero T
			q.items[0] = zero
			q.items = q.items[1:]
			q.mu.Unlock()

			return item, true
		}
		if q.completed {
			q.mu.Unlock()

			var zero T
			return zero, false
		}
		ready := q.ready
		q.mu.Unlock()

		select {
		case <-ready:
		case <-ctx.Done():
			var zero T
			return zero, false
		}
	}
}

// Drain yields items in publish order until the queue is completed and empty or ctx is done.
func (q *Queue[T]) Drain(ctx context.Context) iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			item, ok := q.Next(ctx)
			if !ok || !yield(item) {
				return
			}
		}
	}
}

func (q *Queue[T]) wakeLocked() {
	close(q.ready)
	q.ready = make(chan struct{})
}
