// Package queue implements the staging FIFO between the run event
// handlers and the batch writers.
package queue

import "sync"

// Queue is a thread-safe FIFO. Handlers push rows as sequences finish;
// a background writer drains whole batches and requeues them when the
// flush fails.
type Queue[T any] struct {
	mu   sync.Mutex
	rows []T
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push appends rows at the tail.
func (q *Queue[T]) Push(rows ...T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rows = append(q.rows, rows...)
}

// Requeue puts a failed batch back at the head, ahead of anything
// pushed since it was drained, so flush order stays insert order.
func (q *Queue[T]) Requeue(rows []T) {
	if len(rows) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rows = append(rows, q.rows...)
}

// Drain returns every staged row and empties the queue. The returned
// slice belongs to the caller.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	rows := q.rows
	q.rows = nil
	return rows
}

// Empty reports whether the queue holds no rows.
func (q *Queue[T]) Empty() bool {
	return q.Len() == 0
}

// Len returns the number of staged rows.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.rows)
}
