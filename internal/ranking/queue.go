package ranking

import "errors"

// ErrEmptyQueue is returned when dequeueing or peeking an empty queue,
// so HTTP handlers and callers can tell misuse apart from storage failures.
var ErrEmptyQueue = errors.New("priority queue is empty")

type entry[T any] struct {
	priority float64
	value    T
}

// PriorityQueue is an insertion-ordered priority queue: Dequeue always
// returns the highest-priority element, and elements with equal priority
// come out in the order they went in.
//
// Enqueue is an O(n) scan-and-shift, which is fine for the small result
// sets a single search produces.
type PriorityQueue[T any] struct {
	entries []entry[T]
}

// Enqueue inserts value at the position its priority dictates.
// Existing entries with equal priority keep their place ahead of it.
func (q *PriorityQueue[T]) Enqueue(priority float64, value T) {
	i := 0
	for i < len(q.entries) && q.entries[i].priority >= priority {
		i++
	}
	q.entries = append(q.entries, entry[T]{})
	copy(q.entries[i+1:], q.entries[i:])
	q.entries[i] = entry[T]{priority: priority, value: value}
}

// Dequeue removes and returns the highest-priority element.
func (q *PriorityQueue[T]) Dequeue() (T, error) {
	var zero T
	if q.IsEmpty() {
		return zero, ErrEmptyQueue
	}
	first := q.entries[0].value
	q.entries = q.entries[1:]
	return first, nil
}

// Peek returns the highest-priority element without removing it.
func (q *PriorityQueue[T]) Peek() (T, error) {
	var zero T
	if q.IsEmpty() {
		return zero, ErrEmptyQueue
	}
	return q.entries[0].value, nil
}

// IsEmpty checks whether the queue holds no elements.
func (q *PriorityQueue[T]) IsEmpty() bool {
	return len(q.entries) == 0
}

// Len returns the number of queued elements.
func (q *PriorityQueue[T]) Len() int {
	return len(q.entries)
}
