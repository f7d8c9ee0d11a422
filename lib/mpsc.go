// Lock-free implementation of MPSC queue (Multiple Producers Single Consumer)

package lib

import (
	"go.uber.org/atomic"
)

// QueueMPSC is an unbounded FIFO queue. Push is safe for any number of
// concurrent producers, Pop must be called by a single consumer at a time.
type QueueMPSC[T any] struct {
	head   atomic.Pointer[itemMPSC[T]]
	tail   atomic.Pointer[itemMPSC[T]]
	length atomic.Int64
}

type itemMPSC[T any] struct {
	value T
	next  atomic.Pointer[itemMPSC[T]]
}

func NewQueueMPSC[T any]() *QueueMPSC[T] {
	q := &QueueMPSC[T]{}
	stub := &itemMPSC[T]{}
	q.head.Store(stub)
	q.tail.Store(stub)
	return q
}

// Push appends value to the queue. The order of values pushed by one producer
// is preserved.
func (q *QueueMPSC[T]) Push(value T) {
	i := &itemMPSC[T]{value: value}
	q.length.Inc()
	prev := q.head.Swap(i)
	prev.next.Store(i)
}

// Pop removes the oldest value. Returns false if the queue is empty or the
// next item is still being linked by its producer.
func (q *QueueMPSC[T]) Pop() (T, bool) {
	var empty T
	tail := q.tail.Load()
	next := tail.next.Load()
	if next == nil {
		return empty, false
	}

	value := next.value
	next.value = empty // let the GC free the value
	q.tail.Store(next)
	q.length.Dec()
	return value, true
}

// Empty reports whether the consumer would see no item.
func (q *QueueMPSC[T]) Empty() bool {
	return q.tail.Load().next.Load() == nil
}

// Len returns the number of items in the queue
func (q *QueueMPSC[T]) Len() int64 {
	return q.length.Load()
}
