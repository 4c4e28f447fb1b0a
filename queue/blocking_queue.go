// The MIT License (MIT)
//
// Copyright (c) 2024 gocomm contributors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package queue provides the single intra-process hand-off primitive used
// throughout gocomm: an unbounded, blocking FIFO.
package queue

import "sync"

// BlockingQueue is an unbounded FIFO safe for multiple producers and
// multiple consumers. Enqueue never blocks; Dequeue blocks while the
// queue is empty. There is no capacity bound, no priority, and no peek.
type BlockingQueue[T any] struct {
	mu    sync.Mutex
	cond  *sync.Cond
	items []T
}

// New returns an empty BlockingQueue.
func New[T any]() *BlockingQueue[T] {
	q := &BlockingQueue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends item and wakes one blocked Dequeue, if any.
func (q *BlockingQueue[T]) Enqueue(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
	q.cond.Signal()
}

// Dequeue blocks until an item is available, then returns it in FIFO
// order.
func (q *BlockingQueue[T]) Dequeue() T {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 {
		q.cond.Wait()
	}
	item := q.items[0]
	var zero T
	q.items[0] = zero // drop the reference so the dequeued item can be garbage-collected
	q.items = q.items[1:]
	return item
}

// Len is a best-effort, instantaneous non-empty count: valid the moment
// it is read, stale the instant it returns.
func (q *BlockingQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
