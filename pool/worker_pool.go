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

// Package pool provides a fixed-size worker pool draining a single
// shared input queue, used by listener.Listener to bound the number of
// concurrently active client handler loops.
package pool

import (
	"sync"

	"github.com/jfawcett/gocomm/queue"
)

// workItem wraps T with an internal poison-pill marker, so Stop can wake
// every worker parked in a blocking Dequeue without overloading some
// value of T (e.g. nil) as a sentinel the caller has to know about.
type workItem[T any] struct {
	value T
	stop  bool
}

// WorkerPool runs a fixed number of goroutines, each calling f once per
// item pulled off a shared input queue. Items already queued when Stop
// is called are still delivered to f in FIFO order — Stop only stops
// new work from being accepted once the backlog (plus whatever each
// worker is already mid-processing) drains.
type WorkerPool[T any] struct {
	in      *queue.BlockingQueue[workItem[T]]
	f       func(item T)
	nt      int
	workers sync.WaitGroup
}

// New constructs a WorkerPool with nt workers, each running f on items
// pulled from the pool's input queue, and starts all of them
// immediately.
func New[T any](nt int, f func(item T)) *WorkerPool[T] {
	p := &WorkerPool[T]{
		in: queue.New[workItem[T]](),
		f:  f,
		nt: nt,
	}
	p.workers.Add(nt)
	for i := 0; i < nt; i++ {
		go p.loop()
	}
	return p
}

func (p *WorkerPool[T]) loop() {
	defer p.workers.Done()
	for {
		item := p.in.Dequeue()
		if item.stop {
			return
		}
		p.f(item.value)
	}
}

// Post enqueues item for some worker to process. Non-blocking.
func (p *WorkerPool[T]) Post(item T) {
	p.in.Enqueue(workItem[T]{value: item})
}

// Stop enqueues one poison pill per worker so each, after finishing
// whatever real work is already ahead of it in the queue (including
// whatever it's mid-processing), exits instead of blocking for more
// work. It does not block; call Wait to join every worker.
func (p *WorkerPool[T]) Stop() {
	for i := 0; i < p.nt; i++ {
		p.in.Enqueue(workItem[T]{stop: true})
	}
}

// Wait blocks until every worker goroutine has returned.
func (p *WorkerPool[T]) Wait() {
	p.workers.Wait()
}
