package pool

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPoolProcessesAllItems(t *testing.T) {
	var processed int64
	p := New[int](4, func(item int) {
		atomic.AddInt64(&processed, 1)
	})
	for i := 0; i < 1000; i++ {
		p.Post(i)
	}

	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt64(&processed) < 1000 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := atomic.LoadInt64(&processed); got != 1000 {
		t.Fatalf("processed = %d, want 1000", got)
	}

	p.Stop()
	p.Wait()
}

func TestStopDrainsAlreadyQueuedItems(t *testing.T) {
	var processed int64
	release := make(chan struct{})
	p := New[int](1, func(item int) {
		<-release
		atomic.AddInt64(&processed, 1)
	})

	// The single worker is parked inside f on the first item; the rest
	// pile up in the queue behind it.
	for i := 0; i < 5; i++ {
		p.Post(i)
	}
	time.Sleep(20 * time.Millisecond)
	p.Stop()
	close(release)
	p.Wait()

	if got := atomic.LoadInt64(&processed); got != 5 {
		t.Fatalf("processed = %d, want 5 (Stop must not drop already-queued work)", got)
	}
}

func TestBoundedConcurrency(t *testing.T) {
	const nthreads = 4
	var active int64
	var maxActive int64
	release := make(chan struct{})

	p := New[int](nthreads, func(item int) {
		n := atomic.AddInt64(&active, 1)
		for {
			old := atomic.LoadInt64(&maxActive)
			if n <= old || atomic.CompareAndSwapInt64(&maxActive, old, n) {
				break
			}
		}
		<-release
		atomic.AddInt64(&active, -1)
	})

	for i := 0; i < nthreads*3; i++ {
		p.Post(i)
	}
	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt64(&active); got > nthreads {
		t.Fatalf("active = %d, want <= %d", got, nthreads)
	}
	close(release)

	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt64(&active) > 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := atomic.LoadInt64(&maxActive); got > nthreads {
		t.Fatalf("maxActive = %d, want <= %d", got, nthreads)
	}

	p.Stop()
	p.Wait()
}
