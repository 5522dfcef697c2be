package execution

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func waitGroup(t *testing.T, wg *sync.WaitGroup, timeout time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatal("timed out waiting for jobs to finish")
	}
}

func TestWorkerPoolRunsCoreSizeConcurrently(t *testing.T) {
	p := newWorkerPool(ThreadPoolConfig{CoreSize: 3, MaxSize: 3, QueueSize: 3})
	defer p.shutdown(time.Second)

	var wg sync.WaitGroup
	var running atomic.Int32
	var maxSeen atomic.Int32
	wg.Add(3)
	for i := 0; i < 3; i++ {
		p.submit(func() {
			defer wg.Done()
			n := running.Add(1)
			for {
				cur := maxSeen.Load()
				if n <= cur || maxSeen.CompareAndSwap(cur, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			running.Add(-1)
		})
	}
	waitGroup(t, &wg, time.Second)
	if maxSeen.Load() != 3 {
		t.Fatalf("expected 3 jobs running concurrently, saw %d", maxSeen.Load())
	}
}

func TestWorkerPoolGrowsPastCoreWhenQueueFull(t *testing.T) {
	// core=1, queue=1: the 3rd submit lands with the queue already holding
	// the 2nd job, so it must grow an overflow worker rather than block.
	p := newWorkerPool(ThreadPoolConfig{CoreSize: 1, MaxSize: 3, QueueSize: 1})
	defer p.shutdown(time.Second)

	block := make(chan struct{})
	started1 := make(chan struct{})
	started3 := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(3)
	p.submit(func() {
		defer wg.Done()
		close(started1)
		<-block
	})
	select {
	case <-started1: // the sole core worker is now busy, queue is empty
	case <-time.After(time.Second):
		t.Fatal("expected the 1st job to start")
	}

	p.submit(func() {
		defer wg.Done()
		<-block
	}) // fills the one queue slot; nothing runs it yet

	p.submit(func() {
		defer wg.Done()
		close(started3)
		<-block
	}) // queue full -> must grow an overflow worker to run this immediately

	select {
	case <-started3:
	case <-time.After(time.Second):
		t.Fatal("expected the 3rd job to run immediately via an overflow worker")
	}

	if got := p.workerCount.Load(); got != 2 {
		t.Fatalf("expected core+overflow = 2 workers, got %d", got)
	}

	close(block)
	waitGroup(t, &wg, time.Second)
}

func TestWorkerPoolCallerRunsAtMaxCapacity(t *testing.T) {
	p := newWorkerPool(ThreadPoolConfig{CoreSize: 1, MaxSize: 1, QueueSize: 1})
	defer p.shutdown(time.Second)

	block := make(chan struct{})
	started := make(chan struct{})
	p.submit(func() {
		close(started)
		<-block
	})
	select {
	case <-started: // core worker now occupied; queue is empty again
	case <-time.After(time.Second):
		t.Fatal("expected the 1st job to start")
	}

	p.submit(func() { <-block }) // fills the one queue slot

	ranInline := false
	callerDone := make(chan struct{})
	go func() {
		// queue full and already at maxSize -> must run inline
		p.submit(func() { ranInline = true })
		close(callerDone)
	}()

	select {
	case <-callerDone:
	case <-time.After(time.Second):
		t.Fatal("expected submit to run the job inline once at max capacity with a full queue")
	}
	if !ranInline {
		t.Fatal("expected the third job to run via caller-runs")
	}
	close(block)
}

func TestWorkerPoolOverflowWorkerExitsAfterKeepAlive(t *testing.T) {
	p := newWorkerPool(ThreadPoolConfig{CoreSize: 1, MaxSize: 2, QueueSize: 0, KeepAliveTime: 20 * time.Millisecond})
	defer p.shutdown(time.Second)

	block := make(chan struct{})
	started := make(chan struct{})
	p.submit(func() {
		close(started)
		<-block
	})
	select {
	case <-started: // core worker is now occupied for the whole test
	case <-time.After(time.Second):
		t.Fatal("expected the 1st job to start")
	}

	var wg sync.WaitGroup
	wg.Add(1)
	p.submit(func() { wg.Done() }) // must overflow-grow since the queue is full
	waitGroup(t, &wg, time.Second)

	if got := p.workerCount.Load(); got != 2 {
		t.Fatalf("expected 2 workers right after growing, got %d", got)
	}

	time.Sleep(5 * p.keepAlive)
	if got := p.workerCount.Load(); got != 1 {
		t.Fatalf("expected the idle overflow worker to tear down after keepAlive, got %d workers", got)
	}

	close(block)
}
