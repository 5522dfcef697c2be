package execution

import (
	"sync"
	"sync/atomic"
	"time"
)

// workerPool is a bounded pool of goroutines reading from a fixed-size
// job queue, modeled on java.util.concurrent.ThreadPoolExecutor with a
// CallerRunsPolicy: coreSize goroutines run for the pool's lifetime; once
// the queue is full the pool grows toward maxSize by spawning overflow
// workers that exit after sitting idle for keepAlive; once at maxSize
// with a full queue, submit falls back to running the job on the
// caller's own goroutine.
type workerPool struct {
	jobs      chan func()
	maxSize   int32
	keepAlive time.Duration

	workerCount atomic.Int32
	wg          sync.WaitGroup
}

func newWorkerPool(cfg ThreadPoolConfig) *workerPool {
	coreSize := cfg.CoreSize
	if coreSize < 1 {
		coreSize = 1
	}
	maxSize := cfg.MaxSize
	if maxSize < coreSize {
		maxSize = coreSize
	}
	queueSize := cfg.QueueSize
	if queueSize < 0 {
		queueSize = 0
	}
	keepAlive := cfg.KeepAliveTime
	if keepAlive <= 0 {
		keepAlive = 60 * time.Second
	}

	p := &workerPool{
		jobs:      make(chan func(), queueSize),
		maxSize:   int32(maxSize),
		keepAlive: keepAlive,
	}
	p.workerCount.Store(int32(coreSize))
	for i := 0; i < coreSize; i++ {
		p.wg.Add(1)
		go p.coreWorker()
	}
	return p
}

// coreWorker runs for the pool's entire lifetime, exiting only once jobs
// is closed and drained.
func (p *workerPool) coreWorker() {
	defer p.wg.Done()
	for job := range p.jobs {
		job()
	}
}

// overflowWorker runs first immediately (it exists because the queue was
// full when submit needed a place to put first), then keeps servicing
// the queue until it sits idle for keepAlive, at which point it tears
// itself down and releases its slot back toward maxSize.
func (p *workerPool) overflowWorker(first func()) {
	defer func() {
		p.workerCount.Add(-1)
		p.wg.Done()
	}()

	first()

	timer := time.NewTimer(p.keepAlive)
	defer timer.Stop()
	for {
		select {
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			job()
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(p.keepAlive)
		case <-timer.C:
			return
		}
	}
}

// tryGrow claims one more slot toward maxSize, returning false if the
// pool is already at capacity.
func (p *workerPool) tryGrow() bool {
	for {
		cur := p.workerCount.Load()
		if cur >= p.maxSize {
			return false
		}
		if p.workerCount.CompareAndSwap(cur, cur+1) {
			return true
		}
	}
}

// submit enqueues job if the queue has room; otherwise it grows the pool
// toward maxSize to absorb it, and only runs it inline once the pool is
// already at maxSize with a full queue (caller-runs saturation policy).
func (p *workerPool) submit(job func()) {
	select {
	case p.jobs <- job:
		return
	default:
	}

	if p.tryGrow() {
		p.wg.Add(1)
		go p.overflowWorker(job)
		return
	}

	job()
}

// shutdown closes the job channel and waits up to grace for workers to
// drain, returning whether they all finished in time.
func (p *workerPool) shutdown(grace time.Duration) bool {
	close(p.jobs)
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(grace):
		return false
	}
}
