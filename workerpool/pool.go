package workerpool

import (
	"sync"
)

// Job is a unit of work submitted to a Pool.
type Job func() error

// Pool runs jobs on a fixed number of worker goroutines. Jobs queued when
// Stop is called are dropped; jobs already running are allowed to finish.
type Pool struct {
	mu      sync.Mutex
	ready   *sync.Cond
	drained *sync.Cond
	queue   []Job
	stopped bool

	wg sync.WaitGroup

	errMu sync.Mutex
	err   error
}

// New starts a pool with the provided number of workers.
func New(workers int) *Pool {
	p := &Pool{}
	p.ready = sync.NewCond(&p.mu)
	p.drained = sync.NewCond(&p.mu)
	for i := 0; i < workers; i++ {
		go p.work()
	}
	return p
}

// Add queues the provided jobs and returns immediately.
func (p *Pool) Add(jobs []Job) {
	p.wg.Add(len(jobs))
	p.mu.Lock()
	p.queue = append(p.queue, jobs...)
	p.mu.Unlock()
	p.ready.Broadcast()
}

// AddBlocking queues the provided jobs and blocks until the queue has
// drained, providing backpressure for callers submitting large batches.
func (p *Pool) AddBlocking(jobs []Job) {
	p.Add(jobs)
	p.mu.Lock()
	for len(p.queue) > 0 && !p.stopped {
		p.drained.Wait()
	}
	p.mu.Unlock()
}

// Wait blocks until all queued jobs have completed (or were dropped by
// Stop) and returns the first error any job returned.
func (p *Pool) Wait() error {
	p.wg.Wait()
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.err
}

// Stop shuts the pool down, dropping any jobs that have not started.
func (p *Pool) Stop() {
	p.mu.Lock()
	p.stopped = true
	dropped := len(p.queue)
	p.queue = nil
	p.mu.Unlock()
	for i := 0; i < dropped; i++ {
		p.wg.Done()
	}
	p.ready.Broadcast()
	p.drained.Broadcast()
}

func (p *Pool) work() {
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.stopped {
			p.ready.Wait()
		}
		if p.stopped {
			p.mu.Unlock()
			return
		}
		job := p.queue[0]
		p.queue = p.queue[1:]
		if len(p.queue) == 0 {
			p.drained.Broadcast()
		}
		p.mu.Unlock()

		if err := job(); err != nil {
			p.errMu.Lock()
			if p.err == nil {
				p.err = err
			}
			p.errMu.Unlock()
		}
		p.wg.Done()
	}
}
