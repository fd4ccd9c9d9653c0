// Package worker provides a fixed-size worker pool with a bounded queue for
// running background tasks without blocking the caller.
package worker

import (
	"sync"
)

// Task is a unit of background work.
type Task func()

// Pool runs submitted tasks on a fixed number of goroutines. The queue is
// bounded; when it is full, Submit refuses the task instead of blocking.
type Pool struct {
	tasks chan Task
	wg    sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// NewPool starts workers goroutines consuming from a queue of queueSize
// tasks. Non-positive arguments are clamped to 1.
func NewPool(workers int, queueSize int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}

	p := &Pool{
		tasks: make(chan Task, queueSize),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.run()
	}
	return p
}

func (p *Pool) run() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// Submit enqueues the task for execution. It returns false without blocking
// when the queue is full or the pool is stopped.
func (p *Pool) Submit(task Task) bool {
	if task == nil {
		return false
	}

	// The lock is held across the send so Stop cannot close the channel
	// between the stopped check and the enqueue.
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return false
	}

	select {
	case p.tasks <- task:
		return true
	default:
		return false
	}
}

// Stop refuses further submissions, drains the queue, and waits for in-flight
// tasks to finish. It is safe to call more than once.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.tasks)
	}
	p.mu.Unlock()
	p.wg.Wait()
}
