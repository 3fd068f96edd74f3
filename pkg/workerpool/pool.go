// Package workerpool bounds the goroutines that execute queued jobs.
//
// The queue manager feeds every fetched job through a Pool, so a burst of
// cheap dispatches can never fan out into unbounded goroutines. Submit
// applies backpressure by failing fast; SubmitWait blocks until a slot
// frees up.
package workerpool

import (
	"errors"
	"sync"

	"github.com/shashiranjanraj/bazaar/pkg/logger"
)

var (
	// ErrPoolFull means every worker is busy and the backlog is at capacity.
	ErrPoolFull = errors.New("workerpool: pool is full")
	// ErrPoolClosed means Shutdown has already been called.
	ErrPoolClosed = errors.New("workerpool: pool is closed")
)

// Pool runs submitted tasks on a fixed set of worker goroutines.
type Pool struct {
	backlog chan func()
	done    chan struct{}
	workers sync.WaitGroup
	closing sync.Once
}

// New starts a pool of size workers. The backlog holds twice that many
// pending tasks before Submit starts failing.
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		backlog: make(chan func(), size*2),
		done:    make(chan struct{}),
	}
	p.workers.Add(size)
	for i := 0; i < size; i++ {
		go p.drain()
	}
	return p
}

// Submit enqueues task without blocking, returning ErrPoolFull when the
// backlog is at capacity and ErrPoolClosed after Shutdown.
func (p *Pool) Submit(task func()) error {
	select {
	case <-p.done:
		return ErrPoolClosed
	default:
	}
	select {
	case p.backlog <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait blocks until the task is accepted or the pool closes.
func (p *Pool) SubmitWait(task func()) error {
	select {
	case <-p.done:
		return ErrPoolClosed
	case p.backlog <- task:
		return nil
	}
}

// Shutdown stops intake, runs the remaining backlog and waits for the
// workers to exit. Safe to call more than once.
func (p *Pool) Shutdown() {
	p.closing.Do(func() {
		close(p.done)
		close(p.backlog)
		p.workers.Wait()
	})
}

func (p *Pool) drain() {
	defer p.workers.Done()
	for task := range p.backlog {
		p.run(task)
	}
}

// run isolates a single task so a panic cannot take the worker down with it.
func (p *Pool) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("workerpool: task panicked", "panic", r)
		}
	}()
	task()
}
