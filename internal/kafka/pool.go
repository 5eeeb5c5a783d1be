package kafka

import (
	"context"
	"sync"
	"sync/atomic"
)

// Pool runs submitted jobs on a fixed set of goroutines. The jobs channel is
// never closed, so a Submit racing with Close cannot panic.
type Pool struct {
	jobs    chan func()
	wg      sync.WaitGroup
	closed  atomic.Bool
	closeCh chan struct{}
}

func NewPool(n int) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{
		jobs:    make(chan func(), n*2),
		closeCh: make(chan struct{}),
	}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case f := <-p.jobs:
			if f != nil {
				f()
			}
		case <-p.closeCh:
			return
		}
	}
}

// Submit queues f and reports whether it was accepted. It gives up when the
// pool is closed or ctx is done.
func (p *Pool) Submit(ctx context.Context, f func()) bool {
	if p.closed.Load() {
		return false
	}
	select {
	case p.jobs <- f:
		return true
	case <-p.closeCh:
		return false
	case <-ctx.Done():
		return false
	}
}

func (p *Pool) Close() {
	if p.closed.Swap(true) {
		return
	}
	close(p.closeCh)
}

func (p *Pool) Wait() {
	p.wg.Wait()
}
