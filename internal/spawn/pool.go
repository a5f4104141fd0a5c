package spawn

import (
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Pool is the production Spawn implementation: a pool of goroutines bounded
// to size concurrent, backed by errgroup.Group's concurrency limiting, in
// the same coordinator-owns-state-workers-pull-work spirit as the
// dependency-aware worker pool this package is modelled on — simplified
// here since a Store's work items are independent closures, not a DAG of
// interdependent jobs needing a ready queue.
//
// Pool does not recover panics from submitted functions; the reducer loop
// and effect runner each install their own recover() at the call boundary,
// per their own fatality contracts (a reducer panic is fatal to the store,
// an effect panic is fatal only to that effect).
type Pool struct {
	group   *errgroup.Group
	pending sync.WaitGroup
}

// NewPool creates a pool that runs at most size functions concurrently. A
// size of 0 or less defaults to runtime.GOMAXPROCS(0).
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	g := &errgroup.Group{}
	g.SetLimit(size)
	return &Pool{group: g}
}

// Spawn submits fn to run on a pooled goroutine. It never blocks the
// caller: errgroup's Go blocks while every pooled slot is busy, so Pool
// spins the acquisition off onto its own goroutine, and a saturated pool
// cannot stall the reducer loop that is dispatching effects.
func (p *Pool) Spawn(fn func()) {
	p.pending.Add(1)
	go func() {
		p.group.Go(func() error {
			defer p.pending.Done()
			fn()
			return nil
		})
	}()
}

// SpawnLocal is identical to Spawn for the pooled implementation: there is
// no single designated "local" goroutine in production, only the pool.
func (p *Pool) SpawnLocal(fn func()) {
	p.Spawn(fn)
}

// Wait blocks until every function submitted to the pool has returned,
// including functions those functions submitted before returning. The store
// never calls it; a caller that wants in-flight effects to finish calls it
// directly.
func (p *Pool) Wait() {
	p.pending.Wait()
	_ = p.group.Wait()
}
