// Package reactive implements the signal/memo/watcher/scope graph that
// backs a Store: equality-gated change propagation, lazy memo
// recomputation, and owner-tree-based disposal.
//
// Every Store owns exactly one Graph; tracking state is never shared
// across stores. Dependency tracking is confined to the goroutine that
// is actively evaluating a memo or watcher (guarded via goid), matching
// the single-consumer commit discipline the store imposes above this
// package.
package reactive

import (
	"sync"

	"github.com/petermattis/goid"
)

// Observable is a reactive source: something that can be read and that
// notifies its dependents when it changes.
type Observable interface {
	addDependent(d dependent)
	removeDependent(d dependent)
}

// dependent is a reactive sink: something that recomputes or re-fires
// when one of its sources changes.
type dependent interface {
	markDirty(g *Graph)
	addSource(o Observable)
}

// evaluator is a dependent that can be pulled to re-evaluate itself; only
// watchers are evaluators, since memos are pulled lazily by their readers
// instead of being scheduled.
type evaluator interface {
	dependent
	evaluate(g *Graph)
}

// Graph tracks the currently-evaluating reaction (for dependency linking)
// and the set of watchers pending evaluation after the current write.
type Graph struct {
	mu sync.Mutex

	active    dependent
	activeGID int64

	pending []evaluator
}

// NewGraph creates an empty reactive graph for a single store.
func NewGraph() *Graph {
	return &Graph{}
}

// runTracked executes fn with d installed as the active reaction, so that
// any Observable read during fn links itself as a source of d.
func (g *Graph) runTracked(d dependent, fn func()) {
	g.mu.Lock()
	prevActive := g.active
	prevGID := g.activeGID
	g.active = d
	g.activeGID = goid.Get()
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.active = prevActive
		g.activeGID = prevGID
		g.mu.Unlock()
	}()

	fn()
}

// track links o as a dependency of whatever reaction is currently being
// evaluated on this goroutine, if any. Reads from other goroutines (e.g. a
// plain Store.Get) are untracked by construction, since there is no active
// reaction on them.
//
// Entry points in this package take g.mu in short sections and release it
// before calling out to user code; addDependent/removeDependent/addSource
// never lock internally, since sync.Mutex is not reentrant and they are
// only ever called from inside a section that already holds it.
func (g *Graph) track(o Observable) {
	g.mu.Lock()
	active := g.active
	sameGoroutine := active != nil && g.activeGID == goid.Get()
	g.mu.Unlock()

	if !sameGoroutine {
		return
	}

	g.mu.Lock()
	o.addDependent(active)
	active.addSource(o)
	g.mu.Unlock()
}

// schedule enqueues w for evaluation once the current write's dirty
// cascade settles. Safe to call repeatedly for the same watcher; it is
// deduplicated.
func (g *Graph) schedule(w evaluator) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, p := range g.pending {
		if p == w {
			return
		}
	}
	g.pending = append(g.pending, w)
}

// unschedule removes w from the pending set, used when a watcher is
// disposed before it gets a chance to run.
func (g *Graph) unschedule(w evaluator) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i, p := range g.pending {
		if p == w {
			g.pending = append(g.pending[:i], g.pending[i+1:]...)
			return
		}
	}
}

// flush drains the pending watcher set, evaluating each one. Evaluating a
// watcher may itself dirty further watchers (a watcher reading a memo that
// depends on another signal written inside a callback), so this loops
// until the queue is empty rather than assuming a single pass suffices.
func (g *Graph) flush() {
	for {
		g.mu.Lock()
		if len(g.pending) == 0 {
			g.mu.Unlock()
			return
		}
		batch := g.pending
		g.pending = nil
		g.mu.Unlock()

		for _, w := range batch {
			w.evaluate(g)
		}
	}
}

func removeDependent(s []dependent, d dependent) []dependent {
	for i, v := range s {
		if v == d {
			return append(s[:i:i], s[i+1:]...)
		}
	}
	return s
}

func containsDependent(s []dependent, d dependent) bool {
	for _, v := range s {
		if v == d {
			return true
		}
	}
	return false
}
