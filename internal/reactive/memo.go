package reactive

// Memo is a derived value recomputed lazily: it stays marked dirty after
// one of its sources changes, and only actually re-runs its computation
// the next time something reads it. The recomputed value replaces the
// cached one without an equality comparison: the memo's own dependents
// were already marked dirty eagerly by the write that dirtied it (see
// Signal.Write), so a downstream memo recomputes even when this memo's
// value turns out unchanged. Propagation in this package is a conservative
// "might have changed", and the leaf watcher's own equality check is what
// enforces "no spurious fires".
type Memo[T any] struct {
	sourceSet

	graph   *Graph
	equal   func(a, b T) bool
	compute func() T

	dirty      bool
	value      T
	dependents []dependent
}

// NewMemo creates a memo under scope, deriving its value from compute.
// compute must be pure and is expected to perform tracked reads of
// signals/memos reachable from the store's graph.
func NewMemo[T any](g *Graph, scope *Scope, equal func(a, b T) bool, compute func() T) *Memo[T] {
	m := &Memo[T]{
		graph:   g,
		equal:   equal,
		compute: compute,
		dirty:   true,
	}
	scope.Adopt(m)
	return m
}

// addDependent and removeDependent mutate shared state and assume the
// caller already holds graph.mu (always true: the only callers are
// Graph.track and clearSources, and both run with the lock held).
func (m *Memo[T]) addDependent(d dependent) {
	if !containsDependent(m.dependents, d) {
		m.dependents = append(m.dependents, d)
	}
}

func (m *Memo[T]) removeDependent(d dependent) {
	m.dependents = removeDependent(m.dependents, d)
}

func (m *Memo[T]) markDirty(g *Graph) {
	g.mu.Lock()
	if m.dirty {
		g.mu.Unlock()
		return
	}
	m.dirty = true
	deps := append([]dependent(nil), m.dependents...)
	g.mu.Unlock()

	for _, d := range deps {
		d.markDirty(g)
	}
}

// Get returns the memo's current value, recomputing it first if dirty.
// If called while another reaction is actively evaluating on this
// goroutine, the memo links itself as a dependency of that reaction.
func (m *Memo[T]) Get() T {
	m.graph.track(m)

	m.graph.mu.Lock()
	dirty := m.dirty
	m.graph.mu.Unlock()

	if !dirty {
		m.graph.mu.Lock()
		v := m.value
		m.graph.mu.Unlock()
		return v
	}

	return m.recompute()
}

func (m *Memo[T]) recompute() T {
	m.graph.mu.Lock()
	m.clearSources(m)
	m.graph.mu.Unlock()

	var newVal T
	m.graph.runTracked(m, func() {
		newVal = m.compute()
	})

	m.graph.mu.Lock()
	m.value = newVal
	m.dirty = false
	m.graph.mu.Unlock()

	return newVal
}

// Dispose unlinks the memo from its current sources. Memos with live
// dependents are not re-pointed; disposing a memo whose downstream readers
// keep calling Get is a usage bug, same as the upstream library it is
// adapted from.
func (m *Memo[T]) Dispose() {
	m.graph.mu.Lock()
	m.clearSources(m)
	m.graph.mu.Unlock()
}
