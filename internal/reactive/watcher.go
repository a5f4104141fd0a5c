package reactive

// Watcher ties a tracked read to a callback. Registration performs an
// "immediate pass" that runs the read once to collect dependencies without
// invoking the callback; every pass after that invokes the callback only
// if the read value differs, by equal, from the last value delivered (or,
// for the very first subsequent pass, from the immediate pass's baseline).
type Watcher[T any] struct {
	sourceSet

	graph    *Graph
	equal    func(a, b T) bool
	read     func() T
	callback func(T)

	last    T
	hasLast bool
}

// NewWatcher creates a watcher under scope and immediately performs its
// registration pass (tracking dependencies, not invoking callback).
func NewWatcher[T any](g *Graph, scope *Scope, equal func(a, b T) bool, read func() T, callback func(T)) *Watcher[T] {
	w := &Watcher[T]{
		graph:    g,
		equal:    equal,
		read:     read,
		callback: callback,
	}
	scope.Adopt(w)
	w.registerImmediate()
	return w
}

func (w *Watcher[T]) markDirty(g *Graph) {
	g.schedule(w)
}

func (w *Watcher[T]) registerImmediate() {
	w.graph.mu.Lock()
	w.clearSources(w)
	w.graph.mu.Unlock()

	var v T
	w.graph.runTracked(w, func() {
		v = w.read()
	})

	w.last = v
	w.hasLast = true
}

// evaluate re-runs the tracked read and fires the callback iff the result
// differs from the last delivered value.
func (w *Watcher[T]) evaluate(g *Graph) {
	g.mu.Lock()
	w.clearSources(w)
	g.mu.Unlock()

	var v T
	g.runTracked(w, func() {
		v = w.read()
	})

	if w.hasLast && w.equal(w.last, v) {
		return
	}

	w.last = v
	w.hasLast = true
	w.callback(v)
}

// Dispose unlinks the watcher from its sources and removes it from any
// pending evaluation queue. Further source writes will not reach it.
func (w *Watcher[T]) Dispose() {
	w.graph.unschedule(w)

	w.graph.mu.Lock()
	w.clearSources(w)
	w.graph.mu.Unlock()
}
