package reflux

import (
	"github.com/nels-dev/reflux/internal/obslog"
	"github.com/nels-dev/reflux/internal/reactive"
)

// Reader is a derived, memoized view over a Store's state, selected by a
// pure function of S. Construction does not evaluate the selector; the
// first evaluation happens lazily on the first Get or Watch, and then only
// recomputes when something the selector actually read last time changes
// (spec's "selectors recompute only on relevant state changes").
//
// A Reader's memo is adopted into the store's construction scope, so
// Store.Disconnect (which only tears down the store's own watch scope)
// never invalidates readers built from it; only the Reader's own Disconnect
// affects its watchers, and nothing short of the store itself going away
// tears down the memo.
type Reader[T any] struct {
	graph      *reactive.Graph
	watchScope *reactive.Scope

	memo  *reactive.Memo[T]
	equal func(a, b T) bool

	panicHandler func(any)
	logger       obslog.Logger
}

// NewReader builds a Reader deriving T from s's state via selector, using
// reflect.DeepEqual (or selector's own Equatable implementation) to decide
// whether a recomputed value actually changed. Go methods cannot introduce
// new type parameters beyond their receiver's, so this is a package-level
// function rather than a method on Store.
func NewReader[S, A, D, T any](s *Store[S, A, D], selector func(S) T) *Reader[T] {
	equal := defaultEqual[T]
	memo := reactive.NewMemo(s.graph, s.consScope, equal, func() T {
		return selector(s.signal.ReadTracked())
	})

	return &Reader[T]{
		graph:        s.graph,
		watchScope:   reactive.NewScope(),
		memo:         memo,
		equal:        equal,
		panicHandler: s.panicHandler,
		logger:       s.logger,
	}
}

// Get returns the selector's current value, recomputing it first if any of
// its sources changed since the last read.
func (r *Reader[T]) Get() T {
	return r.memo.Get()
}

// Watch registers callback to fire whenever the selected value changes.
// Like Store.Watch, registration performs a dependency-collecting pass
// without invoking callback.
func (r *Reader[T]) Watch(callback func(T)) (disconnect func()) {
	wrapped := r.wrapPanic(callback)
	w := reactive.NewWatcher(r.graph, r.watchScope, r.equal, r.memo.Get, wrapped)
	return w.Dispose
}

// Disconnect tears down every watcher registered on this Reader, without
// affecting the underlying memo or any other Reader sharing the same
// selected source.
func (r *Reader[T]) Disconnect() {
	r.watchScope.Dispose()
	r.watchScope = reactive.NewScope()
}

func (r *Reader[T]) wrapPanic(callback func(T)) func(T) {
	if r.panicHandler == nil {
		return callback
	}
	return func(v T) {
		defer func() {
			if rec := recover(); rec != nil {
				r.panicHandler(rec)
			}
		}()
		callback(v)
	}
}
