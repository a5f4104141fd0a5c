package reflux

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/nels-dev/reflux/internal/obslog"
	"github.com/nels-dev/reflux/internal/ratelimit"
	"github.com/nels-dev/reflux/internal/reactive"
)

const defaultCapacity = 128

// queueItem is either a dispatched action or a flush barrier. Barriers
// travel through the same channel as actions (rather than a sibling
// channel polled by a second select case) specifically so that ordering
// is guaranteed: Go's select makes no promises about which of several
// simultaneously-ready cases fires first, so a barrier sent on its own
// channel could overtake actions already sitting in the queue.
type queueItem[A any] struct {
	action  A
	barrier chan struct{}
}

// StoreOption configures a Store at construction, replacing spec's four
// constructor overloads (Go has no function overloading) with a single
// constructor plus functional options.
type StoreOption[S, A, D any] func(*storeConfig[S, A, D])

type storeConfig[S, A, D any] struct {
	capacity     int
	deps         D
	spawn        Spawn
	logger       obslog.Logger
	equal        func(a, b S) bool
	panicHandler func(any)
}

// WithCapacity overrides the dispatch queue's bound (default 128).
func WithCapacity[S, A, D any](n int) StoreOption[S, A, D] {
	return func(c *storeConfig[S, A, D]) {
		c.capacity = n
	}
}

// WithDeps installs dependencies made available to every effect invocation
// through Context.Deps. Default is the zero value of D.
func WithDeps[S, A, D any](d D) StoreOption[S, A, D] {
	return func(c *storeConfig[S, A, D]) {
		c.deps = d
	}
}

// WithSpawn overrides the ambient Spawn capability for this store only,
// taking precedence over SetDefaultSpawn.
func WithSpawn[S, A, D any](s Spawn) StoreOption[S, A, D] {
	return func(c *storeConfig[S, A, D]) {
		c.spawn = s
	}
}

// WithLogger installs a structured logger for reducer panics, effect
// panics, and rate-limited queue-full diagnostics. Default discards
// everything.
func WithLogger[S, A, D any](l obslog.Logger) StoreOption[S, A, D] {
	return func(c *storeConfig[S, A, D]) {
		c.logger = l
	}
}

// WithEqual overrides the equality predicate used to detect no-op state
// writes. Default is defaultEqual (Equatable if implemented, else
// reflect.DeepEqual).
func WithEqual[S, A, D any](fn func(a, b S) bool) StoreOption[S, A, D] {
	return func(c *storeConfig[S, A, D]) {
		c.equal = fn
	}
}

// WithPanicHandler installs a recovery hook for watcher callback panics.
// Without one, a panicking watcher callback is undefined behaviour per
// spec (it unwinds into the reducer loop's own panic recovery and is
// treated the same as a reducer panic, terminating the store); with one
// installed, the panic is recovered and handed to fn instead.
func WithPanicHandler[S, A, D any](fn func(any)) StoreOption[S, A, D] {
	return func(c *storeConfig[S, A, D]) {
		c.panicHandler = fn
	}
}

// NewReducer adapts a plain (no-effect) reducer into the effect-capable
// shape NewStore requires, equivalent to spec's "plain-reducer variant"
// that always returns a no-op effect.
func NewReducer[S, A any](fn func(S, A) S) func(S, A) (S, Effect[A, struct{}]) {
	return func(s S, a A) (S, Effect[A, struct{}]) {
		return fn(s, a), EffectNone[A, struct{}]()
	}
}

// Store is the top-level unit: the action queue, the single reducer
// goroutine draining it, the state signal, and the two scopes (a
// construction scope owning signals and memos, a watch scope owning only
// watchers) that back it.
type Store[S, A, D any] struct {
	graph      *reactive.Graph
	consScope  *reactive.Scope
	watchScope *reactive.Scope

	signal *reactive.Signal[S]
	equal  func(a, b S) bool

	reducer func(S, A) (S, Effect[A, D])
	deps    D

	queue    chan queueItem[A]
	shutdown chan struct{}
	closed   atomic.Bool

	spawn         Spawn
	logger        obslog.Logger
	queueFullDiag *ratelimit.Diagnostic
	panicHandler  func(any)

	afterFlushMu sync.Mutex
	afterFlush   []func()
}

// NewStore constructs a store with initialState as its starting state and
// reducer as the (possibly effect-returning) transition function. It fails
// only when no Spawn capability is available (neither WithSpawn nor
// SetDefaultSpawn), mirroring spec's "executor not initialised" failure.
func NewStore[S, A, D any](
	initialState S,
	reducer func(S, A) (S, Effect[A, D]),
	opts ...StoreOption[S, A, D],
) (*Store[S, A, D], error) {
	cfg := storeConfig[S, A, D]{
		capacity: defaultCapacity,
		spawn:    getDefaultSpawn(),
		logger:   obslog.NewNoOpLogger(),
		equal:    defaultEqual[S],
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.spawn == nil {
		return nil, ErrNoSpawn
	}

	g := reactive.NewGraph()
	signal := reactive.NewSignal(g, initialState, cfg.equal)

	s := &Store[S, A, D]{
		graph:         g,
		consScope:     reactive.NewScope(),
		watchScope:    reactive.NewScope(),
		signal:        signal,
		equal:         cfg.equal,
		reducer:       reducer,
		deps:          cfg.deps,
		queue:         make(chan queueItem[A], cfg.capacity),
		shutdown:      make(chan struct{}),
		spawn:         cfg.spawn,
		logger:        cfg.logger,
		queueFullDiag: ratelimit.NewDiagnostic("queue-full", time.Second, 3),
		panicHandler:  cfg.panicHandler,
	}

	// The reducer loop is long-lived, not a one-shot unit of work: it runs
	// until Shutdown or a reducer panic, blocked on select the rest of the
	// time. Spawn/SpawnLocal are for one-shot effect submissions (and, for
	// TickSpawner, synchronous run-to-completion on Tick), neither of which
	// fits a goroutine that is meant to outlive any single tick.
	go s.loop()

	return s, nil
}

// Dispatch enqueues action for the reducer, discarding any error. This is
// the forgiving, fire-and-forget entry point; see TryDispatch for the
// explicit Result-returning variant spec's design notes call out as the
// preferred reimplementation shape.
func (s *Store[S, A, D]) Dispatch(action A) {
	_ = s.TryDispatch(action)
}

// TryDispatch enqueues action, returning ErrQueueFull if the queue has no
// free capacity. A dispatch after Shutdown is a silent no-op (nil error),
// matching spec's "dispatch after shutdown: silent drop; not an error".
func (s *Store[S, A, D]) TryDispatch(action A) error {
	if s.closed.Load() {
		return nil
	}

	select {
	case s.queue <- queueItem[A]{action: action}:
		return nil
	default:
		if s.queueFullDiag.Allow() {
			obslog.Warn(s.logger, "dispatch queue is full", obslog.Int("capacity", cap(s.queue)))
		}
		return ErrQueueFull
	}
}

// Flush blocks until every action dispatched before this call, by this
// goroutine, has been applied by the reducer. It works by enqueueing a
// barrier behind those actions and waiting for the reducer loop to reach
// it, so it reflects spec's "dispatch(a1); …; dispatch(an); flush" idiom
// literally rather than via a sleep or poll. Flush does not wait for
// effects scheduled by those actions to run; callers that need a full
// effect chain to settle must alternate Flush with draining their Spawn
// (e.g. TickSpawner.Tick) until neither produces further work. A Flush
// called after Shutdown returns immediately.
func (s *Store[S, A, D]) Flush() {
	if s.closed.Load() {
		return
	}

	done := make(chan struct{})
	s.queue <- queueItem[A]{barrier: done}
	<-done
}

// Get returns an untracked snapshot of the current state.
func (s *Store[S, A, D]) Get() S {
	return s.signal.ReadUntracked()
}

// Watch registers a callback under the store's watch scope. The immediate
// registration pass runs the read once to collect dependencies without
// invoking callback; callback then fires on every subsequent commit whose
// value differs, by the store's equality predicate, from the last
// delivered value. The returned disconnect function removes only this
// watcher, leaving any others (and Disconnect's whole-scope teardown)
// unaffected.
func (s *Store[S, A, D]) Watch(callback func(S)) (disconnect func()) {
	wrapped := s.wrapPanic(callback)
	w := reactive.NewWatcher(s.graph, s.watchScope, s.equal, s.signal.ReadTracked, wrapped)
	return w.Dispose
}

// Disconnect tears down every watcher registered on this store via Watch.
// Watchers registered through a Reader live in that Reader's own watch
// scope, which is not attached to either of the store's scopes, so
// Store.Disconnect does not sever them. A fresh watch scope is installed
// immediately after, so subsequent calls to Watch register and fire
// normally — rewatching after
// disconnect is explicitly permitted by spec invariant 6.
func (s *Store[S, A, D]) Disconnect() {
	s.watchScope.Dispose()
	s.watchScope = reactive.NewScope()
}

// Shutdown closes the dispatch queue to new actions. Already-queued
// actions are drained by the reducer loop before it exits; in-flight
// effects are not awaited or cancelled. Safe to call more than once.
func (s *Store[S, A, D]) Shutdown() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.shutdown)
	}
}

// AfterFlush registers a one-shot callback that runs once the next commit
// (state write plus the synchronous watcher cascade it triggers) has fully
// settled. Intended for test synchronisation in place of a sleep; it does
// not participate in the public spec contract but is a direct,
// low-risk completion of the teacher library's OnSettled fixture.
func (s *Store[S, A, D]) AfterFlush(fn func()) {
	s.afterFlushMu.Lock()
	s.afterFlush = append(s.afterFlush, fn)
	s.afterFlushMu.Unlock()
}

func (s *Store[S, A, D]) drainAfterFlush() {
	s.afterFlushMu.Lock()
	fns := s.afterFlush
	s.afterFlush = nil
	s.afterFlushMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (s *Store[S, A, D]) wrapPanic(callback func(S)) func(S) {
	if s.panicHandler == nil {
		return callback
	}
	return func(v S) {
		defer func() {
			if r := recover(); r != nil {
				s.panicHandler(r)
			}
		}()
		callback(v)
	}
}

// loop is the single reducer goroutine: await next action, apply the
// reducer, commit, schedule any effect, repeat. A reducer panic is caught
// here and is fatal to the store: the loop exits and further dispatches
// are silently dropped forever after (observable only as a queue that
// never drains, never as an error from Dispatch).
func (s *Store[S, A, D]) loop() {
	for {
		select {
		case item := <-s.queue:
			if s.handle(item) {
				return
			}
		case <-s.shutdown:
			s.drain()
			return
		}
	}
}

func (s *Store[S, A, D]) drain() {
	for {
		select {
		case item := <-s.queue:
			if s.handle(item) {
				return
			}
		default:
			return
		}
	}
}

// handle dispatches item to either step (an action) or the barrier close
// (a Flush waiter). It returns true iff the reducer panicked, in which
// case the caller must terminate the loop.
func (s *Store[S, A, D]) handle(item queueItem[A]) (panicked bool) {
	if item.barrier != nil {
		close(item.barrier)
		return false
	}
	return s.step(item.action)
}

// step applies one action. It returns true iff the reducer panicked, in
// which case the caller must terminate the loop.
func (s *Store[S, A, D]) step(action A) (panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			obslog.Error(s.logger, "reducer panicked; store terminating", panicValue(r))
		}
	}()

	current := s.signal.ReadUntracked()
	newState, effect := s.reducer(current, action)
	s.signal.Write(newState)

	if !effect.isNone() {
		s.runEffect(effect)
	}

	s.drainAfterFlush()
	return false
}

func (s *Store[S, A, D]) runEffect(effect Effect[A, D]) {
	fn := effect.fn
	ctx := &Context[A, D]{dispatch: s.Dispatch, deps: s.deps}

	s.spawn.Spawn(func() {
		defer func() {
			if r := recover(); r != nil {
				obslog.Error(s.logger, "effect panicked", panicValue(r))
			}
		}()
		fn(ctx)
	})
}
