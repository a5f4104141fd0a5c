package reflux

// Effect is a single-shot side-effectful computation a reducer may return
// alongside its new state. A zero-value Effect (equivalently, the value
// returned by EffectNone) carries no function and is a no-op when run.
// Effects cannot themselves return further effects; they influence future
// state only by dispatching actions through their Context.
type Effect[A, D any] struct {
	fn func(*Context[A, D])
}

// NewEffect wraps fn as a one-shot effect.
func NewEffect[A, D any](fn func(*Context[A, D])) Effect[A, D] {
	return Effect[A, D]{fn: fn}
}

// EffectNone is the empty effect: a reducer returns this when a
// transition requires no side effect.
func EffectNone[A, D any]() Effect[A, D] {
	return Effect[A, D]{}
}

func (e Effect[A, D]) isNone() bool {
	return e.fn == nil
}
