// Package reflux implements a generic unidirectional-dataflow state
// container: a dispatcher feeding a single-consumer reducer loop, a
// reactive graph of memoised selectors and watchers fanning the committed
// state out to observers, and an effect runner that lets the reducer
// launch asynchronous work which may dispatch further actions.
//
// A Store is constructed with an initial state and a reducer, and
// optionally a capacity, injected dependencies, a Spawn capability, a
// logger, and a custom equality predicate. Every transition is applied by
// exactly one goroutine per store; readers derived via NewReader observe a
// memoised projection of that state with the same change-detection
// guarantees as the store itself.
package reflux
