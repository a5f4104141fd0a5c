// Package spawn provides the ambient task-execution capability a Store
// uses to run its effects: a production pool backed
// by golang.org/x/sync/errgroup, and a single-threaded test harness that a
// test drains explicitly for deterministic effect-chain termination.
package spawn

// Spawn is the capability a Store is constructed with. Spawn runs fn on a
// goroutine the caller does not wait for (used for effects; a Store's
// reducer loop runs on its own goroutine, not on Spawn). SpawnLocal runs fn
// on whatever the implementation considers its "local" execution context;
// for the pooled implementation that's just another pooled goroutine, but
// for TickSpawner it is the single tick queue, which is what lets tests
// step effect chains one tick at a time instead of racing real goroutines.
type Spawn interface {
	Spawn(fn func())
	SpawnLocal(fn func())
}
