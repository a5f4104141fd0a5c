package reflux

import (
	"sync"

	"github.com/nels-dev/reflux/internal/spawn"
)

// Spawn is the ambient task-execution capability every Store requires:
// Spawn runs fn on a pooled goroutine the caller does not wait for;
// SpawnLocal runs fn on whatever the implementation treats as its "local"
// execution context (for the test TickSpawner, a manually-drained FIFO).
//
// A store submits its effects to this capability rather than calling go
// directly, so tests can swap in a deterministic, manually-tickable
// implementation. The reducer loop is not submitted here: NewStore starts
// it on a goroutine of its own.
type Spawn = spawn.Spawn

var (
	defaultSpawnMu sync.RWMutex
	defaultSpawn   Spawn
)

// SetDefaultSpawn installs the process-wide default Spawn capability,
// mirroring the package-level SetStructuredLogger idiom used for other
// cross-cutting infrastructure in this stack: most applications construct
// exactly one Spawn and want every store to pick it up without threading
// it through every NewStore call. Per-store overrides remain available via
// WithSpawn. Must be called before constructing any Store that does not
// pass WithSpawn explicitly.
func SetDefaultSpawn(s Spawn) {
	defaultSpawnMu.Lock()
	defer defaultSpawnMu.Unlock()
	defaultSpawn = s
}

func getDefaultSpawn() Spawn {
	defaultSpawnMu.RLock()
	defer defaultSpawnMu.RUnlock()
	return defaultSpawn
}
