package reflux

import (
	"errors"
	"fmt"
)

// ErrNoSpawn is returned by NewStore when no Spawn capability was supplied
// via WithSpawn and none was installed globally via SetDefaultSpawn. A
// store cannot run its reducer loop without one.
var ErrNoSpawn = errors.New("reflux: no Spawn capability installed; call SetDefaultSpawn or pass WithSpawn")

// ErrQueueFull is returned by TryDispatch when the store's action queue has
// no free capacity. Dispatch discards this error, matching spec's
// fire-and-forget contract; TryDispatch exposes it for callers that want
// to detect a misconfigured queue size.
var ErrQueueFull = errors.New("reflux: dispatch queue is full")

// panicValue normalises a recover() result into an error for logging.
func panicValue(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}
