// Package ratelimit throttles the store's recurring diagnostics, so a
// mis-sized producer hammering a full dispatch queue turns into a bounded
// number of log lines per window instead of one per dispatch.
package ratelimit

import (
	"time"

	"github.com/joeycumines/go-catrate"
)

// Diagnostic wraps a catrate.Limiter for a single recurring condition (this
// package's only caller is the store's "queue full" debug-assert, so one
// category is all it needs).
type Diagnostic struct {
	limiter  *catrate.Limiter
	category string
}

// NewDiagnostic builds a throttle allowing at most limit logs per window
// for the named condition. window must be positive.
func NewDiagnostic(category string, window time.Duration, limit int) *Diagnostic {
	return &Diagnostic{
		limiter: catrate.NewLimiter(map[time.Duration]int{
			window: limit,
		}),
		category: category,
	}
}

// Allow reports whether the caller should emit a log line for this
// diagnostic right now, consuming one slot in the current window if so.
func (d *Diagnostic) Allow() bool {
	_, ok := d.limiter.Allow(d.category)
	return ok
}
