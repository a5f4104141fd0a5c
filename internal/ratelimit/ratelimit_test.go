package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDiagnostic(t *testing.T) {
	t.Run("allows up to the limit within the window then throttles", func(t *testing.T) {
		d := NewDiagnostic("queue-full", time.Minute, 2)

		assert.True(t, d.Allow())
		assert.True(t, d.Allow())
		assert.False(t, d.Allow())
	})

	t.Run("separate diagnostics do not share a budget", func(t *testing.T) {
		a := NewDiagnostic("queue-full", time.Minute, 1)
		b := NewDiagnostic("queue-full", time.Minute, 1)

		assert.True(t, a.Allow())
		assert.True(t, b.Allow())
	})
}
