package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemo(t *testing.T) {
	t.Run("derives value from signal, lazily", func(t *testing.T) {
		var log []string

		g := NewGraph()
		scope := NewScope()
		count := NewSignal(g, 1, deepEqual[int])
		double := NewMemo(g, scope, deepEqual[int], func() int {
			log = append(log, "doubling")
			return count.ReadTracked() * 2
		})

		assert.Equal(t, 0, len(log), "memo must not compute until first read")

		assert.Equal(t, 2, double.Get())
		assert.Equal(t, []string{"doubling"}, log)

		assert.Equal(t, 2, double.Get())
		assert.Equal(t, []string{"doubling"}, log, "second read of a clean memo must not recompute")

		count.Write(10)
		assert.Equal(t, []string{"doubling"}, log, "dirtying must not eagerly recompute")

		assert.Equal(t, 20, double.Get())
		assert.Equal(t, []string{"doubling", "doubling"}, log)
	})

	t.Run("memo of memo recomputes in dependency order", func(t *testing.T) {
		var log []string

		g := NewGraph()
		scope := NewScope()
		count := NewSignal(g, 1, deepEqual[int])
		double := NewMemo(g, scope, deepEqual[int], func() int {
			log = append(log, "doubling")
			return count.ReadTracked() * 2
		})
		plusTwo := NewMemo(g, scope, deepEqual[int], func() int {
			d := double.Get()
			log = append(log, "adding")
			return d + 2
		})

		assert.Equal(t, 4, plusTwo.Get())
		assert.Equal(t, []string{"doubling", "adding"}, log)

		count.Write(10)

		assert.Equal(t, 22, plusTwo.Get())
		assert.Equal(t, []string{"doubling", "adding", "doubling", "adding"}, log)
	})

	t.Run("recomputes on read even when no watcher observes it", func(t *testing.T) {
		calls := 0

		g := NewGraph()
		scope := NewScope()
		count := NewSignal(g, 1, deepEqual[int])
		squared := NewMemo(g, scope, deepEqual[int], func() int {
			calls++
			return count.ReadTracked() * count.ReadTracked()
		})

		assert.Equal(t, 1, squared.Get())
		count.Write(3)
		assert.Equal(t, 9, squared.Get())
		assert.Equal(t, 2, calls)
	})

	t.Run("dispose unlinks from sources", func(t *testing.T) {
		g := NewGraph()
		scope := NewScope()
		count := NewSignal(g, 1, deepEqual[int])
		double := NewMemo(g, scope, deepEqual[int], func() int {
			return count.ReadTracked() * 2
		})

		assert.Equal(t, 2, double.Get())
		double.Dispose()

		assert.Equal(t, 0, len(count.dependents))
	})

	t.Run("re-tracks sources on every recompute for conditional reads", func(t *testing.T) {
		calls := 0

		g := NewGraph()
		scope := NewScope()
		useA := NewSignal(g, true, deepEqual[bool])
		a := NewSignal(g, 1, deepEqual[int])
		b := NewSignal(g, 100, deepEqual[int])

		picked := NewMemo(g, scope, deepEqual[int], func() int {
			calls++
			if useA.ReadTracked() {
				return a.ReadTracked()
			}
			return b.ReadTracked()
		})

		assert.Equal(t, 1, picked.Get())

		useA.Write(false)
		assert.Equal(t, 100, picked.Get())
		assert.Equal(t, 2, calls)

		a.Write(999)
		assert.Equal(t, 100, picked.Get(), "now unreferenced signal a must no longer dirty this memo")
		assert.Equal(t, 2, calls, "no recompute should have happened")
	})
}
