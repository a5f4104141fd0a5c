package reactive

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWatcher(t *testing.T) {
	t.Run("registration pass does not fire the callback", func(t *testing.T) {
		var log []string

		g := NewGraph()
		scope := NewScope()
		count := NewSignal(g, 0, deepEqual[int])

		NewWatcher(g, scope, deepEqual[int], func() int {
			return count.ReadTracked()
		}, func(v int) {
			log = append(log, fmt.Sprintf("fired %d", v))
		})

		assert.Equal(t, 0, len(log))
	})

	t.Run("fires only when the read value actually changes", func(t *testing.T) {
		var log []string

		g := NewGraph()
		scope := NewScope()
		count := NewSignal(g, 1, deepEqual[int])
		parity := NewMemo(g, scope, deepEqual[int], func() int {
			return count.ReadTracked() % 2
		})

		NewWatcher(g, scope, deepEqual[int], func() int {
			return parity.Get()
		}, func(v int) {
			log = append(log, fmt.Sprintf("parity %d", v))
		})

		count.Write(3) // parity stays 1, must not fire
		assert.Equal(t, 0, len(log))

		count.Write(4) // parity flips to 0, must fire
		assert.Equal(t, []string{"parity 0"}, log)

		count.Write(6) // parity stays 0, must not fire again
		assert.Equal(t, []string{"parity 0"}, log)

		count.Write(7) // parity flips to 1, must fire
		assert.Equal(t, []string{"parity 0", "parity 1"}, log)
	})

	t.Run("dispose stops further callbacks", func(t *testing.T) {
		fires := 0

		g := NewGraph()
		scope := NewScope()
		count := NewSignal(g, 0, deepEqual[int])

		w := NewWatcher(g, scope, deepEqual[int], func() int {
			return count.ReadTracked()
		}, func(int) {
			fires++
		})

		count.Write(1)
		assert.Equal(t, 1, fires)

		w.Dispose()

		count.Write(2)
		count.Write(3)
		assert.Equal(t, 1, fires, "disposed watcher must not fire again")
	})

	t.Run("disconnect and rewatch", func(t *testing.T) {
		firstFires := 0
		secondFires := 0

		g := NewGraph()
		watchScope := NewScope()
		count := NewSignal(g, 0, deepEqual[int])

		first := NewWatcher(g, watchScope, deepEqual[int], func() int {
			return count.ReadTracked()
		}, func(int) {
			firstFires++
		})

		count.Write(1)
		assert.Equal(t, 1, firstFires)

		first.Dispose()

		NewWatcher(g, watchScope, deepEqual[int], func() int {
			return count.ReadTracked()
		}, func(int) {
			secondFires++
		})

		count.Write(2)
		assert.Equal(t, 1, firstFires, "original watcher stays disposed")
		assert.Equal(t, 1, secondFires)
	})

	t.Run("scope disposal severs all watchers adopted into it", func(t *testing.T) {
		fires := 0

		g := NewGraph()
		scope := NewScope()
		count := NewSignal(g, 0, deepEqual[int])

		NewWatcher(g, scope, deepEqual[int], func() int {
			return count.ReadTracked()
		}, func(int) {
			fires++
		})

		scope.Dispose()

		count.Write(1)
		assert.Equal(t, 0, fires)
	})

	t.Run("multiple watchers on the same signal fire independently", func(t *testing.T) {
		var log []string

		g := NewGraph()
		scope := NewScope()
		count := NewSignal(g, 0, deepEqual[int])

		NewWatcher(g, scope, deepEqual[int], func() int {
			return count.ReadTracked()
		}, func(v int) {
			log = append(log, fmt.Sprintf("a:%d", v))
		})
		NewWatcher(g, scope, deepEqual[int], func() int {
			return count.ReadTracked()
		}, func(v int) {
			log = append(log, fmt.Sprintf("b:%d", v))
		})

		count.Write(5)

		assert.ElementsMatch(t, []string{"a:5", "b:5"}, log)
	})
}
