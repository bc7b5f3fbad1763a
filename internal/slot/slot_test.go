// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package slot

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCell_Install(t *testing.T) {
	t.Run("will return ErrOccupied", func(t *testing.T) {
		t.Run("if a value is already installed", func(t *testing.T) {
			var c Cell[string]

			_, err := c.Install("first")
			if !assert.Nil(t, err) {
				return
			}

			_, err = c.Install("second")
			if !assert.ErrorIs(t, err, ErrOccupied) {
				return
			}

			v, ok := c.Load()
			if !assert.True(t, ok) {
				return
			}
			if !assert.Equal(t, "first", v) {
				return
			}
		})
	})

	t.Run("will only let one concurrent install win", func(t *testing.T) {
		var c Cell[int]

		const n = 64
		var wins atomic.Int64
		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := c.Install(i)
				if err == nil {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()

		if !assert.Equal(t, int64(1), wins.Load()) {
			return
		}
	})

	t.Run("will succeed", func(t *testing.T) {
		t.Run("if the previous lease was released", func(t *testing.T) {
			var c Cell[string]

			l, err := c.Install("first")
			if !assert.Nil(t, err) {
				return
			}
			l.Release()

			l, err = c.Install("second")
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, "second", l.Value()) {
				return
			}
		})
	})
}

func TestLease_Release(t *testing.T) {
	t.Run("will not clear the cell", func(t *testing.T) {
		t.Run("if a newer lease owns the cell", func(t *testing.T) {
			var c Cell[string]

			old, err := c.Install("old")
			if !assert.Nil(t, err) {
				return
			}
			old.Release()

			_, err = c.Install("new")
			if !assert.Nil(t, err) {
				return
			}

			old.Release()

			v, ok := c.Load()
			if !assert.True(t, ok) {
				return
			}
			if !assert.Equal(t, "new", v) {
				return
			}
		})
	})

	t.Run("will be a no-op", func(t *testing.T) {
		t.Run("if called more than once", func(t *testing.T) {
			var c Cell[string]

			l, err := c.Install("v")
			if !assert.Nil(t, err) {
				return
			}
			l.Release()
			l.Release()

			if !assert.False(t, c.Occupied()) {
				return
			}
		})

		t.Run("if the lease is nil", func(t *testing.T) {
			var l *Lease[string]
			l.Release()
		})
	})
}
