// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package slot provides a cell which may hold at most one value at a time.
package slot

import (
	"errors"
	"sync"
)

// ErrOccupied is returned by [Cell.Install] when the cell already holds a value.
var ErrOccupied = errors.New("slot: already occupied")

// Cell holds at most one value. The zero value is an empty Cell.
type Cell[T any] struct {
	mu      sync.Mutex
	current *Lease[T]
}

// Lease represents ownership of the value installed into a [Cell].
type Lease[T any] struct {
	cell  *Cell[T]
	value T
}

// Install places v into the cell. Only one Install can succeed until
// the returned [Lease] is released, every other call gets [ErrOccupied]
// and leaves the current occupant untouched.
func (c *Cell[T]) Install(v T) (*Lease[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		return nil, ErrOccupied
	}
	l := &Lease[T]{
		cell:  c,
		value: v,
	}
	c.current = l
	return l, nil
}

// Load returns the installed value, if any.
func (c *Cell[T]) Load() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		var zero T
		return zero, false
	}
	return c.current.value, true
}

// Occupied reports whether the cell currently holds a value.
func (c *Cell[T]) Occupied() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// Value returns the value this lease was granted for.
func (l *Lease[T]) Value() T {
	return l.value
}

// Release empties the cell if, and only if, this lease is still the
// current occupant. It is safe to call more than once.
func (l *Lease[T]) Release() {
	if l == nil {
		return
	}

	c := l.cell
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == l {
		c.current = nil
	}
}
