// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package lifecycle

import (
	"context"
	"sync"

	"github.com/z5labs/launchpad/internal/try"
)

type entry struct {
	name string
	hook Hook
}

// Stack records release actions for resources in the order they were
// acquired and runs them in the reverse order.
type Stack struct {
	mu      sync.Mutex
	entries []entry
}

// Push records a named release action. The name is only used for reporting.
func (s *Stack) Push(name string, hook Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry{name: name, hook: hook})
}

// Len returns the number of release actions which have not yet run.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Release pops and runs every recorded action, most recent first. Each
// action runs at most once, a failing action never prevents the remaining
// ones from running and its error is handed to onErr, which may be nil.
func (s *Stack) Release(ctx context.Context, onErr func(name string, err error)) {
	for {
		e, ok := s.pop()
		if !ok {
			return
		}

		err := runRecovered(ctx, e.hook)
		if err != nil && onErr != nil {
			onErr(e.name, err)
		}
	}
}

func runRecovered(ctx context.Context, hook Hook) (err error) {
	defer try.Recover(&err)

	return hook.Run(ctx)
}

func (s *Stack) pop() (entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.entries)
	if n == 0 {
		return entry{}, false
	}
	e := s.entries[n-1]
	s.entries[n-1] = entry{}
	s.entries = s.entries[:n-1]
	return e, true
}
