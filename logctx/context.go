// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package logctx carries request scoped diagnostic fields through a
// [context.Context] and renders them into log records.
package logctx

import (
	"context"
	"time"
)

type contextKey struct{}

// Fields holds diagnostic details about the request being served.
type Fields struct {
	RequestID string
	IPAddress string
	Domain    string
	SessionID string
	StartTime time.Time
}

// NewContext returns a copy of parent carrying f.
func NewContext(parent context.Context, f Fields) context.Context {
	return context.WithValue(parent, contextKey{}, f)
}

// FromContext returns the Fields stored in ctx, if any.
func FromContext(ctx context.Context) (Fields, bool) {
	if ctx == nil {
		return Fields{}, false
	}
	f, ok := ctx.Value(contextKey{}).(Fields)
	return f, ok
}

// Elapsed returns the time since the request started, or zero
// if the start time was never recorded.
func (f Fields) Elapsed() time.Duration {
	if f.StartTime.IsZero() {
		return 0
	}
	return time.Since(f.StartTime)
}
