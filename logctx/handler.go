// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package logctx

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Handler is an slog.Handler which adds the request [Fields] and the
// OpenTelemetry trace and span ids found in the record context.
type Handler struct {
	slog slog.Handler
}

// NewHandler wraps h.
func NewHandler(h slog.Handler) *Handler {
	return &Handler{slog: h}
}

// New provides a simple wrapper for slog.New(NewHandler(h)).
func New(h slog.Handler) *slog.Logger {
	return slog.New(NewHandler(h))
}

// Enabled implements the slog.Handler interface.
func (h *Handler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.slog.Enabled(ctx, lvl)
}

// Handle implements the slog.Handler interface.
func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	f, hasFields := FromContext(ctx)
	spanCtx := trace.SpanContextFromContext(ctx)
	if !hasFields && !spanCtx.IsValid() {
		return h.slog.Handle(ctx, record)
	}

	r := record.Clone()
	if hasFields {
		r.AddAttrs(fieldsGroup(f))
	}
	if spanCtx.IsValid() {
		r.AddAttrs(
			slog.Group(
				"otel",
				slog.String("trace_id", spanCtx.TraceID().String()),
				slog.String("span_id", spanCtx.SpanID().String()),
			),
		)
	}
	return h.slog.Handle(ctx, r)
}

// WithAttrs implements the slog.Handler interface.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewHandler(h.slog.WithAttrs(attrs))
}

// WithGroup implements the slog.Handler interface.
func (h *Handler) WithGroup(name string) slog.Handler {
	return NewHandler(h.slog.WithGroup(name))
}

func fieldsGroup(f Fields) slog.Attr {
	attrs := make([]any, 0, 5)
	if f.RequestID != "" {
		attrs = append(attrs, slog.String("id", f.RequestID))
	}
	if f.IPAddress != "" {
		attrs = append(attrs, slog.String("ip", f.IPAddress))
	}
	if f.Domain != "" {
		attrs = append(attrs, slog.String("domain", f.Domain))
	}
	if f.SessionID != "" {
		attrs = append(attrs, slog.String("session_id", f.SessionID))
	}
	if !f.StartTime.IsZero() {
		attrs = append(attrs, slog.Duration("elapsed", f.Elapsed()))
	}
	return slog.Group("request", attrs...)
}
