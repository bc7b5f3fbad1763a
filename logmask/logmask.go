// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package logmask provides an slog.Handler which hides the values of
// selected attributes, e.g. session ids, before they are written.
package logmask

import (
	"context"
	"log/slog"
)

// Masked is the value written in place of a masked attribute.
const Masked = "****"

// Handler is an slog.Handler which replaces the value of every attribute,
// at any group depth, whose key is one of the masked keys.
type Handler struct {
	slog slog.Handler
	keys map[string]struct{}
}

// NewHandler wraps h. With no keys, h is returned as is.
func NewHandler(h slog.Handler, keys ...string) slog.Handler {
	if len(keys) == 0 {
		return h
	}

	ks := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		ks[k] = struct{}{}
	}
	return &Handler{
		slog: h,
		keys: ks,
	}
}

// Enabled implements the slog.Handler interface.
func (h *Handler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.slog.Enabled(ctx, lvl)
}

// Handle implements the slog.Handler interface.
func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	nr := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(a slog.Attr) bool {
		nr.AddAttrs(h.mask(a))
		return true
	})
	return h.slog.Handle(ctx, nr)
}

// WithAttrs implements the slog.Handler interface.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.mask(a)
	}
	return &Handler{
		slog: h.slog.WithAttrs(masked),
		keys: h.keys,
	}
}

// WithGroup implements the slog.Handler interface.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{
		slog: h.slog.WithGroup(name),
		keys: h.keys,
	}
}

func (h *Handler) mask(a slog.Attr) slog.Attr {
	if _, ok := h.keys[a.Key]; ok {
		return slog.String(a.Key, Masked)
	}

	v := a.Value.Resolve()
	if v.Kind() != slog.KindGroup {
		return a
	}

	group := v.Group()
	attrs := make([]slog.Attr, len(group))
	for i, ga := range group {
		attrs[i] = h.mask(ga)
	}
	return slog.Attr{Key: a.Key, Value: slog.GroupValue(attrs...)}
}
