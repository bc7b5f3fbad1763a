// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package logctx

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	return m
}

func TestHandler_Handle(t *testing.T) {
	t.Run("will not add any groups", func(t *testing.T) {
		t.Run("if the context carries no fields or span", func(t *testing.T) {
			var buf bytes.Buffer
			log := New(slog.NewJSONHandler(&buf, nil))

			log.InfoContext(context.Background(), "hello")

			m := decodeRecord(t, &buf)
			require.NotContains(t, m, "request")
			require.NotContains(t, m, "otel")
		})
	})

	t.Run("will add the request group", func(t *testing.T) {
		t.Run("if the context carries fields", func(t *testing.T) {
			var buf bytes.Buffer
			log := New(slog.NewJSONHandler(&buf, nil))

			ctx := NewContext(context.Background(), Fields{
				RequestID: "req-1",
				IPAddress: "10.0.0.1",
				Domain:    "example.org",
				SessionID: "abc",
				StartTime: time.Now(),
			})
			log.InfoContext(ctx, "hello")

			m := decodeRecord(t, &buf)
			req, ok := m["request"].(map[string]any)
			require.True(t, ok)
			require.Equal(t, "req-1", req["id"])
			require.Equal(t, "10.0.0.1", req["ip"])
			require.Equal(t, "example.org", req["domain"])
			require.Equal(t, "abc", req["session_id"])
			require.Contains(t, req, "elapsed")
		})
	})

	t.Run("will add the otel group", func(t *testing.T) {
		t.Run("if the context carries a valid span context", func(t *testing.T) {
			var buf bytes.Buffer
			log := New(slog.NewJSONHandler(&buf, nil)).With("component", "test")

			sc := trace.NewSpanContext(trace.SpanContextConfig{
				TraceID: trace.TraceID{1},
				SpanID:  trace.SpanID{2},
			})
			ctx := trace.ContextWithSpanContext(context.Background(), sc)
			log.InfoContext(ctx, "hello")

			m := decodeRecord(t, &buf)
			require.Equal(t, "test", m["component"])

			otel, ok := m["otel"].(map[string]any)
			require.True(t, ok)
			require.Equal(t, sc.TraceID().String(), otel["trace_id"])
			require.Equal(t, sc.SpanID().String(), otel["span_id"])
		})
	})
}

func TestFields_Elapsed(t *testing.T) {
	require.Zero(t, Fields{}.Elapsed())
	require.Greater(t, Fields{StartTime: time.Now().Add(-time.Second)}.Elapsed(), time.Duration(0))
}

func TestMiddleware(t *testing.T) {
	var got Fields
	var found bool
	h := middleware.RequestID(Middleware("session")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = FromContext(r.Context())
	})))

	req := httptest.NewRequest(http.MethodGet, "http://example.org:8080/things", nil)
	req.RemoteAddr = "192.0.2.7:51234"
	req.AddCookie(&http.Cookie{Name: "session", Value: "s-1"})

	h.ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, found)
	require.NotEmpty(t, got.RequestID)
	require.Equal(t, "192.0.2.7", got.IPAddress)
	require.Equal(t, "example.org", got.Domain)
	require.Equal(t, "s-1", got.SessionID)
	require.False(t, got.StartTime.IsZero())
}
