// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinary_Set(t *testing.T) {
	t.Run("will be unhealthy", func(t *testing.T) {
		t.Run("if it was never set", func(t *testing.T) {
			var m Binary
			assert.False(t, m.Healthy(context.Background()))
		})

		t.Run("if it was set back to unhealthy", func(t *testing.T) {
			var m Binary
			m.Set(true)
			m.Set(false)
			assert.False(t, m.Healthy(context.Background()))
		})
	})

	t.Run("will be healthy", func(t *testing.T) {
		t.Run("if it was set to healthy", func(t *testing.T) {
			var m Binary
			m.Set(true)
			assert.True(t, m.Healthy(context.Background()))
		})
	})
}

type healthyMetric bool

func (m healthyMetric) Healthy(_ context.Context) bool {
	return bool(m)
}

func TestAndMetric_Healthy(t *testing.T) {
	t.Run("will return true", func(t *testing.T) {
		testCases := []struct {
			Name    string
			Metrics []Metric
		}{
			{
				Name:    "if there are no metrics",
				Metrics: nil,
			},
			{
				Name:    "if all metrics are healthy",
				Metrics: []Metric{healthyMetric(true), healthyMetric(true)},
			},
			{
				Name:    "if the only unset metric is nil",
				Metrics: []Metric{healthyMetric(true), nil},
			},
		}
		for _, testCase := range testCases {
			t.Run(testCase.Name, func(t *testing.T) {
				am := And(testCase.Metrics...)
				assert.True(t, am.Healthy(context.Background()))
			})
		}
	})

	t.Run("will return false", func(t *testing.T) {
		t.Run("if one of the metrics is unhealthy", func(t *testing.T) {
			am := And(healthyMetric(true), healthyMetric(false))
			assert.False(t, am.Healthy(context.Background()))
		})
	})
}

func TestHandler(t *testing.T) {
	testCases := []struct {
		Name   string
		Metric Metric
		Status int
	}{
		{
			Name:   "healthy metric",
			Metric: healthyMetric(true),
			Status: http.StatusOK,
		},
		{
			Name:   "unhealthy metric",
			Metric: healthyMetric(false),
			Status: http.StatusServiceUnavailable,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "http://example.com/health", nil)

			Handler(testCase.Metric).ServeHTTP(w, req)

			assert.Equal(t, testCase.Status, w.Code)
		})
	}
}
