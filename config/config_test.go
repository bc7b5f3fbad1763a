// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type sourceFunc func(Store) error

func (f sourceFunc) Apply(store Store) error {
	return f(store)
}

func TestRead(t *testing.T) {
	t.Run("will return an empty document", func(t *testing.T) {
		t.Run("if no sources are given", func(t *testing.T) {
			doc, err := Read()
			require.NoError(t, err)
			require.Zero(t, doc.Len())
			require.Empty(t, doc.Keys())
		})
	})

	t.Run("will let later sources override earlier ones", func(t *testing.T) {
		doc, err := Read(
			Map{"a": 1, "b": map[string]any{"c": "one"}},
			Map{"b": map[string]any{"c": "two"}},
		)
		require.NoError(t, err)

		v, ok := doc.Get("b.c")
		require.True(t, ok)
		require.Equal(t, "two", v)

		v, ok = doc.Get("a")
		require.True(t, ok)
		require.Equal(t, 1, v)
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if a source fails to apply", func(t *testing.T) {
			srcErr := errors.New("failed to apply")
			_, err := Read(sourceFunc(func(s Store) error {
				return srcErr
			}))
			require.ErrorIs(t, err, srcErr)
		})
	})
}

func TestDocument_Get(t *testing.T) {
	doc, err := Read(FromJson(strings.NewReader(`{"db":{"url":"postgres://","pool":{"size":4}},"tags":["a","b"]}`)))
	require.NoError(t, err)

	testCases := []struct {
		name     string
		path     string
		expected any
		found    bool
	}{
		{
			name:     "top level scalar list",
			path:     "tags",
			expected: []any{"a", "b"},
			found:    true,
		},
		{
			name:     "nested value",
			path:     "db.pool.size",
			expected: float64(4),
			found:    true,
		},
		{
			name:  "missing key",
			path:  "db.user",
			found: false,
		},
		{
			name:  "path through a scalar",
			path:  "db.url.host",
			found: false,
		},
		{
			name:  "empty path",
			path:  "",
			found: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, ok := doc.Get(tc.path)
			require.Equal(t, tc.found, ok)
			require.Equal(t, tc.expected, v)
		})
	}
}

func TestDocument_immutability(t *testing.T) {
	t.Run("will not be changed through the values it returns", func(t *testing.T) {
		doc, err := Read(Map{"db": map[string]any{"pool": 4}})
		require.NoError(t, err)

		m := doc.Map()
		m["db"].(map[string]any)["pool"] = 8

		v, ok := doc.Get("db")
		require.True(t, ok)
		v.(map[string]any)["pool"] = 16

		got, _ := doc.Get("db.pool")
		require.Equal(t, 4, got)
	})
}

func TestDocument_Sub(t *testing.T) {
	doc, err := Read(Map{"server": map[string]any{"metrics_path": "/m"}, "port": 1})
	require.NoError(t, err)

	t.Run("will return the nested document", func(t *testing.T) {
		sub := doc.Sub("server")
		require.Equal(t, []string{"metrics_path"}, sub.Keys())
	})

	t.Run("will return an empty document", func(t *testing.T) {
		t.Run("if the key is missing", func(t *testing.T) {
			require.Zero(t, doc.Sub("missing").Len())
		})

		t.Run("if the key holds a scalar", func(t *testing.T) {
			require.Zero(t, doc.Sub("port").Len())
		})
	})
}

func TestDocument_nil(t *testing.T) {
	var doc *Document

	require.Zero(t, doc.Len())
	require.Nil(t, doc.Keys())
	require.Empty(t, doc.Map())

	_, ok := doc.Get("a")
	require.False(t, ok)

	var v struct {
		A string `config:"a"`
	}
	require.NoError(t, doc.Decode(&v))
}

func TestDocument_Decode(t *testing.T) {
	type settings struct {
		Timeout time.Duration `config:"timeout"`
		Level   string        `config:"level" validate:"omitempty,oneof=debug info"`
		Workers int           `config:"workers" validate:"gte=0"`
		Tags    []string      `config:"tags"`
	}

	testCases := []struct {
		name      string
		doc       Map
		expected  settings
		expectErr any
	}{
		{
			name: "durations from strings",
			doc:  Map{"timeout": "150ms", "level": "debug", "workers": 2},
			expected: settings{
				Timeout: 150 * time.Millisecond,
				Level:   "debug",
				Workers: 2,
			},
		},
		{
			name:     "weakly typed numbers",
			doc:      Map{"workers": "3"},
			expected: settings{Workers: 3},
		},
		{
			name:     "comma separated slices",
			doc:      Map{"tags": "a,b"},
			expected: settings{Tags: []string{"a", "b"}},
		},
		{
			name:     "slices",
			doc:      Map{"tags": []any{"a", "b"}},
			expected: settings{Tags: []string{"a", "b"}},
		},
		{
			name:      "bad duration",
			doc:       Map{"timeout": "soon"},
			expectErr: &DecodeError{},
		},
		{
			name:      "failed validation",
			doc:       Map{"level": "trace"},
			expectErr: &ValidationError{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := Read(tc.doc)
			require.NoError(t, err)

			var s settings
			err = doc.Decode(&s)
			if tc.expectErr != nil {
				require.ErrorAs(t, err, tc.expectErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, s)
		})
	}
}
