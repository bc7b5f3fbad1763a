// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/z5labs/launchpad/config/key"

	"github.com/stretchr/testify/assert"
)

type storeFunc func(key.Keyer, any) error

func (f storeFunc) Set(k key.Keyer, v any) error {
	return f(k, v)
}

func TestMap_Apply(t *testing.T) {
	t.Run("will properly construct key.Chain for", func(t *testing.T) {
		testCases := []struct {
			Name   string
			M      Map
			Chains []string
		}{
			{
				Name: "multiple top level keys",
				M: Map{
					"hello": "world",
					"one":   1,
				},
				Chains: []string{"hello", "one"},
			},
			{
				Name: "sibling nested keys",
				M: Map{
					"server": map[string]any{
						"read_timeout": "5s",
						"log": map[string]any{
							"level": "debug",
						},
					},
				},
				Chains: []string{"server.log.level", "server.read_timeout"},
			},
		}

		for _, testCase := range testCases {
			t.Run(testCase.Name, func(t *testing.T) {
				var chains []string
				store := storeFunc(func(k key.Keyer, v any) error {
					chains = append(chains, k.Key())
					return nil
				})

				err := testCase.M.Apply(store)
				if !assert.Nil(t, err) {
					return
				}

				slices.Sort(chains)
				if !assert.Equal(t, testCase.Chains, chains) {
					return
				}
			})
		}
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the store fails to set a value", func(t *testing.T) {
			setErr := errors.New("failed to set")
			store := storeFunc(func(k key.Keyer, v any) error {
				return setErr
			})

			err := Map{"a": 1}.Apply(store)
			if !assert.ErrorIs(t, err, setErr) {
				return
			}
		})
	})
}

type unknownKey struct{}

func (unknownKey) Key() string { return "unknown" }

func TestMap_Set(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the key.Keyer is unknown", func(t *testing.T) {
			err := Map{}.Set(unknownKey{}, 1)

			var kerr UnknownKeyerError
			if !assert.ErrorAs(t, err, &kerr) {
				return
			}
		})

		t.Run("if the key chain is empty", func(t *testing.T) {
			err := Map{}.Set(key.Chain{}, 1)

			var cerr EmptyKeyChainError
			if !assert.ErrorAs(t, err, &cerr) {
				return
			}
		})

		t.Run("if a nested key is set beneath a scalar value", func(t *testing.T) {
			m := Map{"a": 1}
			err := m.Set(key.Parse("a.b"), 2)

			var terr UnexpectedKeyValueTypeError
			if !assert.ErrorAs(t, err, &terr) {
				return
			}
			if !assert.True(t, strings.Contains(terr.Error(), "a")) {
				return
			}
		})
	})
}
