// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package config reads the structured key value document a server is started with.
package config

import (
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/z5labs/launchpad/config/key"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// Store represents a general key value structure.
type Store interface {
	Set(key.Keyer, any) error
}

// Source defines valid config sources as those who can
// serialize themselves into a key value like structure.
type Source interface {
	Apply(Store) error
}

// Document is an immutable, parsed key value document. A nil *Document
// behaves like an empty one.
type Document struct {
	m Map
}

// Empty returns a [Document] with no keys.
func Empty() *Document {
	return &Document{m: make(Map)}
}

// Read applies every source, in order, onto a single [Document].
// Subsequent sources override values set by previous sources.
func Read(srcs ...Source) (*Document, error) {
	store := make(Map)
	for _, src := range srcs {
		err := src.Apply(store)
		if err != nil {
			return nil, err
		}
	}
	return &Document{m: store}, nil
}

// Len returns the number of top level keys.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.m)
}

// Keys returns the sorted top level keys.
func (d *Document) Keys() []string {
	if d == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(d.m))
}

// Get looks up a dotted key path, e.g. "server.log.level".
func (d *Document) Get(path string) (any, bool) {
	if d == nil {
		return nil, false
	}

	chain := key.Parse(path)
	if len(chain) == 0 {
		return nil, false
	}

	var cur any = map[string]any(d.m)
	for _, k := range chain {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[k.Key()]
		if !ok {
			return nil, false
		}
	}
	return deepCopy(cur), true
}

// Sub returns the nested document found at path. If nothing is found, or
// the value is not itself a key value structure, an empty document is returned.
func (d *Document) Sub(path string) *Document {
	v, ok := d.Get(path)
	if !ok {
		return Empty()
	}
	m, ok := asMap(v)
	if !ok {
		return Empty()
	}
	return &Document{m: m}
}

// Map returns a deep copy of the underlying key value pairs.
func (d *Document) Map() map[string]any {
	if d == nil {
		return map[string]any{}
	}
	return deepCopy(map[string]any(d.m)).(map[string]any)
}

// DecodeError occurs when a [Document] cannot be decoded into
// the value given to [Document.Decode].
type DecodeError struct {
	Cause error
}

// Error implements the [error] interface.
func (e DecodeError) Error() string {
	return fmt.Sprintf("failed to decode config: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e DecodeError) Unwrap() error {
	return e.Cause
}

// ValidationError occurs when a decoded value fails its `validate` struct tags.
type ValidationError struct {
	Cause error
}

// Error implements the [error] interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid config: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ValidationError) Unwrap() error {
	return e.Cause
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode maps the document onto v using `config` struct tags. Strings are
// converted into [time.Duration], [encoding.TextUnmarshaler] and slice fields,
// the latter split on commas. If v points to a struct, the result is checked
// against its `validate` tags.
func (d *Document) Decode(v any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "config",
		Result:           v,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return DecodeError{Cause: err}
	}

	err = dec.Decode(d.Map())
	if err != nil {
		return DecodeError{Cause: err}
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return nil
	}
	err = validate.Struct(v)
	if err != nil {
		return ValidationError{Cause: err}
	}
	return nil
}

func asMap(v any) (Map, bool) {
	switch x := v.(type) {
	case Map:
		return x, true
	case map[string]any:
		return Map(x), true
	default:
		return nil, false
	}
}

func deepCopy(v any) any {
	switch x := v.(type) {
	case Map:
		return deepCopy(map[string]any(x))
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, sub := range x {
			m[k] = deepCopy(sub)
		}
		return m
	case []any:
		s := make([]any, len(x))
		for i, sub := range x {
			s[i] = deepCopy(sub)
		}
		return s
	default:
		return x
	}
}
