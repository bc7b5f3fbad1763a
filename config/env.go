// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"os"
	"strings"

	"github.com/z5labs/launchpad/config/key"
)

// Env represents a Source where its underlying values
// are extracted from environment variables.
type Env struct {
	prefix  string
	environ func() []string
}

// FromEnv returns a Source which applies every environment variable
// named PREFIX_NAME as the lower cased key "name". A double underscore
// in NAME nests keys, so PREFIX_SERVER__LOG__LEVEL sets "server.log.level".
func FromEnv(prefix string) Env {
	return Env{
		prefix:  prefix,
		environ: os.Environ,
	}
}

// Apply implements the Source interface.
func (src Env) Apply(store Store) error {
	prefix := strings.ToUpper(src.prefix) + "_"
	for _, pair := range src.environ() {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name, ok := strings.CutPrefix(k, prefix)
		if !ok || name == "" {
			continue
		}

		parts := strings.Split(strings.ToLower(name), "__")
		chain := make(key.Chain, 0, len(parts))
		for _, p := range parts {
			if p == "" {
				continue
			}
			chain = append(chain, key.Name(p))
		}
		if len(chain) == 0 {
			continue
		}

		err := store.Set(chain, v)
		if err != nil {
			return err
		}
	}
	return nil
}
