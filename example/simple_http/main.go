// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command simple_http serves a greeting and a hit counter.
//
//	simple_http 8080 config.yaml
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/z5labs/launchpad"
	"github.com/z5labs/launchpad/config"
	"github.com/z5labs/launchpad/health"
	"github.com/z5labs/launchpad/lifecycle"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
)

type Config struct {
	Greeting string `config:"greeting" validate:"required"`
}

type appContext struct {
	health.Binary

	greeting string

	mu   sync.Mutex
	hits map[string]int
}

func (ac *appContext) hit(name string) int {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	ac.hits[name]++
	return ac.hits[name]
}

func (ac *appContext) Close() error {
	ac.Set(false)

	ac.mu.Lock()
	defer ac.mu.Unlock()
	ac.hits = nil
	return nil
}

func newAppContext(ctx context.Context, doc *config.Document) (launchpad.ApplicationContext, error) {
	cfg := Config{Greeting: "Hello"}
	err := doc.Sub("app").Decode(&cfg)
	if err != nil {
		return nil, err
	}

	ac := &appContext{
		greeting: cfg.Greeting,
		hits:     make(map[string]int),
	}
	ac.Set(true)

	lc, ok := lifecycle.FromContext(ctx)
	if ok {
		lc.OnPostRun(lifecycle.HookFunc(func(ctx context.Context) error {
			slog.InfoContext(ctx, "application context released")
			return nil
		}))
	}
	return ac, nil
}

func routes(r chi.Router) {
	r.Get("/hello/{name}", func(w http.ResponseWriter, r *http.Request) {
		_, span := otel.Tracer("simple_http").Start(r.Context(), "hello")
		defer span.End()

		v, ok := launchpad.FromContext(r.Context())
		if !ok {
			http.Error(w, "no application context", http.StatusInternalServerError)
			return
		}
		ac := v.(*appContext)

		name := chi.URLParam(r, "name")
		resp := struct {
			Message string `json:"message"`
			Hits    int    `json:"hits"`
		}{
			Message: ac.greeting + ", " + name,
			Hits:    ac.hit(name),
		}

		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(resp)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

func main() {
	launchpad.Main(
		launchpad.FactoryFunc(newAppContext),
		launchpad.Name("simple_http"),
		launchpad.WithEngine(launchpad.DefaultEngine(routes)),
		launchpad.WithParseOptions(launchpad.WithEnvOverrides("SIMPLE_HTTP")),
	)
}
