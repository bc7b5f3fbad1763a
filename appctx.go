// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package launchpad

import (
	"context"

	"github.com/z5labs/launchpad/config"
	"github.com/z5labs/launchpad/internal/slot"
)

// ApplicationContext is the long lived bundle of application resources,
// e.g. connection pools and caches. Close is called exactly once, after
// the [Engine] has stopped.
//
// If an ApplicationContext also implements [health.Metric], the
// default engine reports it as part of readiness.
type ApplicationContext interface {
	Close() error
}

// Factory builds the [ApplicationContext] from the parsed config document.
// The context given to Create carries a [lifecycle.Context] which can be
// used to register hooks that run after the application context is closed.
type Factory interface {
	Create(context.Context, *config.Document) (ApplicationContext, error)
}

// FactoryFunc is a functional implementation of the [Factory] interface.
type FactoryFunc func(context.Context, *config.Document) (ApplicationContext, error)

// Create implements the [Factory] interface.
func (f FactoryFunc) Create(ctx context.Context, doc *config.Document) (ApplicationContext, error) {
	return f(ctx, doc)
}

var process slot.Cell[ApplicationContext]

// Current returns the ApplicationContext installed in this process, if any.
func Current() (ApplicationContext, bool) {
	return process.Load()
}

type appContextKey struct{}

// NewContext returns a copy of parent which carries ac.
func NewContext(parent context.Context, ac ApplicationContext) context.Context {
	return context.WithValue(parent, appContextKey{}, ac)
}

// FromContext returns the ApplicationContext carried by ctx. The default
// engine stores it on every request context.
func FromContext(ctx context.Context) (ApplicationContext, bool) {
	ac, ok := ctx.Value(appContextKey{}).(ApplicationContext)
	return ac, ok
}
