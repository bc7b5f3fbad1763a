// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package engine provides the default HTTP engine used by launchpad: a
// [net/http] server which binds a TCP port and can be stopped immediately.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

// ErrNotListening is returned by [Engine.Serve] if [Engine.Listen]
// has not successfully been called first.
var ErrNotListening = errors.New("engine: not listening")

// Options configures an [Engine].
type Options struct {
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	Logger            *slog.Logger
}

// Option is a functional option for configuring an [Engine].
type Option func(*Options)

// ReadTimeout sets the maximum duration for reading the entire
// request, including the body. The default is 5 seconds.
func ReadTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ReadTimeout = d
	}
}

// ReadHeaderTimeout sets the maximum duration for reading
// request headers. The default is 2 seconds.
func ReadHeaderTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ReadHeaderTimeout = d
	}
}

// WriteTimeout sets the maximum duration before timing out
// writes of the response. The default is 10 seconds.
func WriteTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.WriteTimeout = d
	}
}

// IdleTimeout sets the maximum duration to wait for the next request
// when keep-alives are enabled. The default is 120 seconds.
func IdleTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.IdleTimeout = d
	}
}

// MaxHeaderBytes sets the maximum number of bytes the server will read
// parsing the request header. The default is 1048576 bytes (1 MB).
func MaxHeaderBytes(n int) Option {
	return func(o *Options) {
		o.MaxHeaderBytes = n
	}
}

// Logger sets the logger used for server errors and engine events.
func Logger(log *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = log
	}
}

// Engine binds a TCP port and dispatches requests to an [http.Handler].
type Engine struct {
	log *slog.Logger
	srv *http.Server

	mu       sync.Mutex
	ln       net.Listener
	stopped  bool
	stopOnce sync.Once
	stopErr  error
}

// New returns an Engine which serves h once it is listening.
// Options which are not given keep their documented defaults.
func New(h http.Handler, opts ...Option) *Engine {
	o := Options{
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1048576,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}

	return &Engine{
		log: o.Logger,
		srv: &http.Server{
			Handler:           h,
			ReadTimeout:       o.ReadTimeout,
			ReadHeaderTimeout: o.ReadHeaderTimeout,
			WriteTimeout:      o.WriteTimeout,
			IdleTimeout:       o.IdleTimeout,
			MaxHeaderBytes:    o.MaxHeaderBytes,
			ErrorLog:          slog.NewLogLogger(o.Logger.Handler(), slog.LevelError),
		},
	}
}

// Listen binds the given TCP port on all interfaces. Port 0 picks any free port.
func (e *Engine) Listen(port uint16) (net.Addr, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return nil, http.ErrServerClosed
	}
	if e.ln != nil {
		return nil, fmt.Errorf("engine: already listening on %s", e.ln.Addr())
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, err
	}
	e.ln = ln
	e.log.Debug("bound listener", slog.String("addr", ln.Addr().String()))
	return ln.Addr(), nil
}

// Addr returns the bound address, or nil if the engine is not listening.
func (e *Engine) Addr() net.Addr {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ln == nil {
		return nil
	}
	return e.ln.Addr()
}

// Serve accepts connections until [Engine.Stop] is called. It returns
// nil once the engine has been stopped.
func (e *Engine) Serve() error {
	e.mu.Lock()
	ln := e.ln
	e.mu.Unlock()

	if ln == nil {
		return ErrNotListening
	}

	err := e.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop immediately closes the listener and every open connection. It does
// not wait for in-flight requests. Calling Stop more than once is safe.
func (e *Engine) Stop() error {
	e.stopOnce.Do(func() {
		e.mu.Lock()
		e.stopped = true
		ln := e.ln
		e.mu.Unlock()

		err := e.srv.Close()

		// Serve may not have started tracking the listener yet.
		if ln != nil {
			lerr := ln.Close()
			if lerr != nil && !errors.Is(lerr, net.ErrClosed) {
				err = errors.Join(err, lerr)
			}
		}
		e.stopErr = err
		e.log.Debug("stopped engine")
	})
	return e.stopErr
}
