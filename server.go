// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package launchpad

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/z5labs/launchpad/health"
	"github.com/z5labs/launchpad/internal/slot"
	"github.com/z5labs/launchpad/internal/try"
	"github.com/z5labs/launchpad/lifecycle"
	"github.com/z5labs/launchpad/telemetry"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Engine binds a port and serves requests until it is stopped.
type Engine interface {
	// Listen binds the port. It must not block.
	Listen(port uint16) (net.Addr, error)

	// Serve blocks until the engine stops or fails. It returns nil
	// once Stop has been called.
	Serve() error

	// Stop stops accepting new connections immediately. It may be
	// called before Serve and more than once.
	Stop() error
}

// EngineConfig is everything an [EngineBuilder] is given to build an [Engine].
type EngineConfig struct {
	Name       string
	AppContext ApplicationContext
	Settings   Settings
	Log        *slog.Logger

	// State reports the current lifecycle state of the server.
	State func() State

	Liveness  health.Metric
	Readiness health.Metric
}

// EngineBuilder builds the [Engine] once the application context is installed.
type EngineBuilder interface {
	Build(context.Context, EngineConfig) (Engine, error)
}

// EngineBuilderFunc is a functional implementation of the [EngineBuilder] interface.
type EngineBuilderFunc func(context.Context, EngineConfig) (Engine, error)

// Build implements the [EngineBuilder] interface.
func (f EngineBuilderFunc) Build(ctx context.Context, cfg EngineConfig) (Engine, error) {
	return f(ctx, cfg)
}

// Option configures a [Server].
type Option func(*Server)

// Name configures the program name used in usage messages and traces.
func Name(name string) Option {
	return func(s *Server) {
		s.name = name
	}
}

// WithEngine configures how the [Engine] is built. The default is
// [DefaultEngine] without any application routes.
func WithEngine(eb EngineBuilder) Option {
	return func(s *Server) {
		s.engine = eb
	}
}

// WithLogger overrides the logger built from the "server.log" settings.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithOutput configures where diagnostics and the default logger are written.
// The defaults are [os.Stdout] and [os.Stderr].
func WithOutput(stdout, stderr io.Writer) Option {
	return func(s *Server) {
		s.stdout = stdout
		s.stderr = stderr
	}
}

// WithParseOptions passes opts to [ParseArgs].
func WithParseOptions(opts ...ParseOption) Option {
	return func(s *Server) {
		s.parseOpts = append(s.parseOpts, opts...)
	}
}

// Server parses the startup arguments, installs the process [ApplicationContext],
// serves it through an [Engine] and shuts everything down, in reverse order,
// once its context is cancelled. A Server can only be run once.
type Server struct {
	name      string
	factory   Factory
	engine    EngineBuilder
	parseOpts []ParseOption
	stdout    io.Writer
	stderr    io.Writer
	log       *slog.Logger
	cell      *slot.Cell[ApplicationContext]

	started  atomic.Bool
	state    atomic.Int32
	live     health.Binary
	ready    health.Binary
	shutOnce sync.Once
}

// New returns a fully initialized Server.
func New(f Factory, opts ...Option) *Server {
	var name string
	if len(os.Args) > 0 {
		name = filepath.Base(os.Args[0])
	}
	s := &Server{
		name:    name,
		factory: f,
		engine:  DefaultEngine(nil),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		cell:    &process,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	return State(s.state.Load())
}

func (s *Server) setState(st State) {
	s.state.Store(int32(st))
	if s.log != nil {
		s.log.Debug("server state changed", slog.String("state", st.String()))
	}
}

var errAlreadyRun = errors.New("server has already been run")

// Run parses args and runs the server until ctx is cancelled. A clean,
// cancellation driven shutdown returns nil. Any other outcome is one of
// [UsageError], [ConfigLoadError], [SingletonViolationError], [BindError]
// or [UnexpectedStartupError].
func (s *Server) Run(ctx context.Context, args ...string) error {
	if !s.started.CompareAndSwap(false, true) {
		return UnexpectedStartupError{Cause: errAlreadyRun}
	}

	// cobra routes its hidden completion commands before any validation runs
	_, err := parsePort(args)
	if err != nil {
		return err
	}

	cmd := buildCmd(s)

	// cobra falls back to os.Args when given a nil slice
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(s.stdout)
	cmd.SetErr(s.stderr)

	return cmd.ExecuteContext(ctx)
}

func buildCmd(s *Server) *cobra.Command {
	var sc StartupConfig

	return &cobra.Command{
		Use:                s.name + " <port> [<config-file-path>]",
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		Args: func(cmd *cobra.Command, args []string) error {
			return checkArgCount(args)
		},
		PreRunE: func(cmd *cobra.Command, args []string) (err error) {
			sc, err = ParseArgs(args, s.parseOpts...)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.run(cmd.Context(), sc)
		},
	}
}

func (s *Server) run(ctx context.Context, sc StartupConfig) (err error) {
	var rel lifecycle.Stack
	defer func() {
		if err == nil {
			return
		}
		rel.Release(context.WithoutCancel(ctx), func(name string, rerr error) {
			s.logger().Debug(
				"suppressed release failure during startup",
				slog.String("resource", name),
				slog.Any("error", rerr),
			)
		})
	}()
	defer func() {
		if err != nil {
			err = unexpected(err)
		}
	}()
	defer try.Recover(&err)

	settings, err := decodeSettings(sc.Document)
	if err != nil {
		return ConfigLoadError{Path: sc.Path, Cause: err}
	}
	if s.log == nil {
		s.log = newLogger(s.stderr, settings.Log)
	}

	tp, err := telemetry.Init(ctx, settings.Telemetry, telemetry.StdoutWriter(s.stdout))
	if err != nil {
		return err
	}
	rel.Push("telemetry", lifecycle.HookFunc(tp.Shutdown))

	if s.cell.Occupied() {
		return SingletonViolationError{Cause: slot.ErrOccupied}
	}

	lc := &lifecycle.Context{}
	rel.Push("post run hooks", lifecycle.HookFunc(func(ctx context.Context) error {
		return lc.PostRun().Run(ctx)
	}))

	ac, err := s.factory.Create(lifecycle.NewContext(ctx, lc), sc.Document)
	if err != nil {
		return err
	}
	if ac == nil {
		return errNilAppContext
	}
	rel.Push("application context", lifecycle.HookFunc(func(ctx context.Context) error {
		return ac.Close()
	}))

	lease, err := s.cell.Install(ac)
	if err != nil {
		return SingletonViolationError{Cause: err}
	}
	rel.Push("process slot", lifecycle.HookFunc(func(ctx context.Context) error {
		lease.Release()
		return nil
	}))
	s.setState(StateContextCreated)

	eng, err := s.engine.Build(ctx, EngineConfig{
		Name:       s.name,
		AppContext: ac,
		Settings:   settings,
		Log:        s.log,
		State:      s.State,
		Liveness:   &s.live,
		Readiness:  &s.ready,
	})
	if err != nil {
		return err
	}
	rel.Push("engine", lifecycle.HookFunc(func(ctx context.Context) error {
		return eng.Stop()
	}))

	addr, err := eng.Listen(sc.Port)
	if err != nil {
		return BindError{Port: sc.Port, Cause: err}
	}
	s.setState(StateListening)
	s.live.Set(true)
	s.ready.Set(true)
	s.log.InfoContext(ctx, "listening", slog.Any("addr", addr))

	return s.serve(ctx, eng, &rel)
}

var (
	errNilAppContext  = errors.New("factory returned a nil application context")
	errEngineReturned = errors.New("engine stopped serving before shutdown")
)

func (s *Server) serve(ctx context.Context, eng Engine, rel *lifecycle.Stack) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defer try.Recover(&err)

		err = eng.Serve()
		if err == nil && ctx.Err() == nil {
			return errEngineReturned
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() == nil {
			// serving failed, the failure path releases everything
			return nil
		}
		s.shutdown(context.WithoutCancel(ctx), rel)
		return nil
	})
	return g.Wait()
}

// shutdown releases every acquired resource, most recent first, so the
// engine always stops before the application context is closed.
func (s *Server) shutdown(ctx context.Context, rel *lifecycle.Stack) {
	s.shutOnce.Do(func() {
		s.setState(StateShuttingDown)
		s.ready.Set(false)
		s.log.InfoContext(ctx, "shutting down")

		rel.Release(ctx, func(name string, err error) {
			s.log.ErrorContext(
				ctx,
				"failed to release resource during shutdown",
				slog.Any("error", ShutdownResourceError{Resource: name, Cause: err}),
			)
		})

		s.live.Set(false)
		s.setState(StateStopped)
		s.log.InfoContext(ctx, "stopped")
	})
}

func (s *Server) logger() *slog.Logger {
	if s.log != nil {
		return s.log
	}
	return slog.New(slog.DiscardHandler)
}

// Main runs the server with args until SIGINT or SIGTERM is received,
// prints a diagnostic for any failure and returns the process exit code.
func (s *Server) Main(args []string) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := s.Run(ctx, args...)
	s.report(err)
	return ExitCode(err)
}

func (s *Server) report(err error) {
	if err == nil {
		return
	}

	var (
		uerr  UsageError
		serr  SingletonViolationError
		unerr UnexpectedStartupError
	)
	switch {
	case errors.As(err, &uerr):
		fmt.Fprintln(s.stderr, err)
		fmt.Fprintf(s.stderr, "usage: %s <port> [<config-file-path>]\n", s.name)
	case errors.As(err, &serr):
		fmt.Fprintln(s.stdout, err)
	case errors.As(err, &unerr):
		fmt.Fprintln(s.stdout, err)
		s.stdout.Write(unerr.Stack)
	default:
		fmt.Fprintln(s.stderr, err)
	}
}

// Main builds a [Server] and runs it with the process arguments, then
// exits the process with the resulting exit code.
func Main(f Factory, opts ...Option) {
	os.Exit(New(f, opts...).Main(os.Args[1:]))
}
