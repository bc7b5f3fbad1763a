// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package launchpad

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/z5labs/launchpad/internal/try"
)

// Process exit codes returned by [Server.Main].
const (
	ExitOK         = 0
	ExitUsage      = 1
	ExitConfig     = 2
	ExitUnexpected = 3
	ExitBind       = 4
)

// UsageError occurs when the startup arguments are missing or malformed.
type UsageError struct {
	Args  []string
	Cause error
}

// Error implements the [builtin.error] interface.
func (e UsageError) Error() string {
	return fmt.Sprintf("invalid arguments %q: %s", e.Args, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e UsageError) Unwrap() error {
	return e.Cause
}

// ConfigLoadError occurs when the config file cannot be read, cannot be
// parsed or holds invalid server settings.
type ConfigLoadError struct {
	Path  string
	Cause error
}

// Error implements the [builtin.error] interface.
func (e ConfigLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to load config: %s", e.Cause)
	}
	return fmt.Sprintf("failed to load config file %s: %s", e.Path, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ConfigLoadError) Unwrap() error {
	return e.Cause
}

// SingletonViolationError occurs when an [ApplicationContext] is already
// installed in this process.
type SingletonViolationError struct {
	Cause error
}

// Error implements the [builtin.error] interface.
func (e SingletonViolationError) Error() string {
	return fmt.Sprintf("an application context is already installed in this process: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e SingletonViolationError) Unwrap() error {
	return e.Cause
}

// BindError occurs when the [Engine] cannot listen on the requested port.
type BindError struct {
	Port  uint16
	Cause error
}

// Error implements the [builtin.error] interface.
func (e BindError) Error() string {
	return fmt.Sprintf("failed to bind port %d: %s", e.Port, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e BindError) Unwrap() error {
	return e.Cause
}

// UnexpectedStartupError wraps any other failure, including panics, which
// happens while the server starts or runs. Stack holds the goroutine stack
// at the point of the panic or, for plain errors, where it was detected.
type UnexpectedStartupError struct {
	Cause error
	Stack []byte
}

// Error implements the [builtin.error] interface.
func (e UnexpectedStartupError) Error() string {
	return fmt.Sprintf("unexpected startup failure: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e UnexpectedStartupError) Unwrap() error {
	return e.Cause
}

// ShutdownResourceError describes a resource which failed to release during
// shutdown. It is only ever logged.
type ShutdownResourceError struct {
	Resource string
	Cause    error
}

// Error implements the [builtin.error] interface.
func (e ShutdownResourceError) Error() string {
	return fmt.Sprintf("failed to release %s: %s", e.Resource, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ShutdownResourceError) Unwrap() error {
	return e.Cause
}

// ExitCode maps err to the process exit code. A nil error maps to [ExitOK]
// and errors of an unknown type to [ExitUnexpected].
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var uerr UsageError
	if errors.As(err, &uerr) {
		return ExitUsage
	}
	var cerr ConfigLoadError
	if errors.As(err, &cerr) {
		return ExitConfig
	}
	var berr BindError
	if errors.As(err, &berr) {
		return ExitBind
	}
	return ExitUnexpected
}

// unexpected wraps err into an UnexpectedStartupError unless it
// already is one of the typed startup errors.
func unexpected(err error) error {
	var (
		uerr  UsageError
		cerr  ConfigLoadError
		serr  SingletonViolationError
		berr  BindError
		unerr UnexpectedStartupError
	)
	switch {
	case errors.As(err, &uerr), errors.As(err, &cerr), errors.As(err, &serr), errors.As(err, &berr), errors.As(err, &unerr):
		return err
	}

	var perr try.PanicError
	if errors.As(err, &perr) {
		return UnexpectedStartupError{Cause: err, Stack: perr.Stack}
	}
	return UnexpectedStartupError{Cause: err, Stack: debug.Stack()}
}
