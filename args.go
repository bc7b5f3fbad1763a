// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package launchpad

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/z5labs/launchpad/config"
)

// StartupConfig is the result of parsing the startup arguments.
type StartupConfig struct {
	Port uint16

	// Path is the config file path, empty when none was given.
	Path     string
	Document *config.Document
}

// ParseOption configures [ParseArgs].
type ParseOption func(*parseOptions)

type parseOptions struct {
	envPrefix string
}

// WithEnvOverrides layers environment variables named <prefix>_<KEY> over
// the config document. A double underscore separates nesting levels, so
// APP_SERVER__WRITE_TIMEOUT overrides server.write_timeout.
func WithEnvOverrides(prefix string) ParseOption {
	return func(po *parseOptions) {
		po.envPrefix = prefix
	}
}

var (
	errArgCount = errors.New("expected <port> [<config-file-path>]")
	errBadPort  = errors.New("port must be an integer between 0 and 65535")
)

func checkArgCount(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return UsageError{Args: args, Cause: errArgCount}
	}
	return nil
}

// parsePort validates the argument count and parses the leading port.
func parsePort(args []string) (uint16, error) {
	err := checkArgCount(args)
	if err != nil {
		return 0, err
	}

	port, err := strconv.ParseUint(args[0], 10, 16)
	if err != nil {
		return 0, UsageError{
			Args:  args,
			Cause: fmt.Errorf("%w: %w", errBadPort, err),
		}
	}
	return uint16(port), nil
}

// ParseArgs turns the positional startup arguments, <port> and an optional
// config file path, into a [StartupConfig].
//
// A [UsageError] is returned for a wrong argument count or a port which is
// not a base 10 integer in [0, 65535]. Port 0 lets the OS pick a free port.
// A config file which is missing, unreadable or malformed results in a
// [ConfigLoadError]. Without a config file path the document is empty.
func ParseArgs(args []string, opts ...ParseOption) (StartupConfig, error) {
	po := parseOptions{}
	for _, opt := range opts {
		opt(&po)
	}

	port, err := parsePort(args)
	if err != nil {
		return StartupConfig{}, err
	}

	var srcs []config.Source
	sc := StartupConfig{Port: port}
	if len(args) == 2 {
		sc.Path = args[1]
		srcs = append(srcs, config.FromFile(sc.Path))
	}
	if po.envPrefix != "" {
		srcs = append(srcs, config.FromEnv(po.envPrefix))
	}

	sc.Document, err = config.Read(srcs...)
	if err != nil {
		return StartupConfig{}, ConfigLoadError{Path: sc.Path, Cause: err}
	}
	return sc, nil
}
