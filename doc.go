// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package launchpad starts an HTTP service from a main function and owns its
// lifecycle until the process is told to terminate.
//
// A service is described by two things:
//
//   - Factory: builds the one [ApplicationContext] the process is allowed to
//     hold, e.g. connection pools and caches, from the parsed config document.
//   - EngineBuilder: builds the [Engine] which binds the port and serves
//     requests. [DefaultEngine] serves a chi route table.
//
// # Basic Usage
//
//	func main() {
//	    launchpad.Main(
//	        launchpad.FactoryFunc(newAppContext),
//	        launchpad.WithEngine(launchpad.DefaultEngine(routes)),
//	    )
//	}
//
// The resulting program is invoked as:
//
//	<program> <port> [<config-file-path>]
//
// # Lifecycle
//
// A [Server] moves through [StateInit], [StateContextCreated], [StateListening],
// [StateShuttingDown] and [StateStopped]. On SIGINT or SIGTERM the engine is
// stopped before the application context is closed, so no request handler
// observes a released context. Errors during shutdown are logged and never
// prevent the remaining steps from running.
//
// # Exit Codes
//
//   - 0: clean, signal driven shutdown
//   - 1: [UsageError]
//   - 2: [ConfigLoadError]
//   - 3: [UnexpectedStartupError] and [SingletonViolationError]
//   - 4: [BindError]
package launchpad
