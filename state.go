// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package launchpad

// State is a step of the [Server] lifecycle.
type State int32

const (
	StateInit State = iota
	StateContextCreated
	StateListening
	StateShuttingDown
	StateStopped
)

// String implements the [fmt.Stringer] interface.
func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateContextCreated:
		return "CONTEXT_CREATED"
	case StateListening:
		return "LISTENING"
	case StateShuttingDown:
		return "SHUTTING_DOWN"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}
