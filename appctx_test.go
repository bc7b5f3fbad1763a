// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package launchpad

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCurrent(t *testing.T) {
	t.Run("will return the installed application context", func(t *testing.T) {
		_, ok := Current()
		require.False(t, ok)

		ac := &fakeAppContext{rec: &recorder{}}
		lease, err := process.Install(ac)
		require.NoError(t, err)
		defer lease.Release()

		got, ok := Current()
		require.True(t, ok)
		require.Same(t, ac, got)
	})
}

func TestFromContext(t *testing.T) {
	t.Run("will return false", func(t *testing.T) {
		t.Run("if the context does not carry an application context", func(t *testing.T) {
			_, ok := FromContext(context.Background())
			require.False(t, ok)
		})
	})

	t.Run("will return the application context", func(t *testing.T) {
		ac := &fakeAppContext{rec: &recorder{}}

		got, ok := FromContext(NewContext(context.Background(), ac))
		require.True(t, ok)
		require.Same(t, ac, got)
	})
}

func TestState_String(t *testing.T) {
	testCases := map[State]string{
		StateInit:           "INIT",
		StateContextCreated: "CONTEXT_CREATED",
		StateListening:      "LISTENING",
		StateShuttingDown:   "SHUTTING_DOWN",
		StateStopped:        "STOPPED",
		State(42):           "UNKNOWN",
	}

	for st, want := range testCases {
		t.Run(want, func(t *testing.T) {
			require.Equal(t, want, st.String())
		})
	}
}
