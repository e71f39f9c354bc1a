package main

import (
	"context"
	"sync"

	"github.com/spf13/cobra"
)

type cleanupKey struct{}

type cleanupStack struct {
	mu  sync.Mutex
	fns []func()
}

// addCleanup registers fn to run when the command finishes, whether or not
// it succeeded.
func addCleanup(cmd *cobra.Command, fn func()) {
	st, ok := cmd.Context().Value(cleanupKey{}).(*cleanupStack)
	if !ok {
		st = &cleanupStack{}
		cmd.SetContext(context.WithValue(cmd.Context(), cleanupKey{}, st))
	}
	st.mu.Lock()
	st.fns = append(st.fns, fn)
	st.mu.Unlock()
}

// runCleanups runs registered cleanups in reverse order. Each runs once.
func runCleanups(cmd *cobra.Command) {
	if cmd == nil || cmd.Context() == nil {
		return
	}
	st, ok := cmd.Context().Value(cleanupKey{}).(*cleanupStack)
	if !ok {
		return
	}
	st.mu.Lock()
	fns := st.fns
	st.fns = nil
	st.mu.Unlock()
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
