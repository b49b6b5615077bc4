package testutil

import (
	"context"
	"testing"

	"github.com/udisondev/pathgen/internal/world"
)

// StartWorld runs the world update loop until the test ends.
// Returned context is canceled on cleanup.
func StartWorld(t testing.TB, w *world.Manager) context.Context {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return ctx
}
