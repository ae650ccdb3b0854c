package main

// Notes:
// - We do not deliver real OS signals; only cancellation through stop()
//   and the parent context is observable without platform setup.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"testing"
)

func TestSignalContext(t *testing.T) {
	t.Parallel()

	t.Run("live until stopped", func(t *testing.T) {
		t.Parallel()

		ctx, stop := signalContext(context.Background())
		if ctx.Err() != nil {
			t.Fatal("context cancelled before stop()")
		}
		stop()
		if ctx.Err() == nil {
			t.Fatal("context still live after stop()")
		}
	})

	t.Run("follows parent", func(t *testing.T) {
		t.Parallel()

		parent, cancel := context.WithCancel(context.Background())
		ctx, stop := signalContext(parent)
		defer stop()

		cancel()
		<-ctx.Done()
	})
}
