package testutil

import (
	"context"
	"testing"

	"github.com/kbukum/speechkit/component"
)

// Start starts c and stops it when the test ends.
func Start(tb testing.TB, c component.Component) {
	tb.Helper()
	StartWithContext(tb, context.Background(), c)
}

// StartWithContext starts c with ctx and registers Stop with tb.Cleanup.
func StartWithContext(tb testing.TB, ctx context.Context, c component.Component) {
	tb.Helper()
	if err := c.Start(ctx); err != nil {
		tb.Fatalf("failed to start component %s: %v", c.Name(), err)
	}
	tb.Cleanup(func() {
		if err := c.Stop(context.Background()); err != nil {
			tb.Errorf("failed to stop component %s: %v", c.Name(), err)
		}
	})
}
