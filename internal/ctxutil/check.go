// Package ctxutil provides context utility functions.
package ctxutil

import (
	"context"
	"time"
)

// Canceled checks if the context has been canceled or exceeded its deadline.
// Returns the context error if done (Canceled or DeadlineExceeded), nil otherwise.
func Canceled(ctx context.Context) error {
	return ctx.Err()
}

// Cleanup returns a context for teardown work that must run even after ctx was
// canceled (for example by Ctrl+C). Values such as the logger are kept; the
// cancellation is not. A zero timeout means no deadline.
func Cleanup(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if timeout <= 0 {
		return context.WithCancel(detached)
	}
	return context.WithTimeout(detached, timeout)
}
