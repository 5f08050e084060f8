package oauth

import (
	"context"
	"time"
)

// WaitReady polls probe until it reports true, the timeout elapses, or ctx is
// cancelled. The poll is bounded and tied to the caller's lifetime: tearing down
// the consuming view cancels ctx and no timer outlives the call.
func WaitReady(
	ctx context.Context,
	probe func(context.Context) bool,
	interval, timeout time.Duration,
) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if probe(ctx) {
			return nil
		}
		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return ErrNotReady
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
