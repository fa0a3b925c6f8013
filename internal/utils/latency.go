package utils

import (
	"context"
	"time"
)

// Simulate blocks for d, returning early with the context's error if it is
// cancelled first. A zero or negative d returns immediately.
func Simulate(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
