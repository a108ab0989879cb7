// Package shared holds small helpers used by more than one service.
package shared

import (
	"context"
	"time"
)

// SleepOrDone waits for d or until ctx is done, whichever comes first.
// It returns ctx.Err() when the context wins.
func SleepOrDone(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
