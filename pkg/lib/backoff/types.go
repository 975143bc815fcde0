package backoff

import (
	"context"
	"time"
)

// Backoff decides how long to wait before the next attempt.
type Backoff interface {
	// Backoff blocks for the backoff duration of the given attempt, or until
	// the context is done.
	Backoff(ctx context.Context, attempts int)
	// BackoffDuration returns the duration to wait before the given attempt.
	BackoffDuration(attempts int) time.Duration
}

func wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
