package backoff

import (
	"context"
	"time"
)

// Fixed implements a backoff strategy that waits the same duration
// before every retry.
type Fixed struct {
	Interval time.Duration
}

func NewFixed(interval time.Duration) *Fixed {
	return &Fixed{Interval: interval}
}

func (b *Fixed) Backoff(ctx context.Context, attempts int) {
	wait(ctx, b.BackoffDuration(attempts))
}

func (b *Fixed) BackoffDuration(attempts int) time.Duration {
	if attempts == 0 {
		return 0
	}
	return b.Interval
}

// compile time check whether the Fixed implements the Backoff interface.
var _ Backoff = (*Fixed)(nil)
