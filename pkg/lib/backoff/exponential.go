package backoff

import (
	"context"
	"time"
)

// Exponential doubles the wait after every failed attempt, starting at Base
// and never exceeding Max.
type Exponential struct {
	Base time.Duration
	Max  time.Duration
}

func NewExponential(base, max time.Duration) *Exponential {
	return &Exponential{Base: base, Max: max}
}

func (b *Exponential) Backoff(ctx context.Context, attempts int) {
	wait(ctx, b.BackoffDuration(attempts))
}

func (b *Exponential) BackoffDuration(attempts int) time.Duration {
	if attempts <= 0 || b.Base <= 0 {
		return 0
	}
	d := b.Base
	for i := 1; i < attempts; i++ {
		if d >= b.Max/2 {
			return b.Max
		}
		d *= 2
	}
	return min(d, b.Max)
}

var _ Backoff = (*Exponential)(nil)
