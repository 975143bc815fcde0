package system

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dsx-project/dsx/pkg/lib/backoff"
)

// FunctionWaiter polls Handler until it reports true or fails. Between
// polls it waits as long as Backoff asks, giving up after MaxAttempts.
type FunctionWaiter struct {
	Name        string
	MaxAttempts int
	Backoff     backoff.Backoff
	Handler     func(ctx context.Context) (bool, error)
}

func (waiter *FunctionWaiter) Wait(ctx context.Context) error {
	for attempt := 0; attempt < waiter.MaxAttempts; attempt++ {
		waiter.Backoff.Backoff(ctx, attempt)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		done, err := waiter.Handler(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	log.Ctx(ctx).Warn().Str("name", waiter.Name).Int("max", waiter.MaxAttempts).Msg("max attempts reached")
	return fmt.Errorf("%s: max attempts reached: %d", waiter.Name, waiter.MaxAttempts)
}
