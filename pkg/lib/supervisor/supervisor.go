// Package supervisor runs a connect-with-retry loop in the background and
// exposes only whether the supervised resource is currently available.
// Callers never wait on the loop; they observe availability at call time.
package supervisor

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"

	"github.com/dsx-project/dsx/pkg/lib/backoff"
)

// ConnectFunc establishes the supervised connection.
type ConnectFunc func(ctx context.Context) error

type Params struct {
	// Name is used in log lines.
	Name    string
	Connect ConnectFunc
	Backoff backoff.Backoff
	Clock   clock.Clock
}

type Supervisor struct {
	name    string
	connect ConnectFunc
	backoff backoff.Backoff
	clock   clock.Clock

	available atomic.Bool
	attempts  atomic.Int64
	lost      chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

func New(params Params) *Supervisor {
	if params.Clock == nil {
		params.Clock = clock.New()
	}
	return &Supervisor{
		name:    params.Name,
		connect: params.Connect,
		backoff: params.Backoff,
		clock:   params.Clock,
		lost:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Start launches the background loop. It returns immediately.
func (s *Supervisor) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		ctx, s.cancel = context.WithCancel(ctx)
		go s.run(ctx)
	})
}

// Available reports whether the last connection attempt succeeded and no
// loss has been reported since.
func (s *Supervisor) Available() bool {
	return s.available.Load()
}

// Attempts returns the number of connection attempts made so far.
func (s *Supervisor) Attempts() int {
	return int(s.attempts.Load())
}

// MarkUnavailable records that the connection was lost and wakes the loop to
// reconnect. It never blocks.
func (s *Supervisor) MarkUnavailable(err error) {
	if !s.available.CompareAndSwap(true, false) {
		return
	}
	log.Warn().Err(err).Str("Component", s.name).Msg("connection lost, reconnecting in background")
	select {
	case s.lost <- struct{}{}:
	default:
	}
}

// Stop terminates the loop and waits for it to exit.
func (s *Supervisor) Stop() {
	s.stopOnce.Do(func() {
		if s.cancel == nil {
			close(s.done)
			return
		}
		s.cancel()
		<-s.done
	})
	s.available.Store(false)
}

func (s *Supervisor) run(ctx context.Context) {
	defer close(s.done)
	failures := 0
	for {
		if ctx.Err() != nil {
			return
		}
		s.attempts.Add(1)
		err := s.connect(ctx)
		if err == nil {
			failures = 0
			s.available.Store(true)
			log.Ctx(ctx).Info().Str("Component", s.name).Msg("connected")
			select {
			case <-ctx.Done():
				return
			case <-s.lost:
				continue
			}
		}

		failures++
		wait := s.backoff.BackoffDuration(failures)
		log.Ctx(ctx).Error().Err(err).Str("Component", s.name).
			Msgf("failed to connect, retrying in %s", wait)
		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(wait):
		}
	}
}
