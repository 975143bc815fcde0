//go:build unit || !integration

package pubsub

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type PubSubTestSuite struct {
	suite.Suite
	ctx context.Context
}

func TestPubSubTestSuite(t *testing.T) {
	suite.Run(t, new(PubSubTestSuite))
}

func (s *PubSubTestSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *PubSubTestSuite) TestNetworkExcludesPublisher() {
	network := NewInMemoryNetwork[string]()
	a, b, c := network.Join(), network.Join(), network.Join()
	subA, subB, subC := NewInMemorySubscriber[string](), NewInMemorySubscriber[string](), NewInMemorySubscriber[string]()
	s.Require().NoError(a.Subscribe(s.ctx, subA))
	s.Require().NoError(b.Subscribe(s.ctx, subB))
	s.Require().NoError(c.Subscribe(s.ctx, subC))

	s.Require().NoError(a.Publish(s.ctx, "hello"))

	s.Empty(subA.Events())
	s.Equal([]string{"hello"}, subB.Events())
	s.Equal([]string{"hello"}, subC.Events())
}

func (s *PubSubTestSuite) TestStandaloneEchoes() {
	p := NewInMemoryPubSub[string]()
	sub := NewInMemorySubscriber[string]()
	s.Require().NoError(p.Subscribe(s.ctx, sub))
	s.Require().NoError(p.Publish(s.ctx, "hello"))
	s.Equal([]string{"hello"}, sub.Events())
}

func (s *PubSubTestSuite) TestSingleSubscriber() {
	p := NewInMemoryPubSub[string]()
	s.Require().NoError(p.Subscribe(s.ctx, NewNoopSubscriber[string]()))
	s.ErrorIs(p.Subscribe(s.ctx, NewNoopSubscriber[string]()), ErrSubscriberAlreadySet)
}

func (s *PubSubTestSuite) TestClosedMemberIsUnavailable() {
	network := NewInMemoryNetwork[string]()
	a, b := network.Join(), network.Join()
	sub := NewInMemorySubscriber[string]()
	s.Require().NoError(b.Subscribe(s.ctx, sub))

	s.Require().NoError(b.Close(s.ctx))
	s.NoError(a.Publish(s.ctx, "lost"))
	s.Empty(sub.Events())

	s.Require().NoError(a.Close(s.ctx))
	s.ErrorIs(a.Publish(s.ctx, "x"), ErrUnavailable)
	s.False(Available(a))
}

func (s *PubSubTestSuite) TestNoopPubSub() {
	p := NewNoopPubSub[string]()
	s.NoError(p.Publish(s.ctx, "x"))
	s.NoError(p.Subscribe(s.ctx, NewNoopSubscriber[string]()))
	s.False(Available(p))
	s.True(Available(PublisherFunc[string](func(context.Context, string) error { return nil })))
}

func (s *PubSubTestSuite) TestAsyncPublisherDelivers() {
	sub := NewInMemorySubscriber[string]()
	p := NewAsyncPublisher(AsyncPublisherParams[string]{
		Delegate: PublisherFunc[string](sub.Handle),
		Name:     "test",
	})
	for _, m := range []string{"a", "b", "c"} {
		s.NoError(p.Publish(s.ctx, m))
	}
	s.Require().NoError(p.Close(s.ctx))
	s.Equal([]string{"a", "b", "c"}, sub.Events())
	s.Zero(p.Dropped())

	s.NoError(p.Publish(s.ctx, "late"))
	s.Equal(int64(1), p.Dropped())
}

func (s *PubSubTestSuite) TestAsyncPublisherNeverBlocks() {
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	var calls atomic.Int32
	blocking := PublisherFunc[string](func(context.Context, string) error {
		calls.Add(1)
		once.Do(func() { close(started) })
		<-release
		return nil
	})
	p := NewAsyncPublisher(AsyncPublisherParams[string]{Delegate: blocking, QueueSize: 1})

	s.NoError(p.Publish(s.ctx, "taken by worker"))
	<-started
	s.NoError(p.Publish(s.ctx, "queued"))

	done := make(chan struct{})
	go func() {
		s.NoError(p.Publish(s.ctx, "dropped"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("publish blocked on a full queue")
	}
	s.Equal(int64(1), p.Dropped())

	close(release)
	s.NoError(p.Close(s.ctx))
	s.Equal(int32(2), calls.Load(), "the queued message is still delivered")
}

func (s *PubSubTestSuite) TestAsyncPublisherCountsFailures() {
	p := NewAsyncPublisher(AsyncPublisherParams[string]{
		Delegate: PublisherFunc[string](func(context.Context, string) error { return errors.New("down") }),
	})
	s.NoError(p.Publish(s.ctx, "x"))
	s.Require().NoError(p.Close(s.ctx))
	s.Equal(int64(1), p.Failed())
}

func (s *PubSubTestSuite) TestAsyncPublisherSurvivesCanceledContext() {
	sub := NewInMemorySubscriber[string]()
	p := NewAsyncPublisher(AsyncPublisherParams[string]{
		Delegate: PublisherFunc[string](func(ctx context.Context, m string) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return sub.Handle(ctx, m)
		}),
	})
	ctx, cancel := context.WithCancel(s.ctx)
	s.NoError(p.Publish(ctx, "x"))
	cancel()
	s.Require().NoError(p.Close(s.ctx))
	s.Equal([]string{"x"}, sub.Events())
}
