package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Must panics if the instrument could not be created. Instruments are
// created at package init, where there is no caller to return an error to.
func Must[T any](instrument T, err error) T {
	if err != nil {
		panic(err)
	}
	return instrument
}

// Counter counts events by attribute set.
type Counter struct {
	counter metric.Int64Counter
}

func NewCounter(meter metric.Meter, name, description string) (*Counter, error) {
	counter, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}
	return &Counter{counter: counter}, nil
}

func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// Histogram records durations in milliseconds.
type Histogram struct {
	histogram metric.Int64Histogram
}

func NewHistogram(meter metric.Meter, name, description string) (*Histogram, error) {
	histogram, err := meter.Int64Histogram(name, metric.WithDescription(description), metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	return &Histogram{histogram: histogram}, nil
}

// Time starts a measurement. Calling the returned function records the time
// elapsed since Time was called.
func (h *Histogram) Time(ctx context.Context, attrs ...attribute.KeyValue) func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		dur := time.Since(start)
		h.histogram.Record(ctx, dur.Milliseconds(), metric.WithAttributes(attrs...))
		return dur
	}
}
