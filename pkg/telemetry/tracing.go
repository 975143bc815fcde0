package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// GetTracer returns the tracer used for every span in this module.
func GetTracer() oteltrace.Tracer {
	return otel.GetTracerProvider().Tracer(serviceName)
}

// NewSpan starts a span with the given name as a child of any span in ctx.
func NewSpan(ctx context.Context, t oteltrace.Tracer, name string, opts ...oteltrace.SpanStartOption) (context.Context, oteltrace.Span) {
	return t.Start(ctx, name, opts...)
}
