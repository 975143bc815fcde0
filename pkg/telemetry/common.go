// Package telemetry sets up OpenTelemetry metrics and tracing from the
// standard OTEL_EXPORTER_OTLP_* environment variables. Without them the
// global no-op providers stay in place and nothing is exported.
package telemetry

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/dsx-project/dsx/pkg/version"
)

const (
	serviceName      = "dsx"
	disableTelemetry = "DSX_DISABLE_TELEMETRY"
)

var (
	mu        sync.Mutex
	shutdowns []func(context.Context) error
)

// SetupFromEnvs installs the trace and meter providers for every signal
// that has an OTLP endpoint configured. Calling it again is a no-op until
// Cleanup runs.
func SetupFromEnvs() {
	mu.Lock()
	defer mu.Unlock()
	if len(shutdowns) > 0 {
		return
	}

	ctx := context.Background()
	res := newResource()
	if shutdown, err := setupTracing(ctx, res); err != nil {
		log.Error().Err(err).Msg("failed to set up trace export")
	} else if shutdown != nil {
		shutdowns = append(shutdowns, shutdown)
	}
	if shutdown, err := setupMetrics(ctx, res); err != nil {
		log.Error().Err(err).Msg("failed to set up metric export")
	} else if shutdown != nil {
		shutdowns = append(shutdowns, shutdown)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		log.Err(err).Msg("Error occurred while exporting telemetry")
	}))
}

// Cleanup flushes the traces and metrics still in memory and shuts the
// exporters down.
func Cleanup() error {
	mu.Lock()
	defer mu.Unlock()

	var errs *multierror.Error
	for _, shutdown := range shutdowns {
		errs = multierror.Append(errs, shutdown(context.Background()))
	}
	shutdowns = nil
	return errs.ErrorOrNil()
}

func newResource() *resource.Resource {
	res, err := resource.Merge(
		resource.Environment(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(version.Get().GitVersion),
		),
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create otel resource. Falling back to default resource config")
		res = resource.Default()
	}
	return res
}
