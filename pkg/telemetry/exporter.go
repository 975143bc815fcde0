package telemetry

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	otlpEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	otlpProtocol = "OTEL_EXPORTER_OTLP_PROTOCOL"

	protocolGRPC = "grpc"
	protocolHTTP = "http/protobuf"
)

// signal is one kind of telemetry data. Each signal may override the shared
// OTLP endpoint and protocol with its own variables.
type signal string

const (
	signalTraces  signal = "TRACES"
	signalMetrics signal = "METRICS"
)

func (s signal) endpointEnv() string { return "OTEL_EXPORTER_OTLP_" + string(s) + "_ENDPOINT" }
func (s signal) protocolEnv() string { return "OTEL_EXPORTER_OTLP_" + string(s) + "_PROTOCOL" }

// enabled reports whether an endpoint is configured for s and telemetry
// was not switched off.
func (s signal) enabled() bool {
	if os.Getenv(disableTelemetry) == "1" {
		return false
	}
	_, shared := os.LookupEnv(otlpEndpoint)
	_, own := os.LookupEnv(s.endpointEnv())
	return shared || own
}

func (s signal) protocol() (string, error) {
	protocol := protocolHTTP
	if v := os.Getenv(otlpProtocol); v != "" {
		protocol = v
	}
	if v := os.Getenv(s.protocolEnv()); v != "" {
		protocol = v
	}
	switch protocol {
	case protocolHTTP, protocolGRPC:
		return protocol, nil
	default:
		return "", fmt.Errorf("unsupported OTLP protocol %q for %s", protocol, s)
	}
}

func setupTracing(ctx context.Context, res *resource.Resource) (func(context.Context) error, error) {
	if !signalTraces.enabled() {
		return nil, nil
	}
	protocol, err := signalTraces.protocol()
	if err != nil {
		return nil, err
	}
	client := otlptracehttp.NewClient()
	if protocol == protocolGRPC {
		client = otlptracegrpc.NewClient()
	}
	exp, err := otlptrace.New(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

func setupMetrics(ctx context.Context, res *resource.Resource) (func(context.Context) error, error) {
	if !signalMetrics.enabled() {
		return nil, nil
	}
	protocol, err := signalMetrics.protocol()
	if err != nil {
		return nil, err
	}
	var exp sdkmetric.Exporter
	if protocol == protocolGRPC {
		exp, err = otlpmetricgrpc.New(ctx)
	} else {
		exp, err = otlpmetrichttp.New(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
	)
	otel.SetMeterProvider(mp)
	return func(ctx context.Context) error {
		if err := mp.ForceFlush(ctx); err != nil {
			return err
		}
		return mp.Shutdown(ctx)
	}, nil
}
