// Package telemetry initializes a process-wide tracer provider,
// grounded on docker-compose's internal/tracing: spans are exported
// over OTLP/gRPC when OTEL_EXPORTER_OTLP_ENDPOINT is set in the
// environment, and the global tracer falls back to the otel SDK's
// built-in no-op implementation otherwise, so every call site below
// can unconditionally start a span.
package telemetry

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "dockged"

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(ctx context.Context) error

// Init wires the global tracer provider to an OTLP/gRPC exporter
// reading its endpoint from the standard OTEL_* environment variables
// (https://opentelemetry.io/docs/concepts/sdk-configuration/otlp-exporter-configuration/).
// With no endpoint configured it leaves the process on otel's default
// no-op provider, so Tracer(...) spans are always safe to create.
func Init(ctx context.Context, version string) (ShutdownFunc, error) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	if !hasOTLPEndpointInEnv() {
		return func(context.Context) error { return nil }, nil
	}

	client := otlptracegrpc.NewClient()
	exporter, err := otlptrace.New(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("create otlp trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create otel resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}

func hasOTLPEndpointInEnv() bool {
	for _, kv := range os.Environ() {
		k, _, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(k, "OTEL_") && strings.HasSuffix(k, "ENDPOINT") {
			return true
		}
	}
	return false
}

// Tracer returns the package-wide tracer, sourced fresh from the
// global provider each time so it reflects whatever Init installed.
func Tracer() trace.Tracer {
	return otel.Tracer(serviceName)
}
