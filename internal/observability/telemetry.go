// Package observability wires up tracing and metrics for voxelcore:
// an OpenTelemetry tracer provider plus the Prometheus collectors the
// region manager, mesher, navigator, and raytracer report through.
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/almondvoxel/voxelcore/internal/logging"
)

// tracerName identifies spans this package's callers open as belonging to
// voxelcore, distinct from whatever service embeds it.
const tracerName = "github.com/almondvoxel/voxelcore"

// Tracer returns the tracer voxelcore operations should open spans from.
// Before InitTelemetry installs a real provider this yields a no-op
// tracer, so callers never need to check whether tracing is enabled.
func Tracer() oteltrace.Tracer {
	return otel.Tracer(tracerName)
}

// InitTelemetry configures an OTLP/HTTP exporter and installs it as the
// global TracerProvider. The returned shutdown func flushes pending
// spans and must be called before the process exits.
func InitTelemetry(ctx context.Context, serviceName string) (func(context.Context) error, error) {
	exp, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, err
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	logging.ForComponent("observability").Info("opentelemetry tracer provider installed (service=%s)", serviceName)

	shutdown := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}
	return shutdown, nil
}
