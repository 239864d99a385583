// Package tracing wires OpenTelemetry for the explanation backend.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"
)

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

// Options configures the OTLP/HTTP exporter.
type Options struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	Logger      *zap.Logger
}

func noop(context.Context) error { return nil }

// Init installs a global tracer provider exporting over OTLP/HTTP. Tracing
// is off unless opts.Enabled; the returned shutdown func is always safe to
// call.
func Init(ctx context.Context, opts Options) (ShutdownFunc, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if !opts.Enabled {
		logger.Debug("tracing disabled")
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(opts.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return noop, fmt.Errorf("create otlp exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(opts.ServiceName),
		)),
	)
	otel.SetTracerProvider(tp)
	logger.Info("tracing enabled", zap.String("endpoint", opts.Endpoint), zap.String("service", opts.ServiceName))
	return tp.Shutdown, nil
}
