// Package tracing configures the OpenTelemetry tracer provider.
package tracing

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ServiceName identifies this process in exported spans.
const ServiceName = "adminpanel"

// Init installs an OTLP/HTTP exporter when endpoint is set. With no endpoint
// the global provider stays a no-op. The returned func flushes and stops the
// provider.
func Init(ctx context.Context, endpoint, environment string, insecure bool) (func(context.Context) error, error) {
	if endpoint == "" {
		log.Info().Msg("tracing disabled: no OTLP endpoint configured")
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
	if insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("tracing.Init: exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(ServiceName),
			semconv.DeploymentEnvironment(environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing.Init: resource: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	log.Info().Str("endpoint", endpoint).Msg("tracing initialized")
	return tp.Shutdown, nil
}
