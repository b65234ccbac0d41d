package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	"github.com/pathforge/rolegraph/internal/config"
)

// InitTracing initializes the global tracer provider from configuration.
// When tracing is disabled it returns a provider with no exporter, so
// instrumented code keeps creating spans that are simply dropped. The
// returned shutdown function must be called before process exit.
func InitTracing(ctx context.Context, cfg config.TracingConfig) (*sdktrace.TracerProvider, func(context.Context) error, error) {
	if !cfg.Enabled {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Shutdown, nil
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "rolegraph"
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	return tp, tp.Shutdown, nil
}
