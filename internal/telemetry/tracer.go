package telemetry

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"mom-assistant/internal/config"
)

// Shutdown flushes and stops the tracer provider.
type Shutdown func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Init installs a global tracer provider exporting spans to w when tracing
// is enabled. With tracing disabled it changes nothing and returns a no-op.
func Init(cfg config.TelemetryConfig, w io.Writer) (Shutdown, error) {
	if !cfg.Enabled {
		return noopShutdown, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	slog.Info("OpenTelemetry initialized", "service", cfg.ServiceName)
	return tp.Shutdown, nil
}
