// Package telemetry sets up OpenTelemetry tracing for builds.
package telemetry

import (
	"context"
	"io"

	"github.com/arthur-debert/bundler/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifies spans created by bundler
const InstrumentationName = "github.com/arthur-debert/bundler"

// ShutdownFunc flushes and stops tracing
type ShutdownFunc func(context.Context) error

// Setup installs a tracer provider exporting spans to w as JSON. When
// disabled the global no-op provider stays in place.
func Setup(enabled bool, w io.Writer) (ShutdownFunc, error) {
	if !enabled {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(attribute.String("service.name", logging.AppName)),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	logger := logging.GetLogger("telemetry")
	logger.Debug().Msg("Tracing enabled")
	return tp.Shutdown, nil
}

// Tracer returns the bundler tracer from the global provider
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}
