package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Ramsey-B/fern/pkg/tracing/exporters"
)

// Config controls the tracer provider
type Config struct {
	Enabled     bool
	ServiceName string
	OTLP        exporters.OTLPConfig
}

// Init builds the global tracer provider and registers the package tracer.
// The returned shutdown func flushes pending spans.
func Init(ctx context.Context, config Config) (func(context.Context) error, error) {
	var exporter sdktrace.SpanExporter = exporters.NopExporter{}
	if config.Enabled {
		otlpExporter, err := exporters.NewOTLPExporter(ctx, config.OTLP)
		if err != nil {
			return nil, fmt.Errorf("failed to create otlp exporter: %w", err)
		}
		exporter = otlpExporter
	}

	res := resource.NewWithAttributes("",
		attribute.String("service.name", config.ServiceName),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	SetTracer(tp.Tracer(config.ServiceName))

	return tp.Shutdown, nil
}
