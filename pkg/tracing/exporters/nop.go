package exporters

import (
	"context"

	"go.opentelemetry.io/otel/sdk/trace"
)

// NopExporter drops spans. It backs the tracer provider when no collector is
// configured so trace ids still reach logs and Kafka headers.
type NopExporter struct{}

func (NopExporter) ExportSpans(context.Context, []trace.ReadOnlySpan) error {
	return nil
}

func (NopExporter) Shutdown(context.Context) error {
	return nil
}
