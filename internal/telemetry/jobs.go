package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Spans for the batch jobs. Attributes are added by callers once counts are known.

func TraceTrendingRun(ctx context.Context) (context.Context, trace.Span) {
	return otel.Tracer("jobs").Start(ctx, "trending.run")
}

func TraceImportSource(ctx context.Context, runID, source string) (context.Context, trace.Span) {
	return otel.Tracer("jobs").Start(ctx, "import.source",
		trace.WithAttributes(
			attribute.String("import.run_id", runID),
			attribute.String("import.source", source),
		),
	)
}

func TraceImportCandidate(ctx context.Context, source, name string) (context.Context, trace.Span) {
	return otel.Tracer("jobs").Start(ctx, "import.candidate",
		trace.WithAttributes(
			attribute.String("import.source", source),
			attribute.String("tool.name", name),
		),
	)
}
