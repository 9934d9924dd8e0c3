package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentWorkflowNode wraps a workflow node with a span and timing.
func (t *Telemetry) InstrumentWorkflowNode(ctx context.Context, nodeName string, fn func(context.Context) error) error {
	ctx, span := t.StartSpan(ctx, fmt.Sprintf("workflow.node.%s", nodeName),
		trace.WithAttributes(
			attribute.String("node.name", nodeName),
		),
	)
	defer span.End()

	startTime := time.Now()
	err := fn(ctx)
	duration := time.Since(startTime)

	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.SetAttributes(
		attribute.String("status", status),
		attribute.Float64("duration.seconds", duration.Seconds()),
	)

	return err
}

// InstrumentSearch wraps a literature search with a span and timing.
func (t *Telemetry) InstrumentSearch(ctx context.Context, source, query string, fn func(context.Context) (papersFound int, searchErr string)) {
	ctx, span := t.StartSpan(ctx, "search.literature",
		trace.WithAttributes(
			attribute.String("search.source", source),
			attribute.Int("search.query_length", len(query)),
		),
	)
	defer span.End()

	startTime := time.Now()
	found, searchErr := fn(ctx)

	span.SetAttributes(
		attribute.Int("search.papers_found", found),
		attribute.Float64("duration.seconds", time.Since(startTime).Seconds()),
	)
	if searchErr != "" {
		span.SetStatus(codes.Error, searchErr)
	} else {
		span.SetStatus(codes.Ok, "")
	}
}

// StartQueryRun starts the root span for one query run.
func (t *Telemetry) StartQueryRun(ctx context.Context, runID, query string) (context.Context, trace.Span) {
	return t.StartSpan(ctx, "planner.run",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("query.length", len(query)),
		),
	)
}
