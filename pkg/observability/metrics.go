package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	meter metric.Meter

	// Counters
	queriesTotal           metric.Int64Counter
	stageExecutionsTotal   metric.Int64Counter
	modelCallsTotal        metric.Int64Counter
	modelTokensUsedTotal   metric.Int64Counter
	recoveryFallbacksTotal metric.Int64Counter
	papersFetchedTotal     metric.Int64Counter
	memoryOpsTotal         metric.Int64Counter

	// Histograms
	queryDuration     metric.Float64Histogram
	stageDuration     metric.Float64Histogram
	modelCallDuration metric.Float64Histogram

	// Gauge backing value
	activeQueries metric.Int64ObservableGauge
	activeCount   int64
}

// NewMetrics creates and initializes all metrics
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{
		meter: meter,
	}

	var err error

	m.queriesTotal, err = meter.Int64Counter(
		"queries_total",
		metric.WithDescription("Total number of research queries processed"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	m.stageExecutionsTotal, err = meter.Int64Counter(
		"stage_executions_total",
		metric.WithDescription("Total number of workflow stage executions"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	m.modelCallsTotal, err = meter.Int64Counter(
		"model_calls_total",
		metric.WithDescription("Total number of model calls"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	m.modelTokensUsedTotal, err = meter.Int64Counter(
		"model_tokens_used_total",
		metric.WithDescription("Total number of model tokens used"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	m.recoveryFallbacksTotal, err = meter.Int64Counter(
		"recovery_fallbacks_total",
		metric.WithDescription("Total number of stage-level fallbacks after recovery exhaustion"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	m.papersFetchedTotal, err = meter.Int64Counter(
		"papers_fetched_total",
		metric.WithDescription("Total number of papers returned by literature search"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	m.memoryOpsTotal, err = meter.Int64Counter(
		"memory_ops_total",
		metric.WithDescription("Total number of memory store operations"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	m.queryDuration, err = meter.Float64Histogram(
		"query_duration_seconds",
		metric.WithDescription("Duration of complete query runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.stageDuration, err = meter.Float64Histogram(
		"stage_duration_seconds",
		metric.WithDescription("Duration of workflow stage executions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.modelCallDuration, err = meter.Float64Histogram(
		"model_call_duration_seconds",
		metric.WithDescription("Duration of model calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.activeQueries, err = meter.Int64ObservableGauge(
		"active_queries",
		metric.WithDescription("Number of query runs in flight"),
		metric.WithUnit("1"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(m.activeCount)
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordQueryStart records the start of a query run.
func (m *Metrics) RecordQueryStart(ctx context.Context, source string) {
	m.queriesTotal.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("source", source),
		),
	)
	m.activeCount++
}

// RecordQueryComplete records completion of a query run.
func (m *Metrics) RecordQueryComplete(ctx context.Context, duration time.Duration, status string) {
	m.queryDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("status", status),
		),
	)
	m.activeCount--
}

// RecordStage records one workflow stage execution.
func (m *Metrics) RecordStage(ctx context.Context, stage string, duration time.Duration) {
	m.stageExecutionsTotal.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("stage", stage),
		),
	)
	m.stageDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("stage", stage),
		),
	)
}

// RecordModelCall records one model call with token usage.
func (m *Metrics) RecordModelCall(ctx context.Context, model string, promptTokens, completionTokens int64, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}

	m.modelCallsTotal.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("model", model),
			attribute.String("status", status),
		),
	)

	if promptTokens+completionTokens > 0 {
		m.modelTokensUsedTotal.Add(ctx, promptTokens+completionTokens,
			metric.WithAttributes(
				attribute.String("model", model),
			),
		)
	}

	m.modelCallDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("model", model),
		),
	)
}

// RecordRecoveryFallback records a stage falling back to its static record.
func (m *Metrics) RecordRecoveryFallback(ctx context.Context, stage string) {
	m.recoveryFallbacksTotal.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("stage", stage),
		),
	)
}

// RecordPapersFetched records papers returned by the literature searcher.
func (m *Metrics) RecordPapersFetched(ctx context.Context, source string, count int64) {
	m.papersFetchedTotal.Add(ctx, count,
		metric.WithAttributes(
			attribute.String("source", source),
		),
	)
}

// RecordMemoryOp records one memory store read or write.
func (m *Metrics) RecordMemoryOp(ctx context.Context, op string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.memoryOpsTotal.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("op", op),
			attribute.String("status", status),
		),
	)
}

// GetActiveQueryCount returns the number of query runs in flight.
func (m *Metrics) GetActiveQueryCount() int64 {
	return m.activeCount
}
