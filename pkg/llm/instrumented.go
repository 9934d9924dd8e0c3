package llm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agentforge/hypothesis-planner/pkg/observability"
)

// InstrumentedClient wraps a Client with tracing and token metrics.
type InstrumentedClient struct {
	client    *Client
	telemetry *observability.Telemetry
	metrics   *observability.Metrics
}

// NewInstrumentedClient creates an instrumented chat client sharing the
// application-wide telemetry and metrics.
func NewInstrumentedClient(client *Client, telemetry *observability.Telemetry, metrics *observability.Metrics) *InstrumentedClient {
	return &InstrumentedClient{
		client:    client,
		telemetry: telemetry,
		metrics:   metrics,
	}
}

// Complete implements domain.ModelClient with a span per call.
func (c *InstrumentedClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	ctx, span := c.telemetry.StartSpan(ctx, "llm.chat",
		trace.WithAttributes(
			attribute.String("llm.model", c.client.Model()),
			attribute.Int("llm.prompt_length", len(prompt)),
		),
	)
	defer span.End()

	startTime := time.Now()
	resp, err := c.client.Chat(ctx, system, prompt)
	duration := time.Since(startTime)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.metrics.RecordModelCall(ctx, c.client.Model(), 0, 0, duration, false)
		return "", err
	}

	span.SetStatus(codes.Ok, "")
	span.SetAttributes(
		attribute.Int("llm.prompt_tokens", resp.Usage.PromptTokens),
		attribute.Int("llm.completion_tokens", resp.Usage.CompletionTokens),
		attribute.Int("llm.total_tokens", resp.Usage.TotalTokens),
	)
	c.metrics.RecordModelCall(ctx, c.client.Model(),
		int64(resp.Usage.PromptTokens), int64(resp.Usage.CompletionTokens), duration, true)

	return resp.Content, nil
}
