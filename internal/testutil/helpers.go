package testutil

import (
	"context"
	"io"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/agentforge/hypothesis-planner/pkg/observability"
	"github.com/agentforge/hypothesis-planner/pkg/recovery"
)

// TestTimeout provides a standard timeout for test contexts.
const TestTimeout = 5 * time.Second

// NewTestContext creates a context with the standard test timeout.
func NewTestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	t.Cleanup(cancel)
	return ctx
}

// NewTestLogger creates a structured logger that discards output.
func NewTestLogger(t *testing.T) *observability.StructuredLogger {
	t.Helper()
	observability.SetLogOutput(io.Discard)
	return observability.NewStructuredLogger("test")
}

// NewTestTelemetry creates telemetry with a no-op tracer, suitable for
// exercising instrumented code paths without exporters.
func NewTestTelemetry(t *testing.T) *observability.Telemetry {
	t.Helper()
	telemetry, err := observability.NewTelemetry(&observability.TelemetryConfig{
		ServiceName:    "test-service",
		ServiceVersion: "test",
		Environment:    "test",
		EnableTracing:  false,
		EnableMetrics:  false,
	})
	if err != nil {
		t.Fatalf("creating test telemetry: %v", err)
	}
	return telemetry
}

// NewTestMetrics creates metrics over an unexported meter provider.
func NewTestMetrics(t *testing.T) *observability.Metrics {
	t.Helper()
	meter := sdkmetric.NewMeterProvider().Meter("test")
	metrics, err := observability.NewMetrics(meter)
	if err != nil {
		t.Fatalf("creating test metrics: %v", err)
	}
	return metrics
}

// FastRecovery shrinks the recovery backoff intervals for the duration of
// a test so retry-exhaustion paths run without real sleeps.
func FastRecovery(t *testing.T) {
	t.Helper()
	origInitial, origMax := recovery.InitialBackoff, recovery.MaxBackoff
	recovery.InitialBackoff = time.Millisecond
	recovery.MaxBackoff = 2 * time.Millisecond
	t.Cleanup(func() {
		recovery.InitialBackoff = origInitial
		recovery.MaxBackoff = origMax
	})
}
