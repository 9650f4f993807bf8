package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/log/noop"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/fyrsmithlabs/contentgate/internal/config"
)

func TestNew_Disabled(t *testing.T) {
	tel, err := New(context.Background(), NewDefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, tel)

	assert.NotNil(t, tel.Tracer("test"))
	assert.NotNil(t, tel.Meter("test"))
	assert.False(t, tel.IsEnabled())

	health := tel.Health()
	assert.True(t, health.Healthy)
	assert.False(t, health.Degraded)
	assert.Empty(t, health.Reason)
}

func TestNew_InvalidConfig(t *testing.T) {
	tel, err := New(context.Background(), &Config{Enabled: true})
	require.Error(t, err)
	assert.Nil(t, tel)
	assert.Contains(t, err.Error(), "invalid telemetry config")
}

func TestTelemetry_NilSafe(t *testing.T) {
	var tel *Telemetry

	assert.NotPanics(t, func() {
		_ = tel.Tracer("test")
		_ = tel.Meter("test")
		_ = tel.LoggerProvider()
		tel.SetLoggerProvider(nil)
		_ = tel.IsEnabled()
		_ = tel.Shutdown(context.Background())
		_ = tel.ForceFlush(context.Background())
	})

	health := tel.Health()
	assert.False(t, health.Healthy)
	assert.True(t, health.Degraded)
}

func TestTelemetry_Shutdown(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Shutdown.Timeout = config.Duration(100 * time.Millisecond)

	tel, err := New(context.Background(), cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, tel.Shutdown(ctx))
	assert.False(t, tel.Health().Healthy)

	require.NoError(t, tel.ForceFlush(context.Background()))
}

func TestTelemetry_SetDegraded(t *testing.T) {
	tel, err := New(context.Background(), NewDefaultConfig())
	require.NoError(t, err)

	tel.setDegraded("tracer provider failed: %v", "dial tcp: refused")
	tel.setDegraded("meter provider failed: %v", "later")

	health := tel.Health()
	assert.True(t, health.Degraded)
	assert.Equal(t, "tracer provider failed: dial tcp: refused", health.Reason)
}

func TestTelemetry_LoggerProvider(t *testing.T) {
	tel, err := New(context.Background(), NewDefaultConfig())
	require.NoError(t, err)
	assert.Nil(t, tel.LoggerProvider())

	lp := noop.NewLoggerProvider()
	tel.SetLoggerProvider(lp)
	assert.Equal(t, lp, tel.LoggerProvider())
}

func TestTestTelemetry_Spans(t *testing.T) {
	tt := NewTestTelemetry()
	tracer := tt.Tracer("test")

	_, span := tracer.Start(context.Background(), "orchestrator.phase.schema")
	span.SetAttributes(
		attribute.String("phase.status", "pass"),
		attribute.Int64("issues", 2),
		attribute.Float64("score", 0.75),
		attribute.Bool("autofix", true),
	)
	span.End()

	_, other := tracer.Start(context.Background(), "orchestrator.phase.audit")
	other.End()

	assert.Len(t, tt.Spans(), 2)
	assert.Nil(t, tt.SpanByName("orchestrator.phase.quality"))
	tt.AssertSpanExists(t, "orchestrator.phase.schema")
	tt.AssertSpanExists(t, "orchestrator.phase.audit")
	tt.AssertSpanAttribute(t, "orchestrator.phase.schema", "phase.status", "pass")
	tt.AssertSpanAttribute(t, "orchestrator.phase.schema", "issues", int64(2))
	tt.AssertSpanAttribute(t, "orchestrator.phase.schema", "score", 0.75)
	tt.AssertSpanAttribute(t, "orchestrator.phase.schema", "autofix", true)
}

func TestTestTelemetry_Metrics(t *testing.T) {
	tt := NewTestTelemetry()
	ctx := context.Background()

	counter, err := tt.Meter("test").Int64Counter("contentgate.grades")
	require.NoError(t, err)
	counter.Add(ctx, 1)
	counter.Add(ctx, 2)

	m, ok := tt.MetricReader.Find(ctx, "contentgate.grades")
	require.True(t, ok)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(3), sum.DataPoints[0].Value)

	_, ok = tt.MetricReader.Find(ctx, "contentgate.missing")
	assert.False(t, ok)
	assert.Len(t, tt.MetricReader.Metrics(), 2)
}

func TestTestTelemetry_Reset(t *testing.T) {
	tt := NewTestTelemetry()
	tracer := tt.Tracer("test")

	_, span := tracer.Start(context.Background(), "before")
	span.End()
	require.NoError(t, tt.MetricReader.ForceFlush(context.Background()))
	require.Len(t, tt.Spans(), 1)

	tt.Reset()
	assert.Empty(t, tt.Spans())
	assert.Empty(t, tt.MetricReader.Metrics())

	_, span = tracer.Start(context.Background(), "after")
	span.End()
	require.Len(t, tt.Spans(), 1)
	tt.AssertSpanExists(t, "after")
}

func TestTestTelemetry_Shutdown(t *testing.T) {
	tt := NewTestTelemetry()
	_, span := tt.Tracer("test").Start(context.Background(), "span")
	span.End()

	require.NoError(t, tt.Shutdown(context.Background()))
	assert.False(t, tt.Health().Healthy)
}
