package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumOf(t *testing.T, agg metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := agg.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", agg)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestConsistencyMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewConsistencyMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordCorrection(ctx, "ar_pedidos", "APPLIED", 10*time.Millisecond)
	m.RecordCorrection(ctx, "ar_pedidos", "ALREADY_APPLIED", time.Millisecond)
	m.RecordFindings(ctx, "caixa", 3)
	m.RecordFindings(ctx, "caixa", 0)
	m.RecordReturn(ctx, "ACCOUNT_RECEIVABLE", true)
	m.RecordReturn(ctx, "CREDIT", false)

	data := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, data["consistency_corrections_total"]))
	assert.Equal(t, int64(3), sumOf(t, data["consistency_findings_total"]))
	assert.Equal(t, int64(2), sumOf(t, data["consistency_returns_total"]))
	assert.Equal(t, int64(1), sumOf(t, data["consistency_customer_credits_total"]))
}

func TestConsistencyMetrics_NilSafe(t *testing.T) {
	var m *ConsistencyMetrics
	assert.NotPanics(t, func() {
		m.RecordCorrection(context.Background(), "caixa_reverter", "APPLIED", time.Second)
		m.RecordFindings(context.Background(), "caixa", 1)
		m.RecordReturn(context.Background(), "CREDIT", true)
	})

	_, err := NewConsistencyMetrics(nil)
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestPoolMetrics_Collect(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(9)

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	pm, err := NewPoolMetrics(provider.Meter("test"), db, time.Hour, zap.NewNop())
	require.NoError(t, err)

	pm.Collect(context.Background())
	data := collect(t, reader)
	gauge, ok := data["db_pool_connections_max"].(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(9), gauge.DataPoints[0].Value)

	pm.Start(context.Background())
	pm.Stop()
	pm.Stop()
}

func TestStartServiceSpan_RecordsAttributesAndErrors(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	ctx, span := StartServiceSpan(context.Background(), "correction", "execute", SpanAttrAction, "caixa_reverter")
	SetAttributes(span, SpanAttrAffected, 2, 42, "ignored")
	RecordError(span, errors.New("boom"))
	assert.NotEmpty(t, GetTraceID(ctx))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "correction.execute", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "caixa_reverter", attrs[SpanAttrAction])
	assert.Equal(t, "2", attrs[SpanAttrAffected])
}

func TestProviders_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("x"))
	assert.NoError(t, tp.Shutdown(context.Background()))

	mp, err := NewMeterProvider(context.Background(), MetricsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("x"))
	assert.NoError(t, mp.Shutdown(context.Background()))

	assert.NoError(t, NewDBTracingPlugin(DBTracingConfig{}, zap.NewNop()).Register(nil))
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), samplerFor(0).Description())
	assert.Contains(t, samplerFor(0.5).Description(), "TraceIDRatioBased")
}
