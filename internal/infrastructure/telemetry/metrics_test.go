package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

// sumFor returns the int64 sum data point whose attributes contain all of want.
func sumFor(t *testing.T, m metricdata.Metrics, want ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	for _, dp := range sum.DataPoints {
		if hasAttrs(dp.Attributes, want) {
			return dp.Value
		}
	}
	return 0
}

func hasAttrs(set attribute.Set, want []attribute.KeyValue) bool {
	for _, kv := range want {
		v, ok := set.Value(kv.Key)
		if !ok || v != kv.Value {
			return false
		}
	}
	return true
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), MetricsConfig{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestCounterAndHistogram(t *testing.T) {
	reader, provider := newTestMeter(t)
	meter := provider.Meter("test")
	ctx := context.Background()

	counter, err := NewCounter(meter, "test_total", "test counter", "{item}")
	require.NoError(t, err)
	counter.Inc(ctx, AttrPlatform.String("shopify"))
	counter.Add(ctx, 4, AttrPlatform.String("shopify"))

	hist, err := NewHistogram(meter, HistogramOpts{
		Name:       "test_seconds",
		Unit:       "s",
		Boundaries: HTTPDurationBuckets,
	})
	require.NoError(t, err)
	hist.RecordDuration(ctx, 150*time.Millisecond)
	hist.Record(ctx, 0.5)

	metrics := collect(t, reader)
	assert.Equal(t, int64(5), sumFor(t, metrics["test_total"], AttrPlatform.String("shopify")))

	h, ok := metrics["test_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, h.DataPoints, 1)
	assert.Equal(t, uint64(2), h.DataPoints[0].Count)
	assert.InDelta(t, 0.65, h.DataPoints[0].Sum, 0.0001)
	assert.Equal(t, HTTPDurationBuckets, h.DataPoints[0].Bounds)
}

func TestIntegrationMetrics_Record(t *testing.T) {
	reader, provider := newTestMeter(t)
	ctx := context.Background()

	m, err := NewIntegrationMetrics(provider.Meter("orderhub"))
	require.NoError(t, err)

	m.RecordWebhook(ctx, "shopify", WebhookOutcomeProcessed, 20*time.Millisecond)
	m.RecordWebhook(ctx, "shopify", WebhookOutcomeIgnored, time.Millisecond)
	m.RecordWebhook(ctx, "shopify", WebhookOutcomeProcessed, 30*time.Millisecond)
	m.RecordUpsert(ctx, "shopify", true)
	m.RecordUpsert(ctx, "shopify", false)
	m.RecordUpsert(ctx, "shopify", false)
	m.RecordPush(ctx, "woocommerce", "skipped", 0)

	metrics := collect(t, reader)

	webhooks := metrics["orderhub_webhooks_total"]
	assert.Equal(t, int64(2), sumFor(t, webhooks, AttrPlatform.String("shopify"), AttrOutcome.String(WebhookOutcomeProcessed)))
	assert.Equal(t, int64(1), sumFor(t, webhooks, AttrOutcome.String(WebhookOutcomeIgnored)))

	upserts := metrics["orderhub_order_upserts_total"]
	assert.Equal(t, int64(1), sumFor(t, upserts, AttrCreated.String("true")))
	assert.Equal(t, int64(2), sumFor(t, upserts, AttrCreated.String("false")))

	pushes := metrics["orderhub_status_pushes_total"]
	assert.Equal(t, int64(1), sumFor(t, pushes, AttrPlatform.String("woocommerce"), AttrOutcome.String("skipped")))

	assert.Contains(t, metrics, "orderhub_webhook_duration_seconds")
	assert.Contains(t, metrics, "orderhub_status_push_duration_seconds")
}

func TestIntegrationMetrics_NilSafe(t *testing.T) {
	var m *IntegrationMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordWebhook(ctx, "shopify", WebhookOutcomeFailed, time.Second)
		m.RecordUpsert(ctx, "shopify", true)
		m.RecordPush(ctx, "shopify", "error", time.Second)
	})
}

func TestNewIntegrationMetrics_NilMeter(t *testing.T) {
	m, err := NewIntegrationMetrics(nil)
	assert.Nil(t, m)
	assert.ErrorIs(t, err, ErrMeterNil)
	assert.Equal(t, "NewIntegrationMetrics: meter cannot be nil", err.Error())
}
