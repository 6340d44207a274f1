package telemetry

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// IntegrationMetrics holds the instruments for webhook ingestion and status
// pushes. A nil *IntegrationMetrics is valid and records nothing.
type IntegrationMetrics struct {
	webhooksTotal   *Counter
	webhookDuration *Histogram
	upsertsTotal    *Counter
	pushesTotal     *Counter
	pushDuration    *Histogram
}

// Webhook outcomes
const (
	WebhookOutcomeProcessed = "processed"
	WebhookOutcomeIgnored   = "ignored"
	WebhookOutcomeDuplicate = "duplicate"
	WebhookOutcomeRejected  = "rejected"
	WebhookOutcomeFailed    = "failed"
)

// NewIntegrationMetrics registers the instruments on the given meter
func NewIntegrationMetrics(meter metric.Meter) (*IntegrationMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	webhooksTotal, err := NewCounter(meter,
		"orderhub_webhooks_total",
		"Webhook deliveries by platform and outcome",
		"{delivery}",
	)
	if err != nil {
		return nil, err
	}

	webhookDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "orderhub_webhook_duration_seconds",
		Description: "Time spent processing a webhook delivery",
		Unit:        "s",
		Boundaries:  HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	upsertsTotal, err := NewCounter(meter,
		"orderhub_order_upserts_total",
		"Ingested orders by platform, split into inserts and updates",
		"{order}",
	)
	if err != nil {
		return nil, err
	}

	pushesTotal, err := NewCounter(meter,
		"orderhub_status_pushes_total",
		"Outbound status pushes by platform and outcome",
		"{push}",
	)
	if err != nil {
		return nil, err
	}

	pushDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "orderhub_status_push_duration_seconds",
		Description: "Duration of outbound status pushes, including skipped ones",
		Unit:        "s",
		Boundaries:  OutboundDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &IntegrationMetrics{
		webhooksTotal:   webhooksTotal,
		webhookDuration: webhookDuration,
		upsertsTotal:    upsertsTotal,
		pushesTotal:     pushesTotal,
		pushDuration:    pushDuration,
	}, nil
}

// RecordWebhook counts one delivery and its processing time
func (m *IntegrationMetrics) RecordWebhook(ctx context.Context, platform, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.webhooksTotal.Inc(ctx, AttrPlatform.String(platform), AttrOutcome.String(outcome))
	m.webhookDuration.RecordDuration(ctx, elapsed, AttrPlatform.String(platform), AttrOutcome.String(outcome))
}

// RecordUpsert counts one ingested order
func (m *IntegrationMetrics) RecordUpsert(ctx context.Context, platform string, created bool) {
	if m == nil {
		return
	}
	m.upsertsTotal.Inc(ctx, AttrPlatform.String(platform), AttrCreated.String(strconv.FormatBool(created)))
}

// RecordPush counts one status push
func (m *IntegrationMetrics) RecordPush(ctx context.Context, platform, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.pushesTotal.Inc(ctx, AttrPlatform.String(platform), AttrOutcome.String(outcome))
	m.pushDuration.RecordDuration(ctx, elapsed, AttrPlatform.String(platform), AttrOutcome.String(outcome))
}

// ErrMeterNil is returned when instruments are requested without a meter
var ErrMeterNil = &MetricsError{Op: "NewIntegrationMetrics", Err: "meter cannot be nil"}

// MetricsError describes a failure to set up instruments
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
