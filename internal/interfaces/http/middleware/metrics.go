package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/infrastructure/telemetry"
)

const (
	metricRequests       = "orderhub_http_requests_total"
	metricDuration       = "orderhub_http_request_duration_seconds"
	metricWebhookPayload = "orderhub_webhook_payload_bytes"
	metricInFlight       = "orderhub_http_in_flight_requests"
)

var attrStatusClass = attribute.Key("http.status_class")

// payloadBuckets span a bare status ping up to a Magento order with many items
var payloadBuckets = []float64{256, 1024, 4096, 16384, 65536, 262144, 1048576}

// HTTPMetricsConfig holds configuration for HTTP metrics middleware
type HTTPMetricsConfig struct {
	MeterProvider *telemetry.MeterProvider
	Enabled       bool
}

type httpMetrics struct {
	requests *telemetry.Counter
	duration *telemetry.Histogram
	payload  *telemetry.Histogram
	inFlight metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	m := &httpMetrics{}
	var err error

	if m.requests, err = telemetry.NewCounter(meter, metricRequests,
		"HTTP requests by route, status class and platform", "{request}"); err != nil {
		return nil, err
	}
	if m.duration, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        metricDuration,
		Description: "HTTP request latency",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.payload, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        metricWebhookPayload,
		Description: "Declared size of inbound webhook bodies",
		Unit:        "By",
		Boundaries:  payloadBuckets,
	}); err != nil {
		return nil, err
	}
	if m.inFlight, err = meter.Int64UpDownCounter(metricInFlight,
		metric.WithDescription("Requests currently being served"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// HTTPMetrics records request count, latency, webhook payload size and
// in-flight requests. It is a pass-through when metrics are off.
func HTTPMetrics(cfg HTTPMetricsConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.MeterProvider == nil || !cfg.MeterProvider.IsEnabled() {
		return passThrough
	}
	return HTTPMetricsWithMeter(cfg.MeterProvider.Meter("orderhub.http"), true)
}

// HTTPMetricsWithMeter builds the metrics middleware on an existing meter
func HTTPMetricsWithMeter(meter metric.Meter, enabled bool) gin.HandlerFunc {
	if !enabled {
		return passThrough
	}
	m, err := newHTTPMetrics(meter)
	if err != nil {
		return passThrough
	}
	return m.handle
}

func passThrough(c *gin.Context) { c.Next() }

func (m *httpMetrics) handle(c *gin.Context) {
	ctx := c.Request.Context()
	start := time.Now()

	m.inFlight.Add(ctx, 1)
	defer m.inFlight.Add(ctx, -1)

	c.Next()

	route := routeLabel(c)
	platform := platformLabel(c)
	status := c.Writer.Status()

	attrs := []attribute.KeyValue{
		telemetry.AttrHTTPMethod.String(c.Request.Method),
		telemetry.AttrHTTPRoute.String(route),
		attrStatusClass.String(statusClass(status)),
	}
	m.duration.RecordDuration(ctx, time.Since(start), attrs...)

	if platform != "" {
		attrs = append(attrs, telemetry.AttrPlatform.String(platform))
		if size := c.Request.ContentLength; size > 0 {
			m.payload.Record(ctx, float64(size), telemetry.AttrPlatform.String(platform))
		}
	}
	m.requests.Inc(ctx, append(attrs, telemetry.AttrHTTPStatusCode.Int(status))...)
}

// routeLabel is the matched route pattern, keeping ids out of label values
func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}

// platformLabel is the :platform segment when it names a supported platform
func platformLabel(c *gin.Context) string {
	if p := integration.PlatformCode(c.Param("platform")); p.IsValid() {
		return p.String()
	}
	return ""
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "other"
	}
	return strconv.Itoa(status/100) + "xx"
}
