package telemetry

import (
	"context"
	"sort"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Label keys attached to profiles
const (
	LabelPlatform  = "platform"
	LabelOperation = "operation"
	LabelRoute     = "route"
	LabelMethod    = "method"
)

// MaxLabelValueLength bounds label values kept in profiles
const MaxLabelValueLength = 128

// HighCardinalityLabels are dropped because every distinct value creates a new
// profile series in Pyroscope.
var HighCardinalityLabels = map[string]bool{
	"order_id":    true,
	"order_code":  true,
	"delivery_id": true,
	"request_id":  true,
	"trace_id":    true,
	"span_id":     true,
}

// WithProfilingLabels runs fn with pprof labels attached, so CPU samples taken
// inside can be filtered by them.
//
//	telemetry.WithProfilingLabels(ctx, telemetry.WebhookLabels("shopify"), func(c context.Context) {
//	    result, err = svc.Process(c, req)
//	})
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := sanitizeLabels(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// WebhookLabels labels webhook ingestion work for a platform
func WebhookLabels(platform string) map[string]string {
	return map[string]string{
		LabelOperation: "webhook",
		LabelPlatform:  platform,
	}
}

// PushLabels labels outbound status push work for a platform
func PushLabels(platform string) map[string]string {
	return map[string]string{
		LabelOperation: "status_push",
		LabelPlatform:  platform,
	}
}

// sanitizeLabels returns sorted key/value pairs with empty, unknown-character
// and high-cardinality entries removed.
func sanitizeLabels(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(labels)*2)
	for _, key := range keys {
		value := labels[key]
		if value == "" || HighCardinalityLabels[key] {
			continue
		}
		if len(value) > MaxLabelValueLength {
			value = value[:MaxLabelValueLength]
		}
		sanitized := sanitizeLabelKey(key)
		if sanitized == "" {
			continue
		}
		pairs = append(pairs, sanitized, value)
	}
	return pairs
}

// sanitizeLabelKey lowercases the key and keeps only [a-z0-9_]
func sanitizeLabelKey(key string) string {
	key = strings.ToLower(key)
	var b strings.Builder
	for _, c := range key {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_':
			b.WriteRune(c)
		case c == ' ' || c == '-':
			b.WriteByte('_')
		}
	}
	return b.String()
}
