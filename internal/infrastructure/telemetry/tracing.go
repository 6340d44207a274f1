package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of spans started here.
const TracerName = "orderhub"

// Span attribute keys set by the HTTP layer and the ingestion and push
// services.
const (
	SpanAttrRequestID    attribute.Key = "orderhub.request_id"
	SpanAttrOperator     attribute.Key = "orderhub.operator"
	SpanAttrPlatform     attribute.Key = "orderhub.platform"
	SpanAttrEvent        attribute.Key = "orderhub.webhook.event"
	SpanAttrDeliveryID   attribute.Key = "orderhub.webhook.delivery_id"
	SpanAttrOrderCode    attribute.Key = "orderhub.order.code"
	SpanAttrOrderID      attribute.Key = "orderhub.order.id"
	SpanAttrStatus       attribute.Key = "orderhub.order.status"
	SpanAttrVendorStatus attribute.Key = "orderhub.vendor_status"
	SpanAttrCreated      attribute.Key = "orderhub.order.created"
	SpanAttrPushOutcome  attribute.Key = "orderhub.push.outcome"
	SpanAttrPushError    attribute.Key = "orderhub.push.error"
)

// Start opens an internal span named "<component>.<step>" on the global
// tracer provider. The caller ends it.
//
//	ctx, span := telemetry.Start(ctx, "webhook", "process", telemetry.SpanAttrPlatform.String("shopify"))
//	defer span.End()
func Start(ctx context.Context, component, step string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, component+"."+step,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// Fail records err on span and marks the span as errored. A nil err or a
// nil span is a no-op.
func Fail(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// NonEmpty drops attributes whose value is the empty string.
func NonEmpty(attrs ...attribute.KeyValue) []attribute.KeyValue {
	kept := attrs[:0:0]
	for _, kv := range attrs {
		if kv.Value.Type() == attribute.STRING && kv.Value.AsString() == "" {
			continue
		}
		kept = append(kept, kv)
	}
	return kept
}

// TraceID returns the hex trace id of the span in ctx, or "".
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
