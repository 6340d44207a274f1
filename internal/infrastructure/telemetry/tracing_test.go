package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// installRecorder swaps the global tracer provider for one backed by a span recorder.
func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(attrs))
	for _, kv := range attrs {
		m[string(kv.Key)] = kv.Value
	}
	return m
}

func TestStart(t *testing.T) {
	recorder := installRecorder(t)

	_, span := Start(context.Background(), "order_ingestion", "upsert",
		SpanAttrPlatform.String("shopify"),
		SpanAttrCreated.Bool(true),
	)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	got := spans[0]
	assert.Equal(t, "order_ingestion.upsert", got.Name())
	assert.Equal(t, trace.SpanKindInternal, got.SpanKind())
	assert.Equal(t, TracerName, got.InstrumentationScope().Name)
	assert.ElementsMatch(t, []attribute.KeyValue{
		SpanAttrPlatform.String("shopify"),
		SpanAttrCreated.Bool(true),
	}, got.Attributes())
}

func TestStart_ChildOfContextSpan(t *testing.T) {
	recorder := installRecorder(t)

	ctx, parent := Start(context.Background(), "webhook", "process")
	_, child := Start(ctx, "status_push", "push")
	child.End()
	parent.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
}

func TestFail(t *testing.T) {
	recorder := installRecorder(t)

	_, span := Start(context.Background(), "status_push", "push")
	Fail(span, errors.New("store unavailable"))
	Fail(span, nil)
	span.End()

	got := recorder.Ended()[0]
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Equal(t, "store unavailable", got.Status().Description)
	require.Len(t, got.Events(), 1)
	assert.Equal(t, "exception", got.Events()[0].Name)

	assert.NotPanics(t, func() { Fail(nil, errors.New("x")) })
}

func TestNonEmpty(t *testing.T) {
	got := NonEmpty(
		SpanAttrOrderCode.String("WC-7"),
		SpanAttrVendorStatus.String(""),
		SpanAttrCreated.Bool(false),
	)
	assert.Equal(t, []attribute.KeyValue{
		SpanAttrOrderCode.String("WC-7"),
		SpanAttrCreated.Bool(false),
	}, got)

	assert.Empty(t, NonEmpty())
}

func TestTraceID(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))

	installRecorder(t)
	ctx, span := Start(context.Background(), "webhook", "process")
	defer span.End()

	assert.Len(t, TraceID(ctx), 32)
	assert.Equal(t, span.SpanContext().TraceID().String(), TraceID(ctx))
}
