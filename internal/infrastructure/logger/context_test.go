package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestFromContext(t *testing.T) {
	l := zap.NewExample()
	assert.Same(t, l, FromContext(WithContext(context.Background(), l)))

	assert.NotNil(t, FromContext(context.Background()))
	assert.NotNil(t, FromContext(WithContext(context.Background(), nil)))
}

func TestWithAndValue(t *testing.T) {
	ctx := With(context.Background(), FieldRequestID, "first")
	ctx = With(ctx, FieldRequestID, "second")
	ctx = With(ctx, FieldOperator, "maria")

	assert.Equal(t, "second", Value(ctx, FieldRequestID))
	assert.Equal(t, "maria", Value(ctx, FieldOperator))
	assert.Empty(t, Value(ctx, FieldDeliveryID))

	assert.Equal(t, ctx, With(ctx, FieldPlatform, ""), "empty values are not stored")
}

func TestFor_StampsContextFields(t *testing.T) {
	base, logs := newObserved()

	ctx := With(context.Background(), FieldRequestID, "req-aaa")
	ctx = With(ctx, FieldPlatform, "opencart")
	ctx = With(ctx, FieldDeliveryID, "d-1")
	ctx = With(ctx, FieldOperator, "ivan")

	For(ctx, base).Info("order upserted", zap.String("code", "OC-55"))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, map[string]any{
		"request_id":  "req-aaa",
		"platform":    "opencart",
		"delivery_id": "d-1",
		"operator":    "ivan",
		"code":        "OC-55",
	}, logs.All()[0].ContextMap())
}

func TestFor_PlainContextReturnsBase(t *testing.T) {
	base, _ := newObserved()
	assert.Same(t, base, For(context.Background(), base))
}

func TestL_UsesContextLogger(t *testing.T) {
	base, logs := newObserved()
	ctx := With(WithContext(context.Background(), base), FieldPlatform, "magento")

	L(ctx).Warn("slow push")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "magento", logs.All()[0].ContextMap()["platform"])
}

func TestFor_TraceIDs(t *testing.T) {
	t.Run("noop span has none", func(t *testing.T) {
		ctx, span := noop.NewTracerProvider().Tracer("test").Start(context.Background(), "noop")
		defer span.End()

		base, _ := newObserved()
		assert.Same(t, base, For(ctx, base))
	})

	t.Run("recording span", func(t *testing.T) {
		tp := sdktrace.NewTracerProvider()
		defer func() { _ = tp.Shutdown(context.Background()) }()

		ctx, span := tp.Tracer("test").Start(context.Background(), "webhook")
		defer span.End()

		base, logs := newObserved()
		For(ctx, base).Info("traced")

		fields := logs.All()[0].ContextMap()
		assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
		assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
	})
}
