package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Field is a request-scoped value carried in the context. For stamps every
// Field present in the context on the entries it logs.
type Field string

const (
	FieldRequestID Field = "request_id"
	// FieldPlatform is the e-commerce platform code of a webhook or push
	FieldPlatform Field = "platform"
	// FieldDeliveryID is the platform's id for one webhook delivery
	FieldDeliveryID Field = "delivery_id"
	// FieldOperator is the authenticated operator subject
	FieldOperator Field = "operator"
)

// stamped lists the fields For adds, in output order
var stamped = []Field{FieldRequestID, FieldPlatform, FieldDeliveryID, FieldOperator}

type loggerKey struct{}

// WithContext attaches l to ctx.
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the logger attached to ctx, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}

// With stores value under f. An empty value leaves ctx unchanged.
func With(ctx context.Context, f Field, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, f, value)
}

// Value returns the value stored under f, or "".
func Value(ctx context.Context, f Field) string {
	v, _ := ctx.Value(f).(string)
	return v
}

// For returns base with the trace and span ids and every stamped Field
// found in ctx. A nil base falls back to FromContext(ctx).
func For(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = FromContext(ctx)
	}
	fields := traceFields(ctx)
	for _, f := range stamped {
		if v := Value(ctx, f); v != "" {
			fields = append(fields, zap.String(string(f), v))
		}
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

// L is For(ctx, nil).
func L(ctx context.Context) *zap.Logger {
	return For(ctx, nil)
}

func traceFields(ctx context.Context) []zap.Field {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}
