// Package middleware provides HTTP middleware for the order hub API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/orderhub/backend/internal/infrastructure/telemetry"
)

// TracingConfig holds configuration for the tracing middleware
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// TracingWithConfig starts a server span per request through otelgin and tags
// it with the request id and, on webhook routes, the platform.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passThrough
	}
	otelMiddleware := otelgin.Middleware(cfg.ServiceName)

	return func(c *gin.Context) {
		otelMiddleware(c)
		annotateSpan(c)
	}
}

// TracingAttributeInjector tags the span with the authenticated operator.
// It belongs after JWTAuthMiddleware.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		annotateSpan(c)
		c.Next()
	}
}

func annotateSpan(c *gin.Context) {
	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		return
	}

	attrs := make([]attribute.KeyValue, 0, 3)
	if id := getRequestID(c); id != "" {
		attrs = append(attrs, telemetry.SpanAttrRequestID.String(id))
	}
	if platform := platformLabel(c); platform != "" {
		attrs = append(attrs, telemetry.SpanAttrPlatform.String(platform))
	}
	if operator := GetJWTOperator(c); operator != "" {
		attrs = append(attrs, telemetry.SpanAttrOperator.String(operator))
	}
	span.SetAttributes(attrs...)
}

// SpanErrorMarker sets an error status on server spans that end in 5xx.
// Client errors such as a rejected webhook signature only get an event.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		status := c.Writer.Status()
		if !span.IsRecording() || status < http.StatusBadRequest {
			return
		}

		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
			return
		}
		span.AddEvent("request rejected", trace.WithAttributes(
			telemetry.AttrHTTPStatusCode.Int(status),
		))
	}
}
