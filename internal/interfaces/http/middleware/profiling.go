package middleware

import (
	"context"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orderhub/backend/internal/infrastructure/telemetry"
)

// ProfilingConfig holds configuration for the profiling middleware
type ProfilingConfig struct {
	Enabled bool
	// SkipPaths are served without labels; probes would only add noise
	SkipPaths []string
}

// DefaultProfilingConfig skips the liveness and readiness probes
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:   true,
		SkipPaths: []string{"/health", "/ready"},
	}
}

// ProfilingWithConfig tags the request goroutine with Pyroscope labels so CPU
// samples can be split by route, method, operation and platform.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passThrough
	}

	return func(c *gin.Context) {
		if slices.Contains(cfg.SkipPaths, c.Request.URL.Path) {
			c.Next()
			return
		}
		telemetry.WithProfilingLabels(c.Request.Context(), profilingLabels(c), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func profilingLabels(c *gin.Context) map[string]string {
	route := c.FullPath()
	labels := map[string]string{telemetry.LabelMethod: c.Request.Method}
	if route != "" {
		labels[telemetry.LabelRoute] = route
	}
	if op := routeOperation(route); op != "" {
		labels[telemetry.LabelOperation] = op
	}
	if platform := platformLabel(c); platform != "" {
		labels[telemetry.LabelPlatform] = platform
	}
	return labels
}

// routeOperation is the first literal segment after any /api/vN prefix:
// "/api/v1/orders/:id/status" is "orders", "/webhooks/:platform" is "webhooks".
func routeOperation(route string) string {
	rest := strings.TrimPrefix(route, "/")
	if after, ok := strings.CutPrefix(rest, "api/"); ok {
		if _, tail, found := strings.Cut(after, "/"); found {
			rest = tail
		} else {
			return ""
		}
	}
	segment, _, _ := strings.Cut(rest, "/")
	if segment == "" || segment[0] == ':' || segment[0] == '*' {
		return ""
	}
	return segment
}
