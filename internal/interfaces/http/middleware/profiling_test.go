package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/orderhub/backend/internal/infrastructure/telemetry"
)

func labelsSeenBy(cfg ProfilingConfig, method, route, path string) map[string]string {
	r := gin.New()
	r.Use(ProfilingWithConfig(cfg))

	labels := map[string]string{}
	r.Handle(method, route, func(c *gin.Context) {
		pprof.ForLabels(c.Request.Context(), func(k, v string) bool {
			labels[k] = v
			return true
		})
		c.Status(http.StatusOK)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, path, nil))
	return labels
}

func TestProfilingWithConfig(t *testing.T) {
	t.Run("webhook", func(t *testing.T) {
		labels := labelsSeenBy(DefaultProfilingConfig(), http.MethodPost, "/webhooks/:platform", "/webhooks/prestashop")
		assert.Equal(t, map[string]string{
			telemetry.LabelMethod:    "POST",
			telemetry.LabelRoute:     "/webhooks/:platform",
			telemetry.LabelOperation: "webhooks",
			telemetry.LabelPlatform:  "prestashop",
		}, labels)
	})

	t.Run("unknown platform is not a label", func(t *testing.T) {
		labels := labelsSeenBy(DefaultProfilingConfig(), http.MethodPost, "/webhooks/:platform", "/webhooks/ebay")
		assert.NotContains(t, labels, telemetry.LabelPlatform)
	})

	t.Run("probes are skipped", func(t *testing.T) {
		assert.Empty(t, labelsSeenBy(DefaultProfilingConfig(), http.MethodGet, "/health", "/health"))
	})

	t.Run("disabled", func(t *testing.T) {
		assert.Empty(t, labelsSeenBy(ProfilingConfig{}, http.MethodGet, "/api/v1/orders", "/api/v1/orders"))
	})
}

func TestRouteOperation(t *testing.T) {
	tests := map[string]string{
		"":                                 "",
		"/api/v1/orders":                   "orders",
		"/api/v1/orders/:id/status":        "orders",
		"/api/v2/integrations/credentials": "integrations",
		"/webhooks/:platform":              "webhooks",
		"/api/v1/:id":                      "",
		"/api/v1":                          "",
		"/health":                          "health",
	}
	for route, want := range tests {
		assert.Equal(t, want, routeOperation(route), route)
	}
}
