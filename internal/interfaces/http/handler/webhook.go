package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	integrationapp "github.com/orderhub/backend/internal/application/integration"
	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/infrastructure/logger"
	"github.com/orderhub/backend/internal/infrastructure/telemetry"
)

// DefaultMaxWebhookBodySize caps a webhook body when no limit is configured
const DefaultMaxWebhookBodySize int64 = 1 << 20

// WebhookHandler receives platform webhooks. These endpoints are called by the
// stores themselves and carry no operator authentication; the HMAC signature
// is the only credential.
type WebhookHandler struct {
	webhooks    *integrationapp.WebhookService
	maxBodySize int64
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhooks *integrationapp.WebhookService, maxBodySize int64) *WebhookHandler {
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxWebhookBodySize
	}
	return &WebhookHandler{
		webhooks:    webhooks,
		maxBodySize: maxBodySize,
	}
}

// WebhookResponse is the body of every 2xx webhook answer
type WebhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// WebhookErrorResponse is the body of every rejected webhook
type WebhookErrorResponse struct {
	Error string `json:"error"`
}

// Handle godoc
// @ID           receiveWebhook
// @Summary      Receive a platform webhook
// @Description  Verifies, normalizes and upserts an order delivery. Non-order events,
// @Description  pings and redeliveries answer 200 with a message. OPTIONS answers the CORS preflight.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        platform path string true "Platform" Enums(woocommerce, shopify, prestashop, opencart, magento)
// @Param        request body object true "Raw platform payload"
// @Success      200 {object} WebhookResponse
// @Failure      400 {object} WebhookErrorResponse
// @Failure      401 {object} WebhookErrorResponse
// @Failure      404 {object} WebhookErrorResponse
// @Failure      413 {object} WebhookErrorResponse
// @Failure      500 {object} WebhookErrorResponse
// @Router       /webhooks/{platform} [post]
func (h *WebhookHandler) Handle(c *gin.Context) {
	adapter, err := h.webhooks.Platform(integration.PlatformCode(strings.ToLower(c.Param("platform"))))
	if err != nil {
		c.JSON(http.StatusNotFound, WebhookErrorResponse{Error: "Unknown platform"})
		return
	}

	setWebhookCORS(c, adapter)
	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusOK)
		return
	}

	log := logger.GetGinLogger(c)

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, WebhookErrorResponse{Error: "Payload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, WebhookErrorResponse{Error: "Failed to read request body"})
		return
	}

	req := integrationapp.WebhookRequest{
		Platform:    adapter.Platform(),
		Headers:     firstHeaderValues(c.Request.Header),
		Body:        body,
		ContentType: c.ContentType(),
		ReceivedAt:  time.Now(),
	}

	var result integrationapp.WebhookResult
	telemetry.WithProfilingLabels(c.Request.Context(), telemetry.WebhookLabels(string(req.Platform)), func(ctx context.Context) {
		result, err = h.webhooks.Process(ctx, req)
	})

	switch {
	case errors.Is(err, integrationapp.ErrWebhookInvalidSignature):
		log.Warn("Webhook signature rejected", zap.Error(err))
		c.JSON(http.StatusUnauthorized, WebhookErrorResponse{Error: "Invalid signature"})
	case err != nil:
		log.Error("Webhook processing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, WebhookErrorResponse{Error: err.Error()})
	case result.Duplicate:
		c.JSON(http.StatusOK, WebhookResponse{Success: true, Message: "Duplicate delivery"})
	case result.Ignored:
		c.JSON(http.StatusOK, WebhookResponse{Success: true, Message: "Ignored " + result.EventType})
	default:
		c.JSON(http.StatusOK, WebhookResponse{Success: true})
	}
}

func setWebhookCORS(c *gin.Context, adapter integration.WebhookPlatform) {
	allowed := append([]string{"Content-Type", "Authorization"}, adapter.AllowedHeaders()...)
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", strings.Join(allowed, ", "))
}

// firstHeaderValues flattens request headers to their first value.
// http.Header keys are already canonical.
func firstHeaderValues(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
