package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	integrationapp "github.com/orderhub/backend/internal/application/integration"
	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/infrastructure/logger"
)

// CredentialsHandler manages per-platform store credentials. Responses never
// contain secret values, only whether each one is set.
type CredentialsHandler struct {
	BaseHandler
	credentials *integrationapp.CredentialsService
}

// NewCredentialsHandler creates a new CredentialsHandler
func NewCredentialsHandler(credentials *integrationapp.CredentialsService) *CredentialsHandler {
	return &CredentialsHandler{credentials: credentials}
}

// SaveCredentialsRequest is the body of PUT /integrations/credentials/:platform.
// Omitted secrets keep their stored value; an empty string clears one.
type SaveCredentialsRequest struct {
	StoreURL      string  `json:"store_url" binding:"omitempty,url,max=500"`
	APIKey        *string `json:"api_key" binding:"omitempty,max=500"`
	APISecret     *string `json:"api_secret" binding:"omitempty,max=500"`
	WebhookSecret *string `json:"webhook_secret" binding:"omitempty,max=500"`
	IsEnabled     bool    `json:"is_enabled"`
}

// List godoc
// @ID           listIntegrationCredentials
// @Summary      List platform credentials
// @Description  Returns the settings of every supported platform. Secrets are reported as set or unset only.
// @Tags         integrations
// @Produce      json
// @Success      200 {object} dto.Response{data=[]integrationapp.CredentialsResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/integrations/credentials [get]
func (h *CredentialsHandler) List(c *gin.Context) {
	list, err := h.credentials.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// Save godoc
// @ID           saveIntegrationCredentials
// @Summary      Save platform credentials
// @Description  Replaces the settings of one platform. Omitted secrets keep their stored value.
// @Tags         integrations
// @Accept       json
// @Produce      json
// @Param        platform path string true "Platform" Enums(woocommerce, shopify, prestashop, opencart, magento)
// @Param        request body SaveCredentialsRequest true "Credentials"
// @Success      200 {object} dto.Response{data=integrationapp.CredentialsResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/integrations/credentials/{platform} [put]
func (h *CredentialsHandler) Save(c *gin.Context) {
	platform, err := integration.ParsePlatformCode(c.Param("platform"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req SaveCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.credentials.Save(c.Request.Context(), platform, integrationapp.SaveCredentialsInput{
		StoreURL:      req.StoreURL,
		APIKey:        req.APIKey,
		APISecret:     req.APISecret,
		WebhookSecret: req.WebhookSecret,
		IsEnabled:     req.IsEnabled,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	logger.GetGinLogger(c).Info("Platform credentials saved",
		zap.String("operator", currentOperator(c)),
		zap.Bool("enabled", resp.IsEnabled))
	h.Success(c, resp)
}
