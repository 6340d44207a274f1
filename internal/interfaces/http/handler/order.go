package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	integrationapp "github.com/orderhub/backend/internal/application/integration"
	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/domain/order"
	"github.com/orderhub/backend/internal/infrastructure/logger"
	"github.com/orderhub/backend/internal/interfaces/http/middleware"
)

// OrderHandler handles the operator order API
type OrderHandler struct {
	BaseHandler
	orders *integrationapp.OrderStatusService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders *integrationapp.OrderStatusService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// ListOrdersQuery holds the query parameters of GET /orders
type ListOrdersQuery struct {
	Source    string `form:"source" binding:"omitempty,platform"`
	Status    string `form:"status" binding:"omitempty,internal_status"`
	Search    string `form:"search" binding:"max=100"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// ChangeStatusRequest is the body of PATCH /orders/:id/status
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,internal_status"`
}

// SetCommentRequest is the body of PATCH /orders/:id/comment
type SetCommentRequest struct {
	Comment string `json:"comment"`
}

// AssignRequest is the body of PATCH /orders/:id/assignment. An empty
// assignee clears the assignment.
type AssignRequest struct {
	AssignedTo string `json:"assigned_to" binding:"max=100"`
}

// RecordPaymentRequest is the body of PATCH /orders/:id/payment
type RecordPaymentRequest struct {
	Method    string     `json:"method" binding:"required,max=50"`
	Reference string     `json:"reference" binding:"max=100"`
	PaidAt    *time.Time `json:"paid_at"`
}

// List godoc
// @ID           listOrders
// @Summary      List orders
// @Description  Returns a page of orders filtered by source, status and a free-text search
// @Tags         orders
// @Produce      json
// @Param        source query string false "Source platform" Enums(woocommerce, shopify, prestashop, opencart, magento)
// @Param        status query string false "Internal status label"
// @Param        search query string false "Code, customer, phone or email" maxlength(100)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        sort_by query string false "Sort field" default(created_at)
// @Param        sort_order query string false "Sort direction" Enums(asc, desc) default(desc)
// @Success      200 {object} dto.Response{data=[]integrationapp.OrderResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var q ListOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	filter := order.Filter{
		Search:    q.Search,
		Page:      q.Page,
		PageSize:  q.PageSize,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Status:    integration.InternalStatus(q.Status),
	}
	if q.Source != "" {
		source, err := integration.ParsePlatformCode(q.Source)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		filter.Source = source
	}

	result, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Get godoc
// @ID           getOrder
// @Summary      Get order by ID
// @Description  Retrieve one order by its ID
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=integrationapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}
	resp, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByCode godoc
// @ID           getOrderByCode
// @Summary      Get order by code
// @Description  Retrieve one order by its external code, e.g. SH-450789469
// @Tags         orders
// @Produce      json
// @Param        code path string true "External order code"
// @Success      200 {object} dto.Response{data=integrationapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/orders/code/{code} [get]
func (h *OrderHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Order code is required")
		return
	}
	resp, err := h.orders.GetByCode(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ChangeStatus godoc
// @ID           changeOrderStatus
// @Summary      Change order status
// @Description  Saves a new status and pushes it to the order's platform.
// @Description  The response carries the push outcome; a failed push still answers 200.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body ChangeStatusRequest true "New internal status"
// @Success      200 {object} dto.Response{data=integrationapp.StatusChangeResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/orders/{id}/status [patch]
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}
	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.orders.ChangeStatus(c.Request.Context(), id, integration.InternalStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	logger.GetGinLogger(c).Info("Operator changed order status",
		zap.String("operator", currentOperator(c)),
		zap.String("code", result.Order.Code),
		zap.String("status", req.Status),
		zap.String("push_outcome", string(result.Push.Outcome)))
	h.Success(c, result)
}

// SetComment godoc
// @ID           setOrderComment
// @Summary      Set order comment
// @Description  Replaces the operator comment of an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body SetCommentRequest true "Comment"
// @Success      200 {object} dto.Response{data=integrationapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/orders/{id}/comment [patch]
func (h *OrderHandler) SetComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}
	var req SetCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.orders.SetComment(c.Request.Context(), id, req.Comment)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Assign godoc
// @ID           assignOrder
// @Summary      Assign order
// @Description  Hands an order to an operator; an empty assignee clears the assignment
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body AssignRequest true "Assignee"
// @Success      200 {object} dto.Response{data=integrationapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/orders/{id}/assignment [patch]
func (h *OrderHandler) Assign(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.orders.Assign(c.Request.Context(), id, req.AssignedTo)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RecordPayment godoc
// @ID           recordOrderPayment
// @Summary      Record order payment
// @Description  Stores payment details. A missing paid_at means now.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body RecordPaymentRequest true "Payment details"
// @Success      200 {object} dto.Response{data=integrationapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/orders/{id}/payment [patch]
func (h *OrderHandler) RecordPayment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	paidAt := time.Now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}
	resp, err := h.orders.RecordPayment(c.Request.Context(), id, integrationapp.PaymentInput{
		Method:    req.Method,
		Reference: req.Reference,
		PaidAt:    paidAt,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SyncLogs godoc
// @ID           listOrderSyncLogs
// @Summary      List order sync logs
// @Description  Returns the newest inbound and outbound sync entries of an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        limit query int false "Maximum entries" default(50) maximum(500)
// @Success      200 {object} dto.Response{data=[]integrationapp.SyncLogResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/orders/{id}/sync-logs [get]
func (h *OrderHandler) SyncLogs(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	logs, err := h.orders.SyncLogs(c.Request.Context(), id, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, logs)
}

// currentOperator is the operator name taken from the access token
func currentOperator(c *gin.Context) string {
	return middleware.GetJWTOperator(c)
}
