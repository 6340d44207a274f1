package integration

import (
	"time"

	"github.com/google/uuid"
	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/domain/order"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Webhook DTOs
// ---------------------------------------------------------------------------

// WebhookRequest is one raw delivery handed over by the HTTP layer
type WebhookRequest struct {
	Platform    integration.PlatformCode
	Headers     map[string]string
	Body        []byte
	ContentType string
	ReceivedAt  time.Time
}

// WebhookResult tells the HTTP layer how a delivery was handled
type WebhookResult struct {
	Platform  integration.PlatformCode
	EventType string
	// Ignored is set for events that carry no order payload
	Ignored bool
	// Duplicate is set when the delivery id was already processed
	Duplicate bool
	OrderID   uuid.UUID
	OrderCode string
	Created   bool
}

// ---------------------------------------------------------------------------
// Order DTOs
// ---------------------------------------------------------------------------

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID               uuid.UUID                `json:"id"`
	Code             string                   `json:"code"`
	CustomerName     string                   `json:"customer_name"`
	CustomerEmail    string                   `json:"customer_email,omitempty"`
	Phone            string                   `json:"phone"`
	DeliveryAddress  string                   `json:"delivery_address"`
	ProductName      string                   `json:"product_name"`
	CatalogNumber    string                   `json:"catalog_number"`
	Quantity         int                      `json:"quantity"`
	TotalPrice       decimal.Decimal          `json:"total_price"`
	Status           string                   `json:"status"`
	Source           integration.PlatformCode `json:"source"`
	IsCorrect        bool                     `json:"is_correct"`
	Comment          string                   `json:"comment,omitempty"`
	AssignedTo       string                   `json:"assigned_to,omitempty"`
	PaymentMethod    string                   `json:"payment_method,omitempty"`
	PaymentReference string                   `json:"payment_reference,omitempty"`
	PaidAt           *time.Time               `json:"paid_at,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
}

// ToOrderResponse converts an order entity
func ToOrderResponse(o *order.Order) OrderResponse {
	return OrderResponse{
		ID:               o.ID,
		Code:             o.Code,
		CustomerName:     o.CustomerName,
		CustomerEmail:    o.CustomerEmail,
		Phone:            o.Phone,
		DeliveryAddress:  o.DeliveryAddress,
		ProductName:      o.ProductName,
		CatalogNumber:    o.CatalogNumber,
		Quantity:         o.Quantity,
		TotalPrice:       o.TotalPrice,
		Status:           o.Status.String(),
		Source:           o.Source,
		IsCorrect:        o.IsCorrect,
		Comment:          o.Comment,
		AssignedTo:       o.AssignedTo,
		PaymentMethod:    o.PaymentMethod,
		PaymentReference: o.PaymentReference,
		PaidAt:           o.PaidAt,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

// ToOrderResponses converts a list of orders
func ToOrderResponses(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}

// OrderListResult is one page of orders
type OrderListResult struct {
	Items    []OrderResponse `json:"items"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// StatusChangeResult is returned by an operator status change. The order is
// already saved; Push reports what happened on the platform side.
type StatusChangeResult struct {
	Order OrderResponse          `json:"order"`
	Push  integration.PushResult `json:"push"`
}

// PaymentInput carries operator-entered payment details
type PaymentInput struct {
	Method    string
	Reference string
	PaidAt    time.Time
}

// SyncLogResponse represents a sync log entry in API responses
type SyncLogResponse struct {
	ID             uuid.UUID                 `json:"id"`
	OrderCode      string                    `json:"order_code"`
	Platform       integration.PlatformCode  `json:"platform"`
	Direction      integration.SyncDirection `json:"direction"`
	Outcome        integration.PushOutcome   `json:"outcome"`
	InternalStatus string                    `json:"internal_status"`
	VendorStatus   string                    `json:"vendor_status,omitempty"`
	Message        string                    `json:"message,omitempty"`
	CreatedAt      time.Time                 `json:"created_at"`
}

// ToSyncLogResponses converts sync log entries
func ToSyncLogResponses(logs []integration.SyncLog) []SyncLogResponse {
	out := make([]SyncLogResponse, len(logs))
	for i, l := range logs {
		out[i] = SyncLogResponse{
			ID:             l.ID,
			OrderCode:      l.OrderCode,
			Platform:       l.Platform,
			Direction:      l.Direction,
			Outcome:        l.Outcome,
			InternalStatus: l.InternalStatus,
			VendorStatus:   l.VendorStatus,
			Message:        l.Message,
			CreatedAt:      l.CreatedAt,
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Credentials DTOs
// ---------------------------------------------------------------------------

// CredentialsResponse shows a platform's settings without revealing secrets
type CredentialsResponse struct {
	Platform            integration.PlatformCode `json:"platform"`
	PlatformDisplayName string                   `json:"platform_display_name"`
	Configured          bool                     `json:"configured"`
	StoreURL            string                   `json:"store_url,omitempty"`
	IsEnabled           bool                     `json:"is_enabled"`
	HasAPIKey           bool                     `json:"has_api_key"`
	HasAPISecret        bool                     `json:"has_api_secret"`
	HasWebhookSecret    bool                     `json:"has_webhook_secret"`
	UpdatedAt           *time.Time               `json:"updated_at,omitempty"`
}

// ToCredentialsResponse masks a stored credential set
func ToCredentialsResponse(c *integration.PlatformCredentials) CredentialsResponse {
	resp := CredentialsResponse{
		Platform:            c.Platform,
		PlatformDisplayName: c.Platform.DisplayName(),
		Configured:          true,
		StoreURL:            c.StoreURL,
		IsEnabled:           c.IsEnabled,
		HasAPIKey:           c.APIKey != "",
		HasAPISecret:        c.APISecret != "",
		HasWebhookSecret:    c.WebhookSecret != "",
	}
	if !c.UpdatedAt.IsZero() {
		updated := c.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}

// SaveCredentialsInput replaces a platform's settings. Nil secrets keep the stored value;
// an empty string clears it.
type SaveCredentialsInput struct {
	StoreURL      string
	APIKey        *string
	APISecret     *string
	WebhookSecret *string
	IsEnabled     bool
}
