package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/domain/shared"
)

// Event types
const (
	EventTypeOrderIngested     = "order.ingested"
	EventTypeOrderStatusPushed = "order.status_pushed"

	AggregateType = "Order"
)

// IngestedEvent is raised after a webhook delivery was upserted
type IngestedEvent struct {
	shared.EventHeader `json:"-"`

	Code       string          `json:"code"`
	Source     string          `json:"source"`
	Status     string          `json:"status"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Created    bool            `json:"created"`
}

// NewIngestedEvent builds the event for an upserted webhook record
func NewIngestedEvent(orderID uuid.UUID, n *integration.NormalizedOrder, created bool) *IngestedEvent {
	return &IngestedEvent{
		EventHeader: shared.NewEventHeader(EventTypeOrderIngested, AggregateType, orderID, n.ExternalCode),
		Code:        n.ExternalCode,
		Source:      string(n.Source),
		Status:      n.Status.String(),
		TotalPrice:  n.TotalPrice,
		Created:     created,
	}
}

// StatusPushedEvent is raised after a status push attempt, whatever its outcome
type StatusPushedEvent struct {
	shared.EventHeader `json:"-"`

	Code         string `json:"code"`
	Platform     string `json:"platform"`
	Status       string `json:"status"`
	VendorStatus string `json:"vendor_status,omitempty"`
	Outcome      string `json:"outcome"`
	Reason       string `json:"reason,omitempty"`
}

// NewStatusPushedEvent builds the event for a push attempt
func NewStatusPushedEvent(o *Order, platform, vendorStatus, outcome, reason string) *StatusPushedEvent {
	return &StatusPushedEvent{
		EventHeader:  shared.NewEventHeader(EventTypeOrderStatusPushed, AggregateType, o.ID, o.Code),
		Code:         o.Code,
		Platform:     platform,
		Status:       o.Status.String(),
		VendorStatus: vendorStatus,
		Outcome:      outcome,
		Reason:       reason,
	}
}
