package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Outbound status push
// ---------------------------------------------------------------------------

// StatusPushClient is the port an outbound platform adapter implements
type StatusPushClient interface {
	// Platform returns the platform this client talks to
	Platform() PlatformCode

	// PushStatus sets the vendor status of a platform order
	PushStatus(ctx context.Context, creds *PlatformCredentials, externalID, vendorStatus string) error
}

// PushOutcome is the result class of one push
type PushOutcome string

const (
	// PushOutcomeSuccess means the platform accepted the update
	PushOutcomeSuccess PushOutcome = "success"
	// PushOutcomeSkipped means no call was made
	PushOutcomeSkipped PushOutcome = "skipped"
	// PushOutcomeError means the call was made and failed
	PushOutcomeError PushOutcome = "error"
)

// PushResult reports one outbound push. Failures are data, not errors.
type PushResult struct {
	Platform       PlatformCode `json:"platform"`
	OrderCode      string       `json:"order_code"`
	Outcome        PushOutcome  `json:"outcome"`
	InternalStatus string       `json:"internal_status"`
	VendorStatus   string       `json:"vendor_status,omitempty"`
	// Reason explains a skip
	Reason string `json:"reason,omitempty"`
	// Error carries the raw error text for operators
	Error string `json:"error,omitempty"`
}

// Success is true for delivered and skipped pushes
func (r PushResult) Success() bool {
	return r.Outcome != PushOutcomeError
}

// Skipped is true when no network call was attempted
func (r PushResult) Skipped() bool {
	return r.Outcome == PushOutcomeSkipped
}

// ---------------------------------------------------------------------------
// Sync log
// ---------------------------------------------------------------------------

// SyncDirection represents the direction of a synchronization
type SyncDirection string

const (
	// SyncDirectionInbound is a webhook delivery applied to an order
	SyncDirectionInbound SyncDirection = "inbound"
	// SyncDirectionOutbound is a status push to a platform
	SyncDirectionOutbound SyncDirection = "outbound"
)

// SyncLog is an audit row for one inbound delivery or outbound push
type SyncLog struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	OrderCode      string
	Platform       PlatformCode
	Direction      SyncDirection
	Outcome        PushOutcome
	InternalStatus string
	VendorStatus   string
	Message        string
	CreatedAt      time.Time
}

// NewOutboundSyncLog records a push result against an order
func NewOutboundSyncLog(orderID uuid.UUID, r PushResult) *SyncLog {
	msg := r.Error
	if msg == "" {
		msg = r.Reason
	}
	return &SyncLog{
		ID:             uuid.New(),
		OrderID:        orderID,
		OrderCode:      r.OrderCode,
		Platform:       r.Platform,
		Direction:      SyncDirectionOutbound,
		Outcome:        r.Outcome,
		InternalStatus: r.InternalStatus,
		VendorStatus:   r.VendorStatus,
		Message:        msg,
		CreatedAt:      time.Now(),
	}
}

// NewInboundSyncLog records an applied webhook delivery
func NewInboundSyncLog(orderID uuid.UUID, n *NormalizedOrder, message string) *SyncLog {
	return &SyncLog{
		ID:             uuid.New(),
		OrderID:        orderID,
		OrderCode:      n.ExternalCode,
		Platform:       n.Source,
		Direction:      SyncDirectionInbound,
		Outcome:        PushOutcomeSuccess,
		InternalStatus: n.Status.String(),
		VendorStatus:   n.VendorStatus,
		Message:        message,
		CreatedAt:      time.Now(),
	}
}

// SyncLogRepository persists sync logs
type SyncLogRepository interface {
	Save(ctx context.Context, log *SyncLog) error
	// FindByOrder returns the newest logs of an order first
	FindByOrder(ctx context.Context, orderID uuid.UUID, limit int) ([]SyncLog, error)
}
