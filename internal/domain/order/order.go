// Package order contains the Order aggregate: the persisted record of a customer
// order regardless of the channel it came from.
//
// Fields fall into two ownership groups. Ingestion-owned fields (status, totals,
// address, product list) are rewritten whenever the platform redelivers the order.
// Workflow fields (comment, assignment, payment info) belong to operators and are
// never touched by ingestion.
package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound      = shared.NewDomainError("ORDER_NOT_FOUND", "Order not found")
	ErrInvalidStatus      = shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	ErrStatusUnchanged    = shared.NewDomainError("STATUS_UNCHANGED", "Order already has this status")
	ErrCommentTooLong     = shared.NewDomainError("COMMENT_TOO_LONG", "Comment exceeds 2000 characters")
	ErrMissingCode        = errors.New("order: code is required")
	ErrUnsupportedSource  = errors.New("order: unsupported source")
	ErrNegativeQuantity   = errors.New("order: quantity cannot be negative")
	ErrNegativeTotalPrice = errors.New("order: total price cannot be negative")
)

const maxCommentLength = 2000

// Order is the persisted order entity
type Order struct {
	shared.BaseEntity

	// Code is the unique external reference, e.g. "PS-1042"
	Code string

	CustomerName    string
	CustomerEmail   string
	Phone           string
	DeliveryAddress string
	ProductName     string
	CatalogNumber   string
	Quantity        int
	TotalPrice      decimal.Decimal
	Status          integration.InternalStatus
	Source          integration.PlatformCode
	IsCorrect       bool

	// Workflow fields, owned by operators
	Comment          string
	AssignedTo       string
	PaymentMethod    string
	PaymentReference string
	PaidAt           *time.Time
}

// NewFromNormalized builds an order from an ingested webhook record
func NewFromNormalized(n *integration.NormalizedOrder) (*Order, error) {
	o := &Order{
		BaseEntity:      shared.NewBaseEntity(),
		Code:            n.ExternalCode,
		CustomerName:    n.CustomerName,
		CustomerEmail:   n.CustomerEmail,
		Phone:           n.Phone,
		DeliveryAddress: n.DeliveryAddress,
		ProductName:     n.ProductNames,
		CatalogNumber:   n.CatalogNumbers,
		Quantity:        n.Quantity,
		TotalPrice:      n.TotalPrice,
		Status:          n.Status,
		Source:          n.Source,
		IsCorrect:       n.IsCorrect,
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Validate checks the entity invariants
func (o *Order) Validate() error {
	if strings.TrimSpace(o.Code) == "" {
		return ErrMissingCode
	}
	if !o.Source.IsValid() {
		return ErrUnsupportedSource
	}
	if !o.Status.IsValid() {
		return ErrInvalidStatus
	}
	if o.Quantity < 0 {
		return ErrNegativeQuantity
	}
	if o.TotalPrice.IsNegative() {
		return ErrNegativeTotalPrice
	}
	return nil
}

// ExternalID returns the platform's own order identifier
func (o *Order) ExternalID() (string, error) {
	_, id, err := integration.ParseExternalCode(o.Code)
	return id, err
}

// ChangeStatus applies an operator status change
func (o *Order) ChangeStatus(status integration.InternalStatus) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}
	if o.Status == status {
		return ErrStatusUnchanged
	}
	o.Status = status
	o.Touch()
	return nil
}

// SetComment replaces the operator comment
func (o *Order) SetComment(comment string) error {
	comment = strings.TrimSpace(comment)
	if len([]rune(comment)) > maxCommentLength {
		return ErrCommentTooLong
	}
	o.Comment = comment
	o.Touch()
	return nil
}

// Assign hands the order to an operator. An empty assignee clears the assignment.
func (o *Order) Assign(assignee string) {
	o.AssignedTo = strings.TrimSpace(assignee)
	o.Touch()
}

// RecordPayment stores payment details entered by an operator
func (o *Order) RecordPayment(method, reference string, paidAt time.Time) {
	o.PaymentMethod = strings.TrimSpace(method)
	o.PaymentReference = strings.TrimSpace(reference)
	o.PaidAt = &paidAt
	o.Touch()
}

// ---------------------------------------------------------------------------
// Repository
// ---------------------------------------------------------------------------

// UpsertResult reports what an ingestion upsert did
type UpsertResult struct {
	ID      uuid.UUID
	Created bool
}

// Filter narrows order listings
type Filter struct {
	Source integration.PlatformCode
	Status integration.InternalStatus
	// Search matches code, customer name, phone and product names
	Search   string
	Page     int
	PageSize int
	// SortBy is a column name; unknown columns fall back to created_at
	SortBy    string
	SortOrder string
}

// Repository persists orders
type Repository interface {
	// UpsertIngested inserts the order, or on a code conflict updates only the
	// ingestion-owned columns of the existing row, in one statement.
	UpsertIngested(ctx context.Context, o *Order) (UpsertResult, error)

	// FindByID returns ErrOrderNotFound when missing
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByCode returns ErrOrderNotFound when missing
	FindByCode(ctx context.Context, code string) (*Order, error)

	// List returns a page of orders and the total count
	List(ctx context.Context, filter Filter) ([]Order, int64, error)

	// SaveWorkflow persists status and operator-owned fields of an existing order
	SaveWorkflow(ctx context.Context, o *Order) error
}
