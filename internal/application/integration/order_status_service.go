package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/domain/order"
	"go.uber.org/zap"
)

const (
	defaultSyncLogLimit = 50
	defaultPushTimeout  = time.Minute
)

// Pusher sends an order's status to its platform
type Pusher interface {
	Push(ctx context.Context, o *order.Order) integration.PushResult
}

// OrderStatusService is the operator-facing order workflow
type OrderStatusService struct {
	orders   order.Repository
	pusher   Pusher
	syncLogs integration.SyncLogRepository
	logger   *zap.Logger

	pushTimeout time.Duration
}

// OrderStatusServiceConfig holds the dependencies of OrderStatusService
type OrderStatusServiceConfig struct {
	Orders   order.Repository
	Pusher   Pusher
	SyncLogs integration.SyncLogRepository
	Logger   *zap.Logger

	// PushTimeout bounds the platform push started by ChangeStatus
	PushTimeout time.Duration
}

// NewOrderStatusService creates a new OrderStatusService
func NewOrderStatusService(config OrderStatusServiceConfig) *OrderStatusService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	pushTimeout := config.PushTimeout
	if pushTimeout <= 0 {
		pushTimeout = defaultPushTimeout
	}
	return &OrderStatusService{
		orders:      config.Orders,
		pusher:      config.Pusher,
		syncLogs:    config.SyncLogs,
		logger:      logger,
		pushTimeout: pushTimeout,
	}
}

// Get returns one order
func (s *OrderStatusService) Get(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// GetByCode returns the order with an external code such as "WC-1042".
// Codes are matched case-sensitively after trimming.
func (s *OrderStatusService) GetByCode(ctx context.Context, code string) (*OrderResponse, error) {
	code = strings.TrimSpace(code)
	if _, _, err := integration.ParseExternalCode(code); err != nil {
		return nil, err
	}
	o, err := s.orders.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// List returns a page of orders
func (s *OrderStatusService) List(ctx context.Context, filter order.Filter) (*OrderListResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return &OrderListResult{
		Items:    ToOrderResponses(orders),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// ChangeStatus saves a new status and pushes it to the platform. The saved
// status stands whatever the push outcome. Setting the current status again
// saves nothing and retries the push.
//
// The push runs on a context detached from ctx so a client disconnect or an
// API deadline cannot abort it between the platform call and its sync log.
func (s *OrderStatusService) ChangeStatus(ctx context.Context, id uuid.UUID, status integration.InternalStatus) (*StatusChangeResult, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := o.Status
	switch err := o.ChangeStatus(status); {
	case err == nil:
		if err := s.orders.SaveWorkflow(ctx, o); err != nil {
			return nil, fmt.Errorf("save status of %s: %w", o.Code, err)
		}
		s.logger.Info("Order status changed",
			zap.String("code", o.Code),
			zap.String("from", previous.String()),
			zap.String("to", status.String()))
	case errors.Is(err, order.ErrStatusUnchanged):
		s.logger.Info("Order status unchanged, retrying push",
			zap.String("code", o.Code),
			zap.String("status", status.String()))
	default:
		return nil, err
	}

	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.pushTimeout)
	defer cancel()
	push := s.pusher.Push(pushCtx, o)
	return &StatusChangeResult{
		Order: ToOrderResponse(o),
		Push:  push,
	}, nil
}

// SetComment replaces the operator comment of an order
func (s *OrderStatusService) SetComment(ctx context.Context, id uuid.UUID, comment string) (*OrderResponse, error) {
	return s.update(ctx, id, func(o *order.Order) error {
		return o.SetComment(comment)
	})
}

// Assign hands an order to an operator; an empty assignee clears it
func (s *OrderStatusService) Assign(ctx context.Context, id uuid.UUID, assignee string) (*OrderResponse, error) {
	return s.update(ctx, id, func(o *order.Order) error {
		o.Assign(assignee)
		return nil
	})
}

// RecordPayment stores payment details on an order
func (s *OrderStatusService) RecordPayment(ctx context.Context, id uuid.UUID, in PaymentInput) (*OrderResponse, error) {
	return s.update(ctx, id, func(o *order.Order) error {
		o.RecordPayment(in.Method, in.Reference, in.PaidAt)
		return nil
	})
}

// SyncLogs returns the newest sync log entries of an order
func (s *OrderStatusService) SyncLogs(ctx context.Context, id uuid.UUID, limit int) ([]SyncLogResponse, error) {
	if _, err := s.orders.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = defaultSyncLogLimit
	}
	logs, err := s.syncLogs.FindByOrder(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("load sync logs: %w", err)
	}
	return ToSyncLogResponses(logs), nil
}

func (s *OrderStatusService) update(ctx context.Context, id uuid.UUID, apply func(*order.Order) error) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(o); err != nil {
		return nil, err
	}
	if err := s.orders.SaveWorkflow(ctx, o); err != nil {
		return nil, fmt.Errorf("save order %s: %w", o.Code, err)
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}
