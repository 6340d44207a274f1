package integration

import (
	"context"
	"fmt"

	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/domain/order"
	"github.com/orderhub/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// OrderIngestionService writes normalized webhook records to the order store
type OrderIngestionService struct {
	orders  order.Repository
	metrics *telemetry.IntegrationMetrics
	logger  *zap.Logger
}

// OrderIngestionServiceConfig holds the dependencies of OrderIngestionService
type OrderIngestionServiceConfig struct {
	Orders  order.Repository
	Metrics *telemetry.IntegrationMetrics
	Logger  *zap.Logger
}

// NewOrderIngestionService creates a new OrderIngestionService
func NewOrderIngestionService(config OrderIngestionServiceConfig) *OrderIngestionService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderIngestionService{
		orders:  config.Orders,
		metrics: config.Metrics,
		logger:  logger,
	}
}

// Upsert stores n keyed by its external code. A redelivery of a known code
// refreshes the ingestion-owned columns and leaves operator fields untouched.
func (s *OrderIngestionService) Upsert(ctx context.Context, n *integration.NormalizedOrder) (order.UpsertResult, error) {
	ctx, span := telemetry.Start(ctx, "order_ingestion", "upsert",
		telemetry.SpanAttrOrderCode.String(n.ExternalCode),
		telemetry.SpanAttrPlatform.String(string(n.Source)),
	)
	defer span.End()

	if err := n.Validate(); err != nil {
		telemetry.Fail(span, err)
		return order.UpsertResult{}, fmt.Errorf("upsert %s: %w", n.ExternalCode, err)
	}

	o, err := order.NewFromNormalized(n)
	if err != nil {
		telemetry.Fail(span, err)
		return order.UpsertResult{}, fmt.Errorf("upsert %s: %w", n.ExternalCode, err)
	}

	result, err := s.orders.UpsertIngested(ctx, o)
	if err != nil {
		telemetry.Fail(span, err)
		s.logger.Error("Failed to upsert order",
			zap.String("code", n.ExternalCode),
			zap.String("source", string(n.Source)),
			zap.Error(err))
		return order.UpsertResult{}, fmt.Errorf("upsert %s: %w", n.ExternalCode, err)
	}

	span.SetAttributes(
		telemetry.SpanAttrOrderID.String(result.ID.String()),
		telemetry.SpanAttrCreated.Bool(result.Created),
	)
	s.metrics.RecordUpsert(ctx, string(n.Source), result.Created)
	s.logger.Info("Order upserted",
		zap.String("code", n.ExternalCode),
		zap.String("order_id", result.ID.String()),
		zap.Bool("created", result.Created),
		zap.String("status", n.Status.String()))

	return result, nil
}
