package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/domain/order"
	"github.com/orderhub/backend/internal/domain/shared"
	"github.com/orderhub/backend/internal/infrastructure/logger"
	"github.com/orderhub/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// WebhookService verifies, filters and ingests platform webhook deliveries
type WebhookService struct {
	platforms        WebhookResolver
	credentials      integration.CredentialsRepository
	ingestion        *OrderIngestionService
	idempotency      shared.IdempotencyStore
	archive          integration.PayloadArchive
	publisher        shared.EventPublisher
	syncLogs         integration.SyncLogRepository
	metrics          *telemetry.IntegrationMetrics
	logger           *zap.Logger
	requireSignature bool
	dedupeEnabled    bool
	idempotencyTTL   time.Duration
}

// WebhookServiceConfig holds the dependencies of WebhookService.
// Idempotency, Archive, Publisher, SyncLogs and Metrics are optional.
type WebhookServiceConfig struct {
	Platforms   WebhookResolver
	Credentials integration.CredentialsRepository
	Ingestion   *OrderIngestionService
	Idempotency shared.IdempotencyStore
	Archive     integration.PayloadArchive
	Publisher   shared.EventPublisher
	SyncLogs    integration.SyncLogRepository
	Metrics     *telemetry.IntegrationMetrics
	Logger      *zap.Logger

	RequireSignature bool
	DedupeEnabled    bool
	IdempotencyTTL   time.Duration
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(config WebhookServiceConfig) *WebhookService {
	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}
	publisher := config.Publisher
	if publisher == nil {
		publisher = shared.NoopEventPublisher{}
	}
	ttl := config.IdempotencyTTL
	if ttl <= 0 {
		ttl = shared.DefaultDeliveryTTL
	}
	return &WebhookService{
		platforms:        config.Platforms,
		credentials:      config.Credentials,
		ingestion:        config.Ingestion,
		idempotency:      config.Idempotency,
		archive:          config.Archive,
		publisher:        publisher,
		syncLogs:         config.SyncLogs,
		metrics:          config.Metrics,
		logger:           log,
		requireSignature: config.RequireSignature,
		dedupeEnabled:    config.DedupeEnabled && config.Idempotency != nil,
		idempotencyTTL:   ttl,
	}
}

// Platform returns the inbound adapter of a platform
func (s *WebhookService) Platform(platform integration.PlatformCode) (integration.WebhookPlatform, error) {
	adapter, ok := s.platforms.Webhook(platform)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrWebhookUnknownPlatform, platform)
	}
	return adapter, nil
}

// Process handles one delivery. Signature failures wrap ErrWebhookInvalidSignature;
// every other error means the delivery was not stored and the platform should retry.
func (s *WebhookService) Process(ctx context.Context, req WebhookRequest) (WebhookResult, error) {
	start := time.Now()
	result := WebhookResult{Platform: req.Platform}

	ctx, span := telemetry.Start(ctx, "webhook", "process",
		telemetry.SpanAttrPlatform.String(string(req.Platform)),
	)
	defer span.End()

	result, err := s.process(ctx, span, req, result)

	outcome := telemetry.WebhookOutcomeProcessed
	switch {
	case errors.Is(err, ErrWebhookInvalidSignature):
		outcome = telemetry.WebhookOutcomeRejected
	case err != nil:
		outcome = telemetry.WebhookOutcomeFailed
	case result.Ignored:
		outcome = telemetry.WebhookOutcomeIgnored
	case result.Duplicate:
		outcome = telemetry.WebhookOutcomeDuplicate
	}
	telemetry.Fail(span, err)
	s.metrics.RecordWebhook(ctx, string(req.Platform), outcome, time.Since(start))

	return result, err
}

func (s *WebhookService) process(ctx context.Context, span trace.Span, req WebhookRequest, result WebhookResult) (WebhookResult, error) {
	adapter, err := s.Platform(req.Platform)
	if err != nil {
		return result, err
	}

	delivery := &integration.WebhookDelivery{
		Platform: req.Platform,
		Headers:  req.Headers,
		Body:     req.Body,
	}

	ctx = logger.With(ctx, logger.FieldPlatform, string(req.Platform))
	if ping, ok := adapter.(integration.PingDetector); ok && ping.IsPing(delivery) {
		s.log(ctx).Info("Acknowledging webhook ping")
		result.EventType = integration.PingEvent
		result.Ignored = true
		span.SetAttributes(telemetry.SpanAttrEvent.String(result.EventType))
		return result, nil
	}
	if err := s.verify(ctx, adapter, delivery); err != nil {
		s.log(ctx).Warn("Webhook rejected", zap.Error(err))
		return result, err
	}

	result.EventType = adapter.EventType(delivery)
	span.SetAttributes(telemetry.SpanAttrEvent.String(result.EventType))
	if !adapter.IsOrderEvent(result.EventType) {
		s.log(ctx).Info("Ignoring non-order webhook event", zap.String("event", result.EventType))
		result.Ignored = true
		return result, nil
	}

	deliveryID := adapter.DeliveryID(delivery)
	ctx = logger.With(ctx, logger.FieldDeliveryID, deliveryID)
	dedupeKey := ""
	if s.dedupeEnabled && deliveryID != "" {
		dedupeKey = shared.DeliveryKey(string(req.Platform), deliveryID)
		span.SetAttributes(telemetry.SpanAttrDeliveryID.String(deliveryID))

		processed, err := s.idempotency.IsProcessed(ctx, dedupeKey)
		if err != nil {
			s.log(ctx).Warn("Idempotency lookup failed, processing delivery anyway", zap.Error(err))
		} else if processed {
			s.log(ctx).Info("Duplicate webhook delivery")
			result.Duplicate = true
			return result, nil
		}
	}

	normalized, err := adapter.Normalize(req.Body)
	if err != nil {
		return result, fmt.Errorf("normalize %s payload: %w", req.Platform, err)
	}
	span.SetAttributes(telemetry.NonEmpty(
		telemetry.SpanAttrOrderCode.String(normalized.ExternalCode),
		telemetry.SpanAttrStatus.String(normalized.Status.String()),
		telemetry.SpanAttrVendorStatus.String(normalized.VendorStatus),
	)...)

	upserted, err := s.ingestion.Upsert(ctx, normalized)
	if err != nil {
		return result, err
	}
	result.OrderID = upserted.ID
	result.OrderCode = normalized.ExternalCode
	result.Created = upserted.Created

	s.archivePayload(ctx, req, normalized.ExternalCode, deliveryID)
	s.publishIngested(ctx, upserted, normalized)
	s.logInbound(ctx, upserted, normalized, result.EventType)

	if dedupeKey != "" {
		if _, err := s.idempotency.MarkProcessed(ctx, dedupeKey, s.idempotencyTTL); err != nil {
			s.log(ctx).Warn("Failed to mark delivery processed", zap.Error(err))
		}
	}

	return result, nil
}

// log stamps the request, platform and delivery ids carried by ctx
func (s *WebhookService) log(ctx context.Context) *zap.Logger {
	return logger.For(ctx, s.logger)
}

// verify checks the delivery signature against the stored webhook secret.
// Credentials are read per delivery so a rotated secret applies at once.
func (s *WebhookService) verify(ctx context.Context, adapter integration.WebhookPlatform, d *integration.WebhookDelivery) error {
	secret := ""
	creds, err := s.credentials.FindByPlatform(ctx, d.Platform)
	switch {
	case err == nil:
		secret = creds.WebhookSecret
	case errors.Is(err, integration.ErrCredentialsNotFound):
	default:
		return fmt.Errorf("load %s credentials: %w", d.Platform, err)
	}

	if secret == "" {
		if s.requireSignature {
			return fmt.Errorf("%w: %v", ErrWebhookInvalidSignature, ErrWebhookSecretMissing)
		}
		return nil
	}

	if err := adapter.VerifySignature(d.Body, d.Header(adapter.SignatureHeader()), secret); err != nil {
		return fmt.Errorf("%w: %v", ErrWebhookInvalidSignature, err)
	}
	return nil
}

func (s *WebhookService) archivePayload(ctx context.Context, req WebhookRequest, code, deliveryID string) {
	if s.archive == nil {
		return
	}
	receivedAt := req.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}
	key, err := s.archive.Archive(ctx, integration.RawPayload{
		Platform:    req.Platform,
		OrderCode:   code,
		DeliveryID:  deliveryID,
		ContentType: req.ContentType,
		Body:        req.Body,
		ReceivedAt:  receivedAt,
	})
	if err != nil {
		s.log(ctx).Warn("Failed to archive webhook payload",
			zap.String("code", code),
			zap.Error(err))
		return
	}
	if key != "" {
		s.log(ctx).Debug("Webhook payload archived", zap.String("key", key))
	}
}

func (s *WebhookService) publishIngested(ctx context.Context, r order.UpsertResult, n *integration.NormalizedOrder) {
	if err := s.publisher.Publish(ctx, order.NewIngestedEvent(r.ID, n, r.Created)); err != nil {
		s.log(ctx).Warn("Failed to publish order.ingested",
			zap.String("code", n.ExternalCode),
			zap.Error(err))
	}
}

func (s *WebhookService) logInbound(ctx context.Context, r order.UpsertResult, n *integration.NormalizedOrder, event string) {
	if s.syncLogs == nil {
		return
	}
	message := event
	if message == "" {
		message = "webhook"
	}
	if err := s.syncLogs.Save(ctx, integration.NewInboundSyncLog(r.ID, n, message)); err != nil {
		s.log(ctx).Warn("Failed to save inbound sync log",
			zap.String("code", n.ExternalCode),
			zap.Error(err))
	}
}
