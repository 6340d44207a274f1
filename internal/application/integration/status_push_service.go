package integration

import (
	"context"
	"errors"
	"time"

	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/domain/order"
	"github.com/orderhub/backend/internal/domain/shared"
	"github.com/orderhub/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Skip reasons reported in PushResult.Reason
const (
	SkipReasonInvalidCode     = "order code does not identify a platform order"
	SkipReasonNoCredentials   = "platform credentials not configured"
	SkipReasonDisabled        = "platform integration disabled"
	SkipReasonNoMapping       = "status has no platform equivalent"
	SkipReasonNoClient        = "no outbound client for platform"
	SkipReasonCredentialsRead = "platform credentials could not be read"
)

// StatusPushService forwards internal status changes to the originating platform.
// Push never returns an error: every failure is reported in the PushResult.
type StatusPushService struct {
	clients     PushClientResolver
	credentials integration.CredentialsRepository
	mapOutbound OutboundMapper
	syncLogs    integration.SyncLogRepository
	publisher   shared.EventPublisher
	metrics     *telemetry.IntegrationMetrics
	logger      *zap.Logger
}

// StatusPushServiceConfig holds the dependencies of StatusPushService
type StatusPushServiceConfig struct {
	Clients     PushClientResolver
	Credentials integration.CredentialsRepository
	MapOutbound OutboundMapper
	SyncLogs    integration.SyncLogRepository
	Publisher   shared.EventPublisher
	Metrics     *telemetry.IntegrationMetrics
	Logger      *zap.Logger
}

// NewStatusPushService creates a new StatusPushService
func NewStatusPushService(config StatusPushServiceConfig) *StatusPushService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	publisher := config.Publisher
	if publisher == nil {
		publisher = shared.NoopEventPublisher{}
	}
	return &StatusPushService{
		clients:     config.Clients,
		credentials: config.Credentials,
		mapOutbound: config.MapOutbound,
		syncLogs:    config.SyncLogs,
		publisher:   publisher,
		metrics:     config.Metrics,
		logger:      logger,
	}
}

// Push sends the current status of o to its platform
func (s *StatusPushService) Push(ctx context.Context, o *order.Order) integration.PushResult {
	var result integration.PushResult
	telemetry.WithProfilingLabels(ctx, telemetry.PushLabels(string(o.Source)), func(c context.Context) {
		result = s.push(c, o)
	})
	return result
}

func (s *StatusPushService) push(ctx context.Context, o *order.Order) integration.PushResult {
	start := time.Now()
	ctx, span := telemetry.Start(ctx, "status_push", "push",
		telemetry.SpanAttrOrderCode.String(o.Code),
		telemetry.SpanAttrStatus.String(o.Status.String()),
	)
	defer span.End()

	result := s.attempt(ctx, o)

	span.SetAttributes(telemetry.NonEmpty(
		telemetry.SpanAttrPlatform.String(string(result.Platform)),
		telemetry.SpanAttrPushOutcome.String(string(result.Outcome)),
		telemetry.SpanAttrVendorStatus.String(result.VendorStatus),
	)...)
	if result.Outcome == integration.PushOutcomeError {
		span.AddEvent("push_failed", trace.WithAttributes(telemetry.SpanAttrPushError.String(result.Error)))
	}
	s.metrics.RecordPush(ctx, string(result.Platform), string(result.Outcome), time.Since(start))
	s.record(ctx, o, result)

	return result
}

// attempt resolves everything needed for the call and makes it. Nothing past
// a skip touches the network.
func (s *StatusPushService) attempt(ctx context.Context, o *order.Order) integration.PushResult {
	result := integration.PushResult{
		Platform:       o.Source,
		OrderCode:      o.Code,
		InternalStatus: o.Status.String(),
	}

	platform, externalID, err := integration.ParseExternalCode(o.Code)
	if err != nil {
		return skipped(result, SkipReasonInvalidCode)
	}
	result.Platform = platform

	creds, err := s.credentials.FindByPlatform(ctx, platform)
	if err != nil {
		if errors.Is(err, integration.ErrCredentialsNotFound) {
			return skipped(result, SkipReasonNoCredentials)
		}
		s.logger.Error("Failed to read platform credentials",
			zap.String("platform", string(platform)),
			zap.Error(err))
		result.Outcome = integration.PushOutcomeError
		result.Reason = SkipReasonCredentialsRead
		result.Error = err.Error()
		return result
	}
	if !creds.CanPush() {
		return skipped(result, SkipReasonDisabled)
	}

	vendorStatus, ok := s.mapOutbound(platform, o.Status)
	if !ok {
		return skipped(result, SkipReasonNoMapping)
	}
	result.VendorStatus = vendorStatus

	client, ok := s.clients.PushClient(platform)
	if !ok {
		return skipped(result, SkipReasonNoClient)
	}

	if err := client.PushStatus(ctx, creds, externalID, vendorStatus); err != nil {
		s.logger.Warn("Status push failed",
			zap.String("code", o.Code),
			zap.String("platform", string(platform)),
			zap.String("vendor_status", vendorStatus),
			zap.Error(err))
		result.Outcome = integration.PushOutcomeError
		result.Error = err.Error()
		return result
	}

	s.logger.Info("Status pushed",
		zap.String("code", o.Code),
		zap.String("platform", string(platform)),
		zap.String("vendor_status", vendorStatus))
	result.Outcome = integration.PushOutcomeSuccess
	return result
}

func skipped(r integration.PushResult, reason string) integration.PushResult {
	r.Outcome = integration.PushOutcomeSkipped
	r.Reason = reason
	return r
}

// record appends the sync log and publishes the event; both are best effort
func (s *StatusPushService) record(ctx context.Context, o *order.Order, r integration.PushResult) {
	if s.syncLogs != nil {
		if err := s.syncLogs.Save(ctx, integration.NewOutboundSyncLog(o.ID, r)); err != nil {
			s.logger.Warn("Failed to save outbound sync log",
				zap.String("code", o.Code),
				zap.Error(err))
		}
	}

	reason := r.Reason
	if r.Error != "" {
		reason = r.Error
	}
	event := order.NewStatusPushedEvent(o, string(r.Platform), r.VendorStatus, string(r.Outcome), reason)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish order.status_pushed",
			zap.String("code", o.Code),
			zap.Error(err))
	}
}
