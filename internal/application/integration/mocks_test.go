package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/domain/order"
	"github.com/orderhub/backend/internal/domain/shared"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) UpsertIngested(ctx context.Context, o *order.Order) (order.UpsertResult, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(order.UpsertResult), args.Error(1)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByCode(ctx context.Context, code string) (*order.Order, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, filter order.Filter) ([]order.Order, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) SaveWorkflow(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

// MockCredentialsRepository is a mock implementation of integration.CredentialsRepository
type MockCredentialsRepository struct {
	mock.Mock
}

func (m *MockCredentialsRepository) FindByPlatform(ctx context.Context, platform integration.PlatformCode) (*integration.PlatformCredentials, error) {
	args := m.Called(ctx, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.PlatformCredentials), args.Error(1)
}

func (m *MockCredentialsRepository) FindAll(ctx context.Context) ([]integration.PlatformCredentials, error) {
	args := m.Called(ctx)
	return args.Get(0).([]integration.PlatformCredentials), args.Error(1)
}

func (m *MockCredentialsRepository) Save(ctx context.Context, creds *integration.PlatformCredentials) error {
	args := m.Called(ctx, creds)
	return args.Error(0)
}

// MockSyncLogRepository is a mock implementation of integration.SyncLogRepository
type MockSyncLogRepository struct {
	mock.Mock
}

func (m *MockSyncLogRepository) Save(ctx context.Context, log *integration.SyncLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockSyncLogRepository) FindByOrder(ctx context.Context, orderID uuid.UUID, limit int) ([]integration.SyncLog, error) {
	args := m.Called(ctx, orderID, limit)
	return args.Get(0).([]integration.SyncLog), args.Error(1)
}

// =============================================================================
// Mock Collaborators
// =============================================================================

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, deliveryID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, deliveryID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, deliveryID string) (bool, error) {
	args := m.Called(ctx, deliveryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockPayloadArchive is a mock implementation of integration.PayloadArchive
type MockPayloadArchive struct {
	mock.Mock
}

func (m *MockPayloadArchive) Archive(ctx context.Context, p integration.RawPayload) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

// MockPushClient is a mock implementation of integration.StatusPushClient
type MockPushClient struct {
	mock.Mock
	platform integration.PlatformCode
}

func (m *MockPushClient) Platform() integration.PlatformCode {
	return m.platform
}

func (m *MockPushClient) PushStatus(ctx context.Context, creds *integration.PlatformCredentials, externalID, vendorStatus string) error {
	args := m.Called(ctx, creds, externalID, vendorStatus)
	return args.Error(0)
}

// pushClients resolves push clients from a map
type pushClients map[integration.PlatformCode]integration.StatusPushClient

func (p pushClients) PushClient(platform integration.PlatformCode) (integration.StatusPushClient, bool) {
	c, ok := p[platform]
	return c, ok
}

// MockPusher is a mock implementation of Pusher
type MockPusher struct {
	mock.Mock
}

func (m *MockPusher) Push(ctx context.Context, o *order.Order) integration.PushResult {
	args := m.Called(ctx, o)
	return args.Get(0).(integration.PushResult)
}
