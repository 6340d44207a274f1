package handler

import (
	"context"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	integrationapp "github.com/orderhub/backend/internal/application/integration"
	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/infrastructure/auth"
	"github.com/orderhub/backend/internal/infrastructure/cache"
	"github.com/orderhub/backend/internal/infrastructure/ecommerce"
	"github.com/orderhub/backend/internal/infrastructure/persistence"
	"github.com/orderhub/backend/internal/infrastructure/persistence/models"
)

const testWebhookSecret = "shpss_test_secret"

// testStack wires the real services over an in-memory SQLite database
type testStack struct {
	orders      *persistence.GormOrderRepository
	credentials *persistence.GormCredentialsRepository
	syncLogs    *persistence.GormSyncLogRepository
	db          *gorm.DB

	webhookHandler     *WebhookHandler
	orderHandler       *OrderHandler
	credentialsHandler *CredentialsHandler
}

type stackOptions struct {
	requireSignature bool
	maxBodySize      int64
}

func newTestStack(t *testing.T, opts stackOptions) *testStack {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.OrderModel{}, &models.PlatformCredentialsModel{}, &models.SyncLogModel{}))

	sealer, err := auth.NewSecretboxSealer("handler-test-credentials-key-0123456789")
	require.NoError(t, err)

	registry, err := ecommerce.NewRegistry(ecommerce.DefaultClientConfig())
	require.NoError(t, err)

	idempotency := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idempotency.Close() })

	s := &testStack{
		orders:      persistence.NewGormOrderRepository(db),
		credentials: persistence.NewGormCredentialsRepository(db, sealer),
		syncLogs:    persistence.NewGormSyncLogRepository(db),
		db:          db,
	}

	webhooks := integrationapp.NewWebhookService(integrationapp.WebhookServiceConfig{
		Platforms:        registry,
		Credentials:      s.credentials,
		Ingestion:        integrationapp.NewOrderIngestionService(integrationapp.OrderIngestionServiceConfig{Orders: s.orders}),
		Idempotency:      idempotency,
		SyncLogs:         s.syncLogs,
		RequireSignature: opts.requireSignature,
		DedupeEnabled:    true,
	})
	pusher := integrationapp.NewStatusPushService(integrationapp.StatusPushServiceConfig{
		Clients:     registry,
		Credentials: s.credentials,
		MapOutbound: ecommerce.MapOutbound,
		SyncLogs:    s.syncLogs,
	})
	orders := integrationapp.NewOrderStatusService(integrationapp.OrderStatusServiceConfig{
		Orders:   s.orders,
		Pusher:   pusher,
		SyncLogs: s.syncLogs,
	})

	s.webhookHandler = NewWebhookHandler(webhooks, opts.maxBodySize)
	s.orderHandler = NewOrderHandler(orders)
	s.credentialsHandler = NewCredentialsHandler(integrationapp.NewCredentialsService(s.credentials, nil))
	return s
}

// router mounts the handlers the way the production router does, without auth
func (s *testStack) router() *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.POST("/webhooks/:platform", s.webhookHandler.Handle)
	r.OPTIONS("/webhooks/:platform", s.webhookHandler.Handle)

	api := r.Group("/api/v1")
	api.GET("/orders", s.orderHandler.List)
	api.GET("/orders/:id", s.orderHandler.Get)
	api.GET("/orders/code/:code", s.orderHandler.GetByCode)
	api.PATCH("/orders/:id/status", s.orderHandler.ChangeStatus)
	api.PATCH("/orders/:id/comment", s.orderHandler.SetComment)
	api.PATCH("/orders/:id/assignment", s.orderHandler.Assign)
	api.PATCH("/orders/:id/payment", s.orderHandler.RecordPayment)
	api.GET("/orders/:id/sync-logs", s.orderHandler.SyncLogs)
	api.GET("/integrations/credentials", s.credentialsHandler.List)
	api.PUT("/integrations/credentials/:platform", s.credentialsHandler.Save)
	return r
}

func (s *testStack) saveCredentials(t *testing.T, creds *integration.PlatformCredentials) {
	t.Helper()
	require.NoError(t, s.credentials.Save(context.Background(), creds))
}

func (s *testStack) countOrders(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(&models.OrderModel{}).Count(&n).Error)
	return n
}
