//go:build integration

package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/domain/order"
	"github.com/orderhub/backend/internal/infrastructure/migration"
)

// newPostgresTestDB starts a PostgreSQL container and applies the embedded migrations
func newPostgresTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("orderhub_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("orderhub"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)

	m, err := migration.New(sqlDB, "", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())

	return db
}

func TestPostgresOrderRepository_UpsertIngested(t *testing.T) {
	db := newPostgresTestDB(t)
	repo := NewGormOrderRepository(db)
	logs := NewGormSyncLogRepository(db)
	ctx := context.Background()

	first := ingestedOrder(t, "OC-1042", integration.StatusNew)
	res, err := repo.UpsertIngested(ctx, first)
	require.NoError(t, err)
	require.True(t, res.Created)

	stored, err := repo.FindByID(ctx, res.ID)
	require.NoError(t, err)
	require.NoError(t, stored.SetComment("fragile"))
	require.NoError(t, repo.SaveWorkflow(ctx, stored))

	deliveries := make([]*order.Order, 16)
	for i := range deliveries {
		deliveries[i] = ingestedOrder(t, "OC-1042", integration.StatusShipped)
	}
	var wg sync.WaitGroup
	for _, o := range deliveries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := repo.UpsertIngested(ctx, o)
			assert.NoError(t, err)
			assert.False(t, r.Created)
			assert.Equal(t, first.ID, r.ID)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), countOrdersByCode(t, db, "OC-1042"))

	got, err := repo.FindByCode(ctx, "OC-1042")
	require.NoError(t, err)
	assert.Equal(t, integration.StatusShipped, got.Status)
	assert.Equal(t, "fragile", got.Comment)

	require.NoError(t, logs.Save(ctx, integration.NewOutboundSyncLog(got.ID, integration.PushResult{
		Platform:  integration.PlatformOpenCart,
		OrderCode: got.Code,
		Outcome:   integration.PushOutcomeSuccess,
	})))
	found, err := logs.FindByOrder(ctx, got.ID, 10)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}
