package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type probeRow struct {
	ID   uint   `gorm:"primaryKey"`
	Code string `gorm:"size:64"`
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&probeRow{}))
	return db
}

func TestDBMetrics_PoolGauges(t *testing.T) {
	reader, provider := newTestMeter(t)
	db := openSQLite(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(7)

	m, err := NewDBMetrics(provider.Meter("db"), sqlDB, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer m.Stop()

	metrics := collect(t, reader)

	gauge, ok := metrics["db_pool_connections_max"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(7), gauge.DataPoints[0].Value)

	pool, ok := metrics["db_pool_connections"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	assert.Len(t, pool.DataPoints, 3)
}

func TestDBMetrics_StopUnregistersCallback(t *testing.T) {
	reader, provider := newTestMeter(t)
	sqlDB, err := openSQLite(t).DB()
	require.NoError(t, err)

	m, err := NewDBMetrics(provider.Meter("db"), sqlDB, nil)
	require.NoError(t, err)
	m.Stop()
	m.Stop()

	metrics := collect(t, reader)
	if g, ok := metrics["db_pool_connections_max"]; ok {
		gauge := g.Data.(metricdata.Gauge[int64])
		assert.Empty(t, gauge.DataPoints)
	}
}

func TestDBMetricsPlugin_RecordsQueries(t *testing.T) {
	reader, provider := newTestMeter(t)
	db := openSQLite(t)

	m, err := NewDBMetrics(provider.Meter("db"), nil, nil)
	require.NoError(t, err)
	require.NoError(t, db.Use(NewDBMetricsPlugin(m)))

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&probeRow{Code: "SHOP-1"}).Error)
	var rows []probeRow
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
	require.NoError(t, db.WithContext(ctx).Model(&probeRow{}).Where("code = ?", "SHOP-1").Update("code", "SHOP-2").Error)

	metrics := collect(t, reader)
	total := metrics["db_query_total"]
	assert.Equal(t, int64(1), sumFor(t, total, AttrDBOperation.String("INSERT")))
	assert.Equal(t, int64(1), sumFor(t, total, AttrDBOperation.String("SELECT")))
	assert.Equal(t, int64(1), sumFor(t, total, AttrDBOperation.String("UPDATE")))
	assert.Contains(t, metrics, "db_query_duration_seconds")
}

func TestNewDBMetrics_NilMeter(t *testing.T) {
	_, err := NewDBMetrics(nil, nil, nil)
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestDetectOperationType(t *testing.T) {
	tests := map[string]string{
		"":                                      "UNKNOWN",
		"SELECT * FROM orders":                  "SELECT",
		"  insert into orders (code) values (1)": "INSERT",
		"UPDATE orders SET status = 2":          "UPDATE",
		"delete from sync_logs":                 "DELETE",
		"WITH x AS (SELECT 1) SELECT * FROM x":  "SELECT",
		"VACUUM":                                "OTHER",
	}
	for sql, want := range tests {
		assert.Equal(t, want, detectOperationType(sql), sql)
	}
}
