package cache

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/orderhub/backend/internal/domain/shared"
	"github.com/orderhub/backend/internal/infrastructure/config"
)

// StoreOptions tunes OpenIdempotencyStore.
type StoreOptions struct {
	Logger *zap.Logger
	// RequireRedis turns an unreachable Redis into an error instead of a
	// fallback to process memory.
	RequireRedis bool
}

// OpenIdempotencyStore returns the delivery store for cfg. Redis is used
// when enabled and reachable; otherwise deliveries are remembered in process
// memory, which only dedupes within one instance.
func OpenIdempotencyStore(ctx context.Context, cfg config.RedisConfig, opts StoreOptions) (shared.IdempotencyStore, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if !cfg.Enabled {
		log.Info("Delivery store kept in memory", zap.String("reason", "redis disabled"))
		return NewInMemoryIdempotencyStore(), nil
	}

	client, err := NewRedisClient(ctx, cfg)
	switch {
	case err == nil:
		log.Info("Delivery store on Redis", zap.String("addr", cfg.Addr()), zap.Int("db", cfg.DB))
		return NewRedisIdempotencyStore(client, DefaultKeyPrefix), nil
	case opts.RequireRedis:
		return nil, fmt.Errorf("cache: redis required for delivery dedupe: %w", err)
	}

	log.Warn("Delivery store kept in memory, redeliveries across instances are not deduplicated",
		zap.String("reason", "redis unreachable"),
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(), nil
}
