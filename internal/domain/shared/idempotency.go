package shared

import (
	"context"
	"time"
)

// DefaultDeliveryTTL is how long a processed webhook delivery id is remembered.
// Platforms stop retrying a delivery well within a day.
const DefaultDeliveryTTL = 24 * time.Hour

// IdempotencyStore remembers processed webhook deliveries so platform retries
// of the same delivery are acknowledged without being applied twice
type IdempotencyStore interface {
	// MarkProcessed records key for ttl. It reports false when key was already recorded.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	Close() error
}

// DeliveryKey scopes a delivery id to its platform; ids are only unique per platform
func DeliveryKey(platform, deliveryID string) string {
	return platform + ":" + deliveryID
}
