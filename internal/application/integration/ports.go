// Package integration holds the use cases that move orders between the
// e-commerce platforms and the order store: webhook ingestion, the idempotent
// upsert, outbound status pushes and the operator-facing order workflow.
package integration

import (
	"errors"

	"github.com/orderhub/backend/internal/domain/integration"
)

var (
	// ErrWebhookUnknownPlatform is returned for a route segment with no adapter
	ErrWebhookUnknownPlatform = errors.New("webhook: unknown platform")
	// ErrWebhookInvalidSignature is returned when HMAC verification fails
	ErrWebhookInvalidSignature = errors.New("webhook: invalid signature")
	// ErrWebhookSecretMissing is returned when signatures are required but no secret is stored
	ErrWebhookSecretMissing = errors.New("webhook: no webhook secret configured")
)

// WebhookResolver finds the inbound adapter of a platform
type WebhookResolver interface {
	Webhook(platform integration.PlatformCode) (integration.WebhookPlatform, bool)
}

// PushClientResolver finds the outbound client of a platform
type PushClientResolver interface {
	PushClient(platform integration.PlatformCode) (integration.StatusPushClient, bool)
}

// OutboundMapper translates an internal status into a platform's vocabulary.
// The boolean is false when the platform has no equivalent.
type OutboundMapper func(platform integration.PlatformCode, status integration.InternalStatus) (string, bool)
