package storage

import (
	"context"

	"github.com/orderhub/backend/internal/domain/integration"
)

// NoopPayloadArchive discards payloads. It is used when storage is disabled.
type NoopPayloadArchive struct{}

// NewNoopPayloadArchive creates a NoopPayloadArchive
func NewNoopPayloadArchive() *NoopPayloadArchive {
	return &NoopPayloadArchive{}
}

// Archive implements integration.PayloadArchive and stores nothing
func (NoopPayloadArchive) Archive(context.Context, integration.RawPayload) (string, error) {
	return "", nil
}

var _ integration.PayloadArchive = (*NoopPayloadArchive)(nil)
