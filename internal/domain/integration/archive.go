package integration

import (
	"context"
	"time"
)

// RawPayload is a webhook body kept for audit and replay
type RawPayload struct {
	Platform    PlatformCode
	OrderCode   string
	DeliveryID  string
	ContentType string
	Body        []byte
	ReceivedAt  time.Time
}

// PayloadArchive stores raw webhook bodies. Archiving is best effort: callers
// log failures and carry on.
type PayloadArchive interface {
	// Archive stores the payload and returns the key it was stored under
	Archive(ctx context.Context, p RawPayload) (string, error)
}
