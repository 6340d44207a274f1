// Package messaging publishes domain events to Kafka.
package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/orderhub/backend/internal/domain/shared"
)

// Envelope is the wire format of a published event. Payload holds the
// event's own fields; the header travels in the envelope.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	Key           string          `json:"key"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope wraps a domain event
func NewEnvelope(event shared.DomainEvent) (Envelope, error) {
	h := event.Header()
	payload, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s: %w", h.Type, err)
	}
	return Envelope{
		EventID:       h.ID.String(),
		EventType:     h.Type,
		AggregateType: h.Aggregate,
		AggregateID:   h.AggregateID.String(),
		Key:           h.Key,
		OccurredAt:    h.OccurredAt.UTC(),
		Payload:       payload,
	}, nil
}
