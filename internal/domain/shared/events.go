package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventHeader identifies an event and the aggregate that raised it. Events
// embed it and carry their own payload fields alongside.
type EventHeader struct {
	ID          uuid.UUID
	Type        string
	Aggregate   string
	AggregateID uuid.UUID
	// Key orders events for one aggregate on a partitioned broker
	Key        string
	OccurredAt time.Time
}

// NewEventHeader stamps a fresh id and the current time. An empty key falls
// back to the aggregate id.
func NewEventHeader(eventType, aggregate string, aggregateID uuid.UUID, key string) EventHeader {
	if key == "" {
		key = aggregateID.String()
	}
	return EventHeader{
		ID:          uuid.New(),
		Type:        eventType,
		Aggregate:   aggregate,
		AggregateID: aggregateID,
		Key:         key,
		OccurredAt:  Now(),
	}
}

// Header lets any struct embedding EventHeader satisfy DomainEvent.
func (h EventHeader) Header() EventHeader { return h }

type DomainEvent interface {
	Header() EventHeader
}

// EventPublisher hands events to whatever broker is configured.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// NoopEventPublisher drops every event.
type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(context.Context, ...DomainEvent) error { return nil }
