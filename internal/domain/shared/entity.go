package shared

import (
	"time"

	"github.com/google/uuid"
)

// Now is the clock used for entity timestamps. Timestamps are kept in UTC so
// values read back from PostgreSQL compare equal to freshly created ones.
var Now = func() time.Time { return time.Now().UTC() }

// BaseEntity carries an entity's identity and audit timestamps
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity returns an entity with a time-ordered (v7) id, so primary key
// order follows insertion order
func NewBaseEntity() BaseEntity {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	now := Now()
	return BaseEntity{ID: id, CreatedAt: now, UpdatedAt: now}
}

// Touch moves UpdatedAt to now
func (e *BaseEntity) Touch() {
	e.UpdatedAt = Now()
}
