package outbox

import (
	"time"

	"github.com/google/uuid"
)

// Entry is a pending event in the outbox table.
type Entry struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string // center ID, area or proof token
	EventType     string // e.g. "vaccination_certified"
	Payload       []byte // JSON-encoded audit.Event
	CreatedAt     time.Time
	ProcessedAt   *time.Time // nil = pending
}

func (e *Entry) IsPending() bool {
	return e.ProcessedAt == nil
}

// NewEntry creates a new outbox entry with a generated UUID.
func NewEntry(aggregateType, aggregateID, eventType string, payload []byte) *Entry {
	return &Entry{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     time.Now(),
	}
}
