// Package outbox adapts audit.Store onto the transactional outbox so events
// written inside a store transaction commit or roll back with it.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	audit "vaxledger/pkg/platform/audit"
	"vaxledger/pkg/platform/audit/outbox"
)

const aggregateType = "vaxledger"

type Store struct {
	outbox outbox.Store
}

func New(o outbox.Store) *Store {
	return &Store{outbox: o}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	entry := outbox.NewEntry(aggregateType, event.Subject, event.Action, payload)
	if !event.Timestamp.IsZero() {
		entry.CreatedAt = event.Timestamp
	}
	return s.outbox.Append(ctx, entry)
}
