package store

import (
	"context"
	"fmt"
	"sync"

	"vaxledger/internal/ledger/models"
	id "vaxledger/pkg/domain"
	"vaxledger/pkg/platform/sentinel"
)

type InMemory struct {
	mu      sync.RWMutex
	records map[id.ProofToken]*models.Record
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[id.ProofToken]*models.Record)}
}

func (s *InMemory) Create(_ context.Context, r *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[r.ProofToken]; exists {
		return fmt.Errorf("proof token %s: %w", r.ProofToken, sentinel.ErrAlreadyUsed)
	}
	cp := *r
	s.records[r.ProofToken] = &cp
	return nil
}

func (s *InMemory) FindByToken(_ context.Context, token id.ProofToken) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[token]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *r
	return &cp, nil
}
