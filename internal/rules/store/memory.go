package store

import (
	"context"
	"sync"

	"vaxledger/internal/rules/models"
	id "vaxledger/pkg/domain"
	"vaxledger/pkg/platform/sentinel"
)

type InMemory struct {
	mu    sync.RWMutex
	rules map[id.Area]*models.Rule
}

func NewInMemory() *InMemory {
	return &InMemory{rules: make(map[id.Area]*models.Rule)}
}

// Save replaces any rule registered for the area.
func (s *InMemory) Save(_ context.Context, rule *models.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[rule.Area] = rule.Clone()
	return nil
}

func (s *InMemory) FindByArea(_ context.Context, area id.Area) (*models.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rule, ok := s.rules[area]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return rule.Clone(), nil
}
