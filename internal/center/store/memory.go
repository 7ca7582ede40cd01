package store

import (
	"context"
	"fmt"
	"sync"

	"vaxledger/internal/center/models"
	id "vaxledger/pkg/domain"
	"vaxledger/pkg/platform/sentinel"
)

// InMemory stores centers in memory for the demo environment and tests.
type InMemory struct {
	mu      sync.RWMutex
	centers map[id.CenterID]*models.Center
}

func NewInMemory() *InMemory {
	return &InMemory{centers: make(map[id.CenterID]*models.Center)}
}

// Create inserts the center unless its ID is taken.
func (s *InMemory) Create(_ context.Context, c *models.Center) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.centers[c.ID]; exists {
		return fmt.Errorf("center %d: %w", c.ID, sentinel.ErrAlreadyUsed)
	}
	cp := *c
	s.centers[c.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, centerID id.CenterID) (*models.Center, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.centers[centerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// Count reports how many centers are held; concurrency tests assert on it.
func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.centers), nil
}
