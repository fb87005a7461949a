// Package memstore provides an in-memory implementation of relay.Store.
package memstore

import (
	"context"
	"sync"

	"github.com/linnemanlabs/pagerelay/internal/relay"
)

// Store holds delivery records in memory. Suitable for dev/testing.
type Store struct {
	mu         sync.RWMutex
	deliveries map[string]*relay.Delivery // delivery ID -> record
	latest     map[string]string          // dedup key -> latest delivery ID
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{
		deliveries: make(map[string]*relay.Delivery),
		latest:     make(map[string]string),
	}
}

// Get retrieves a delivery by its ID. Returns a copy.
func (s *Store) Get(_ context.Context, id string) (*relay.Delivery, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.deliveries[id]
	if !ok {
		return nil, false, nil
	}
	cp := *d
	return &cp, true, nil
}

// GetByDedupKey retrieves the most recently stored delivery for a dedup key.
// Returns a copy.
func (s *Store) GetByDedupKey(_ context.Context, key string) (*relay.Delivery, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.latest[key]
	if !ok {
		return nil, false, nil
	}
	d := s.deliveries[id]
	cp := *d
	return &cp, true, nil
}

// Put stores a copy of the delivery record.
func (s *Store) Put(_ context.Context, d *relay.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	s.deliveries[d.ID] = &cp
	if d.DedupKey != "" {
		s.latest[d.DedupKey] = d.ID
	}
	return nil
}
