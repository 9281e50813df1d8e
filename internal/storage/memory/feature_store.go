package memory

import (
	"context"
	"sync"

	"defi-credit-scorer/internal/domain"
	"defi-credit-scorer/internal/storage"
)

// FeatureStore is an in-memory implementation of storage.FeatureStore.
type FeatureStore struct {
	mu    sync.RWMutex
	order []string
	data  map[string]*domain.FeatureVector
}

// NewFeatureStore creates an empty in-memory feature store.
func NewFeatureStore() *FeatureStore {
	return &FeatureStore{
		data: make(map[string]*domain.FeatureVector),
	}
}

// ReplaceAll atomically replaces the snapshot with a new run's features.
func (s *FeatureStore) ReplaceAll(_ context.Context, features []*domain.FeatureVector) error {
	order := make([]string, 0, len(features))
	data := make(map[string]*domain.FeatureVector, len(features))
	for _, f := range features {
		if f == nil || f.Wallet == "" {
			return storage.ErrInvalidInput
		}
		cp := *f
		order = append(order, f.Wallet)
		data[f.Wallet] = &cp
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = order
	s.data = data
	return nil
}

// GetAll retrieves all feature vectors in first-seen wallet order.
func (s *FeatureStore) GetAll(_ context.Context) ([]*domain.FeatureVector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.FeatureVector, len(s.order))
	for i, w := range s.order {
		cp := *s.data[w]
		out[i] = &cp
	}
	return out, nil
}

// GetByWallet retrieves one wallet's features.
func (s *FeatureStore) GetByWallet(_ context.Context, wallet string) (*domain.FeatureVector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.data[wallet]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

var _ storage.FeatureStore = (*FeatureStore)(nil)
