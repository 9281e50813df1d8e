// Package memory provides in-memory snapshot stores. There is deliberately
// no database backend: aggregates and scores live for one run and are
// replaced wholesale by the next.
package memory

import (
	"context"
	"sync"

	"defi-credit-scorer/internal/domain"
	"defi-credit-scorer/internal/storage"
)

// ScoreStore is an in-memory implementation of storage.ScoreStore.
type ScoreStore struct {
	mu      sync.RWMutex
	batchID string
	order   []string // first-seen wallet order of the latest run
	data    map[string]*domain.CreditScore
}

// NewScoreStore creates an empty in-memory score store.
func NewScoreStore() *ScoreStore {
	return &ScoreStore{
		data: make(map[string]*domain.CreditScore),
	}
}

// ReplaceAll atomically replaces the snapshot with a new run's scores.
func (s *ScoreStore) ReplaceAll(_ context.Context, batchID string, scores []*domain.CreditScore) error {
	order := make([]string, 0, len(scores))
	data := make(map[string]*domain.CreditScore, len(scores))
	for _, sc := range scores {
		if sc == nil || sc.Wallet == "" {
			return storage.ErrInvalidInput
		}
		cp := *sc
		order = append(order, sc.Wallet)
		data[sc.Wallet] = &cp
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.batchID = batchID
	s.order = order
	s.data = data
	return nil
}

// GetAll retrieves all scores in first-seen wallet order.
func (s *ScoreStore) GetAll(_ context.Context) ([]*domain.CreditScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.CreditScore, len(s.order))
	for i, w := range s.order {
		cp := *s.data[w]
		out[i] = &cp
	}
	return out, nil
}

// GetByWallet retrieves one wallet's score.
func (s *ScoreStore) GetByWallet(_ context.Context, wallet string) (*domain.CreditScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.data[wallet]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *sc
	return &cp, nil
}

// BatchID returns the identifier of the latest run.
func (s *ScoreStore) BatchID(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batchID, nil
}

var _ storage.ScoreStore = (*ScoreStore)(nil)
