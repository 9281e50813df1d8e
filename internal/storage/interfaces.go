package storage

import (
	"context"

	"defi-credit-scorer/internal/domain"
)

// ScoreStore holds the credit scores of the latest completed run. The
// engine recomputes from a full snapshot each run, so stores replace their
// contents wholesale rather than accumulating across runs.
type ScoreStore interface {
	// ReplaceAll atomically replaces the snapshot with a new run's scores.
	ReplaceAll(ctx context.Context, batchID string, scores []*domain.CreditScore) error

	// GetAll retrieves all scores in first-seen wallet order.
	GetAll(ctx context.Context) ([]*domain.CreditScore, error)

	// GetByWallet retrieves one wallet's score. Returns ErrNotFound if the
	// wallet was not in the latest run.
	GetByWallet(ctx context.Context, wallet string) (*domain.CreditScore, error)

	// BatchID returns the identifier of the latest run, empty before any run.
	BatchID(ctx context.Context) (string, error)
}

// FeatureStore holds the feature vectors of the latest completed run, for
// detailed reporting. Same snapshot semantics as ScoreStore.
type FeatureStore interface {
	// ReplaceAll atomically replaces the snapshot with a new run's features.
	ReplaceAll(ctx context.Context, features []*domain.FeatureVector) error

	// GetAll retrieves all feature vectors in first-seen wallet order.
	GetAll(ctx context.Context) ([]*domain.FeatureVector, error)

	// GetByWallet retrieves one wallet's features. Returns ErrNotFound if
	// the wallet was not in the latest run.
	GetByWallet(ctx context.Context, wallet string) (*domain.FeatureVector, error)
}
