// Package pipeline runs the scoring batch: aggregate transactions by
// wallet, extract every wallet's features, then compose all scores.
//
// Composition is batch-relative, so the runner enforces a hard barrier:
// feature extraction for every wallet completes before any score is
// composed. Extraction itself fans out across wallets (each touches only
// its own aggregate), which is safe as long as the barrier holds.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"defi-credit-scorer/internal/aggregation"
	"defi-credit-scorer/internal/domain"
	"defi-credit-scorer/internal/features"
	"defi-credit-scorer/internal/idhash"
	"defi-credit-scorer/internal/observability"
	"defi-credit-scorer/internal/scoring"
	"defi-credit-scorer/internal/storage"
)

// Runner executes scoring runs over full transaction snapshots.
type Runner struct {
	composer     *scoring.Composer
	scoreStore   storage.ScoreStore
	featureStore storage.FeatureStore
	metrics      *observability.Metrics
	logger       zerolog.Logger
	workers      int
}

// NewRunner creates a runner with the given scoring policy.
func NewRunner(cfg scoring.Config) *Runner {
	return &Runner{
		composer: scoring.NewComposer(cfg),
		logger:   zerolog.Nop(),
		workers:  runtime.NumCPU(),
	}
}

// WithStores sets the snapshot stores to publish results into.
func (r *Runner) WithStores(scores storage.ScoreStore, feats storage.FeatureStore) *Runner {
	r.scoreStore = scores
	r.featureStore = feats
	return r
}

// WithMetrics sets the observability metrics to record runs into.
func (r *Runner) WithMetrics(m *observability.Metrics) *Runner {
	r.metrics = m
	return r
}

// WithLogger sets the runner's logger.
func (r *Runner) WithLogger(logger zerolog.Logger) *Runner {
	r.logger = logger
	return r
}

// WithWorkers sets the extraction fan-out width. Values below 1 mean serial.
func (r *Runner) WithWorkers(n int) *Runner {
	if n < 1 {
		n = 1
	}
	r.workers = n
	return r
}

// RunResult summarizes one completed scoring run.
type RunResult struct {
	BatchID          string                  `json:"batch_id"`
	TransactionsIn   int                     `json:"transactions_in"`
	WalletsScored    int                     `json:"wallets_scored"`
	MalformedAmounts int                     `json:"malformed_amounts"`
	Duration         time.Duration           `json:"duration_ns"`
	Scores           []*domain.CreditScore   `json:"-"`
	Features         []*domain.FeatureVector `json:"-"`
}

// Run scores a full transaction snapshot. An empty batch is not an error;
// it produces an empty (but published) snapshot. The only error sources are
// context cancellation and store failures — the scoring math itself cannot
// fail.
func (r *Runner) Run(ctx context.Context, txs []*domain.Transaction) (*RunResult, error) {
	start := time.Now()

	result := &RunResult{
		BatchID:          idhash.ComputeBatchID(txs),
		TransactionsIn:   len(txs),
		MalformedAmounts: features.CountMalformedAmounts(txs),
	}

	// Phase 1: group by wallet.
	book := aggregation.Build(txs)
	aggs := book.Aggregates()
	r.logger.Debug().
		Str("batch_id", result.BatchID).
		Int("transactions", len(txs)).
		Int("wallets", len(aggs)).
		Msg("aggregated transactions")

	// Phase 2: extract all features. The errgroup Wait below is the phase
	// barrier composition depends on.
	feats := make([]*domain.FeatureVector, len(aggs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, agg := range aggs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			feats[i] = features.Extract(agg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.recordRun("cancelled", start)
		return nil, fmt.Errorf("feature extraction: %w", err)
	}
	result.Features = feats

	if err := ctx.Err(); err != nil {
		r.recordRun("cancelled", start)
		return nil, err
	}

	// Phase 3: compose scores from the complete feature set.
	result.Scores = r.composer.Compose(feats)
	result.WalletsScored = len(result.Scores)

	// Publish the snapshot.
	if r.featureStore != nil {
		if err := r.featureStore.ReplaceAll(ctx, feats); err != nil {
			r.recordRun("error", start)
			return nil, fmt.Errorf("publish features: %w", err)
		}
	}
	if r.scoreStore != nil {
		if err := r.scoreStore.ReplaceAll(ctx, result.BatchID, result.Scores); err != nil {
			r.recordRun("error", start)
			return nil, fmt.Errorf("publish scores: %w", err)
		}
	}

	result.Duration = time.Since(start)
	r.recordRun("ok", start)
	if r.metrics != nil {
		scores := make([]int, len(result.Scores))
		for i, s := range result.Scores {
			scores[i] = s.CreditScore
		}
		r.metrics.RecordScores(scores)
		r.metrics.MalformedAmounts.Add(float64(result.MalformedAmounts))
	}

	r.logger.Info().
		Str("batch_id", result.BatchID).
		Int("transactions", result.TransactionsIn).
		Int("wallets", result.WalletsScored).
		Int("malformed_amounts", result.MalformedAmounts).
		Dur("duration", result.Duration).
		Msg("scoring run completed")

	return result, nil
}

func (r *Runner) recordRun(status string, start time.Time) {
	if r.metrics != nil {
		r.metrics.RecordRun(status, time.Since(start).Seconds())
	}
}
