package reporting

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"defi-credit-scorer/internal/domain"
	"defi-credit-scorer/internal/storage"
)

// Generator produces reports from the latest scored snapshot.
type Generator struct {
	scoreStore   storage.ScoreStore
	featureStore storage.FeatureStore
	now          func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(scoreStore storage.ScoreStore, featureStore storage.FeatureStore) *Generator {
	return &Generator{
		scoreStore:   scoreStore,
		featureStore: featureStore,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete analysis report from the stores.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	scores, err := g.scoreStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	batchID, err := g.scoreStore.BatchID(ctx)
	if err != nil {
		return nil, err
	}
	feats, err := g.featureStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{
		GeneratedAt:  g.now(),
		BatchID:      batchID,
		TotalWallets: len(scores),
		Stats:        computeScoreStats(scores),
		Ranges:       computeRanges(scores),
		Components:   computeComponents(scores),
	}

	featsByWallet := make(map[string]*domain.FeatureVector, len(feats))
	for _, f := range feats {
		featsByWallet[f.Wallet] = f
	}
	report.HighScoreGroup = summarizeGroup(scores, featsByWallet, func(s int) bool { return s >= 700 })
	report.LowScoreGroup = summarizeGroup(scores, featsByWallet, func(s int) bool { return s <= 300 })

	return report, nil
}

// computeScoreStats calculates distribution statistics over credit scores.
func computeScoreStats(scores []*domain.CreditScore) ScoreStats {
	n := len(scores)
	if n == 0 {
		return ScoreStats{}
	}

	values := make([]float64, n)
	stats := ScoreStats{Min: scores[0].CreditScore, Max: scores[0].CreditScore}
	sum := 0.0
	for i, s := range scores {
		values[i] = float64(s.CreditScore)
		sum += values[i]
		if s.CreditScore < stats.Min {
			stats.Min = s.CreditScore
		}
		if s.CreditScore > stats.Max {
			stats.Max = s.CreditScore
		}
	}
	stats.Mean = sum / float64(n)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	stats.Median = computePercentile(sorted, 0.50)

	// Sample stddev (n-1 denominator), 0 for a single wallet.
	if n > 1 {
		sumSq := 0.0
		for _, v := range values {
			diff := v - stats.Mean
			sumSq += diff * diff
		}
		stats.Stddev = math.Sqrt(sumSq / float64(n-1))
	}

	return stats
}

// computePercentile uses linear interpolation. sorted must be pre-sorted ASC.
func computePercentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// computeRanges buckets scores into ten 100-point ranges. A score of 0
// falls into the first bucket.
func computeRanges(scores []*domain.CreditScore) []RangeBucket {
	counts := make([]int, 10)
	for _, s := range scores {
		idx := 0
		if s.CreditScore > 0 {
			idx = (s.CreditScore - 1) / 100
		}
		if idx > 9 {
			idx = 9
		}
		counts[idx]++
	}

	total := len(scores)
	buckets := make([]RangeBucket, 10)
	for i := range buckets {
		buckets[i] = RangeBucket{
			Label:    fmt.Sprintf("%d-%d", i*100, (i+1)*100),
			RiskTier: riskTiers[i],
			Count:    counts[i],
		}
		if total > 0 {
			buckets[i].Percent = float64(counts[i]) / float64(total) * 100
		}
	}
	return buckets
}

// computeComponents averages the display component scores against their
// ceilings.
func computeComponents(scores []*domain.CreditScore) []ComponentRow {
	rows := []ComponentRow{
		{Name: "Activity", Ceiling: 250},
		{Name: "Risk", Ceiling: 300},
		{Name: "Reliability", Ceiling: 250},
		{Name: "Sophistication", Ceiling: 200},
	}
	if len(scores) == 0 {
		return rows
	}

	for _, s := range scores {
		rows[0].Average += float64(s.ActivityScore)
		rows[1].Average += float64(s.RiskScore)
		rows[2].Average += float64(s.ReliabilityScore)
		rows[3].Average += float64(s.SophisticationScore)
	}
	for i := range rows {
		rows[i].Average /= float64(len(scores))
	}
	return rows
}

// summarizeGroup averages behavioral features over wallets whose score
// matches the predicate.
func summarizeGroup(scores []*domain.CreditScore, feats map[string]*domain.FeatureVector, match func(int) bool) GroupSummary {
	var g GroupSummary
	for _, s := range scores {
		if !match(s.CreditScore) {
			continue
		}
		f, ok := feats[s.Wallet]
		if !ok {
			continue
		}
		g.Count++
		g.AvgTransactions += float64(f.TotalTransactions)
		g.AvgRepaymentRatio += f.RepaymentRatio
		g.AvgLiquidations += float64(f.LiquidationCount)
		g.AvgAssetDiversity += float64(f.AssetDiversity)
		g.AvgDepositVolume += f.TotalDepositVolume
	}
	if g.Count > 0 {
		n := float64(g.Count)
		g.AvgTransactions /= n
		g.AvgRepaymentRatio /= n
		g.AvgLiquidations /= n
		g.AvgAssetDiversity /= n
		g.AvgDepositVolume /= n
	}
	return g
}
