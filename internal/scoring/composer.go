// Package scoring turns the complete batch of feature vectors into credit
// scores. Normalization is batch-relative (min/max over the whole
// population), so the composer requires the full feature set as a value:
// scores are only comparable within a single run's batch.
package scoring

import (
	"math"

	"defi-credit-scorer/internal/domain"
)

// Composer blends normalized features into credit scores under one Config.
type Composer struct {
	cfg Config
}

// NewComposer creates a composer with the given scoring policy.
func NewComposer(cfg Config) *Composer {
	return &Composer{cfg: cfg}
}

// Components computes the four [0,1] sub-scores for every wallet.
// The input must be the complete batch; output order matches input order.
func (c *Composer) Components(features []*domain.FeatureVector) []*domain.ComponentScores {
	n := len(features)
	if n == 0 {
		return nil
	}

	col := func(get func(*domain.FeatureVector) float64) []float64 {
		values := make([]float64, n)
		for i, f := range features {
			values[i] = get(f)
		}
		return values
	}

	totalTxs := normalize(col(func(f *domain.FeatureVector) float64 { return float64(f.TotalTransactions) }), true)
	ageDays := normalize(col(func(f *domain.FeatureVector) float64 { return f.AccountAgeDays }), true)
	actionDiv := normalize(col(func(f *domain.FeatureVector) float64 { return float64(f.ActionDiversity) }), true)

	liqRatio := normalize(col(func(f *domain.FeatureVector) float64 { return f.LiquidationRatio }), false)
	repayRatio := normalize(col(func(f *domain.FeatureVector) float64 { return f.RepaymentRatio }), true)
	borrowUtil := normalize(clip(col(func(f *domain.FeatureVector) float64 { return f.BorrowUtilization }), 0, c.cfg.Clips.BorrowUtilizationMax), false)

	timeReg := normalize(col(func(f *domain.FeatureVector) float64 { return f.TimeRegularity }), false)
	depositCons := normalize(col(func(f *domain.FeatureVector) float64 { return f.DepositSizeConsistency }), false)
	txInterval := normalize(clip(col(func(f *domain.FeatureVector) float64 { return f.AvgTxInterval }), 0, c.cfg.Clips.AvgTxIntervalMax), true)

	assetDiv := normalize(col(func(f *domain.FeatureVector) float64 { return float64(f.AssetDiversity) }), true)
	depositVol := normalize(clip(col(func(f *domain.FeatureVector) float64 { return f.TotalDepositVolume }), 0, c.cfg.Clips.DepositVolumeMax), true)

	out := make([]*domain.ComponentScores, n)
	for i, f := range features {
		out[i] = &domain.ComponentScores{
			Wallet: f.Wallet,
			Activity: c.cfg.Activity.TotalTransactions*totalTxs[i] +
				c.cfg.Activity.AccountAgeDays*ageDays[i] +
				c.cfg.Activity.ActionDiversity*actionDiv[i],
			Risk: c.cfg.Risk.LiquidationRatio*liqRatio[i] +
				c.cfg.Risk.RepaymentRatio*repayRatio[i] +
				c.cfg.Risk.BorrowUtilization*borrowUtil[i],
			Reliability: c.cfg.Reliability.TimeRegularity*timeReg[i] +
				c.cfg.Reliability.DepositSizeConsistency*depositCons[i] +
				c.cfg.Reliability.AvgTxInterval*txInterval[i],
			Sophistication: c.cfg.Sophistication.AssetDiversity*assetDiv[i] +
				c.cfg.Sophistication.DepositVolume*depositVol[i],
		}
	}
	return out
}

// Compose produces one CreditScore per wallet from the complete batch of
// feature vectors. It never fails: degenerate batches (size 1, zero
// variance everywhere) fall back to the 0.5 normalization rule. Output
// order matches input order.
func (c *Composer) Compose(features []*domain.FeatureVector) []*domain.CreditScore {
	components := c.Components(features)
	if components == nil {
		return nil
	}

	out := make([]*domain.CreditScore, len(features))
	for i, f := range features {
		comp := components[i]

		raw := (c.cfg.Blend.Activity*comp.Activity +
			c.cfg.Blend.Risk*comp.Risk +
			c.cfg.Blend.Reliability*comp.Reliability +
			c.cfg.Blend.Sophistication*comp.Sophistication) * 1000

		final := math.Max(0, raw-c.penalty(f))

		// Component fields are display-only and not penalty-adjusted, so
		// their sum can exceed the final score.
		out[i] = &domain.CreditScore{
			Wallet:              f.Wallet,
			CreditScore:         int(math.Round(final)),
			ActivityScore:       int(math.Round(comp.Activity * c.cfg.Blend.Activity * 1000)),
			RiskScore:           int(math.Round(comp.Risk * c.cfg.Blend.Risk * 1000)),
			ReliabilityScore:    int(math.Round(comp.Reliability * c.cfg.Blend.Reliability * 1000)),
			SophisticationScore: int(math.Round(comp.Sophistication * c.cfg.Blend.Sophistication * 1000)),
		}
	}
	return out
}

// penalty computes the additive deduction from raw, unnormalized features.
func (c *Composer) penalty(f *domain.FeatureVector) float64 {
	total := float64(f.LiquidationCount) * c.cfg.Penalties.PerLiquidation
	if f.RepaymentRatio < c.cfg.Penalties.PoorRepaymentThreshold {
		total += c.cfg.Penalties.PoorRepayment
	}
	if f.TotalTransactions < c.cfg.Penalties.LowActivityThreshold {
		total += c.cfg.Penalties.LowActivity
	}
	return total
}

// normalize scales values linearly into [0,1] using the batch min/max.
// When the batch has no variance every wallet gets 0.5, which avoids both
// division by zero and spurious discrimination. The lower-is-better variant
// subtracts the scaled value from 1 (including the 0.5 fallback, which is
// its own complement).
func normalize(values []float64, higherIsBetter bool) []float64 {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	out := make([]float64, len(values))
	if hi == lo {
		for i := range out {
			out[i] = 0.5
		}
		return out
	}

	for i, v := range values {
		scaled := (v - lo) / (hi - lo)
		if !higherIsBetter {
			scaled = 1 - scaled
		}
		out[i] = scaled
	}
	return out
}

// clip caps values into [lo, hi] before normalization.
func clip(values []float64, lo, hi float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Min(hi, math.Max(lo, v))
	}
	return out
}
