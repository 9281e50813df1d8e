package scoring

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the scoring policy: metric weights per sub-score, blend
// weights, clip bounds, and penalty rules. Defaults reproduce the published
// scoring model; a yaml file can override individual values.
type Config struct {
	Activity       ActivityWeights       `yaml:"activity"`
	Risk           RiskWeights           `yaml:"risk"`
	Reliability    ReliabilityWeights    `yaml:"reliability"`
	Sophistication SophisticationWeights `yaml:"sophistication"`
	Blend          BlendWeights          `yaml:"blend"`
	Clips          ClipBounds            `yaml:"clips"`
	Penalties      PenaltyRules          `yaml:"penalties"`
}

// ActivityWeights weights the activity sub-score metrics (sum to 1).
type ActivityWeights struct {
	TotalTransactions float64 `yaml:"total_transactions"`
	AccountAgeDays    float64 `yaml:"account_age_days"`
	ActionDiversity   float64 `yaml:"action_diversity"`
}

// RiskWeights weights the risk sub-score metrics (sum to 1).
type RiskWeights struct {
	LiquidationRatio  float64 `yaml:"liquidation_ratio"`
	RepaymentRatio    float64 `yaml:"repayment_ratio"`
	BorrowUtilization float64 `yaml:"borrow_utilization"`
}

// ReliabilityWeights weights the reliability sub-score metrics (sum to 1).
type ReliabilityWeights struct {
	TimeRegularity         float64 `yaml:"time_regularity"`
	DepositSizeConsistency float64 `yaml:"deposit_size_consistency"`
	AvgTxInterval          float64 `yaml:"avg_tx_interval"`
}

// SophisticationWeights weights the sophistication sub-score metrics (sum to 1).
type SophisticationWeights struct {
	AssetDiversity float64 `yaml:"asset_diversity"`
	DepositVolume  float64 `yaml:"deposit_volume"`
}

// BlendWeights combines the four sub-scores into the raw score (sum to 1).
// Each component's display ceiling is its blend weight times 1000.
type BlendWeights struct {
	Activity       float64 `yaml:"activity"`
	Risk           float64 `yaml:"risk"`
	Reliability    float64 `yaml:"reliability"`
	Sophistication float64 `yaml:"sophistication"`
}

// ClipBounds caps raw metric values before batch-relative normalization so
// outliers do not stretch the scale for the rest of the population.
type ClipBounds struct {
	BorrowUtilizationMax float64 `yaml:"borrow_utilization_max"`
	AvgTxIntervalMax     float64 `yaml:"avg_tx_interval_max"`
	DepositVolumeMax     float64 `yaml:"deposit_volume_max"`
}

// PenaltyRules defines the additive deductions applied after blending.
type PenaltyRules struct {
	PerLiquidation         float64 `yaml:"per_liquidation"`
	PoorRepayment          float64 `yaml:"poor_repayment"`
	PoorRepaymentThreshold float64 `yaml:"poor_repayment_threshold"`
	LowActivity            float64 `yaml:"low_activity"`
	LowActivityThreshold   int     `yaml:"low_activity_threshold"`
}

// DefaultConfig returns the published scoring policy.
func DefaultConfig() Config {
	return Config{
		Activity: ActivityWeights{
			TotalTransactions: 0.4,
			AccountAgeDays:    0.3,
			ActionDiversity:   0.3,
		},
		Risk: RiskWeights{
			LiquidationRatio:  0.4,
			RepaymentRatio:    0.4,
			BorrowUtilization: 0.2,
		},
		Reliability: ReliabilityWeights{
			TimeRegularity:         0.4,
			DepositSizeConsistency: 0.3,
			AvgTxInterval:          0.3,
		},
		Sophistication: SophisticationWeights{
			AssetDiversity: 0.6,
			DepositVolume:  0.4,
		},
		Blend: BlendWeights{
			Activity:       0.25,
			Risk:           0.30,
			Reliability:    0.25,
			Sophistication: 0.20,
		},
		Clips: ClipBounds{
			BorrowUtilizationMax: 2,
			AvgTxIntervalMax:     30,
			DepositVolumeMax:     100_000,
		},
		Penalties: PenaltyRules{
			PerLiquidation:         50,
			PoorRepayment:          100,
			PoorRepaymentThreshold: 0.5,
			LowActivity:            50,
			LowActivityThreshold:   3,
		},
	}
}

// LoadConfig reads a yaml config file over the defaults, so partial files
// only override the values they name.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read scoring config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse scoring config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid scoring config %s: %w", path, err)
	}
	return cfg, nil
}

const weightSumTolerance = 1e-9

// Validate checks that every weight group sums to 1, clip bounds are
// positive, and penalties are non-negative.
func (c Config) Validate() error {
	groups := []struct {
		name string
		sum  float64
	}{
		{"activity", c.Activity.TotalTransactions + c.Activity.AccountAgeDays + c.Activity.ActionDiversity},
		{"risk", c.Risk.LiquidationRatio + c.Risk.RepaymentRatio + c.Risk.BorrowUtilization},
		{"reliability", c.Reliability.TimeRegularity + c.Reliability.DepositSizeConsistency + c.Reliability.AvgTxInterval},
		{"sophistication", c.Sophistication.AssetDiversity + c.Sophistication.DepositVolume},
		{"blend", c.Blend.Activity + c.Blend.Risk + c.Blend.Reliability + c.Blend.Sophistication},
	}
	for _, g := range groups {
		if math.Abs(g.sum-1) > weightSumTolerance {
			return fmt.Errorf("%s weights must sum to 1, got %g", g.name, g.sum)
		}
	}

	if c.Clips.BorrowUtilizationMax <= 0 || c.Clips.AvgTxIntervalMax <= 0 || c.Clips.DepositVolumeMax <= 0 {
		return fmt.Errorf("clip bounds must be positive")
	}
	if c.Penalties.PerLiquidation < 0 || c.Penalties.PoorRepayment < 0 || c.Penalties.LowActivity < 0 {
		return fmt.Errorf("penalties must be non-negative")
	}
	return nil
}
