package reporting

import "time"

// Report represents the scoring analysis report for one run.
type Report struct {
	// Metadata
	GeneratedAt  time.Time
	BatchID      string
	TotalWallets int

	// Score distribution
	Stats  ScoreStats
	Ranges []RangeBucket // ten 100-point buckets

	// Component breakdown (Activity, Risk, Reliability, Sophistication)
	Components []ComponentRow

	// Behavior of the score extremes
	HighScoreGroup GroupSummary // credit_score >= 700
	LowScoreGroup  GroupSummary // credit_score <= 300
}

// ScoreStats contains distribution statistics over credit scores.
type ScoreStats struct {
	Mean   float64
	Median float64
	Stddev float64 // sample stddev
	Min    int
	Max    int
}

// RangeBucket represents one 100-point score range.
type RangeBucket struct {
	Label    string // e.g. "700-800"
	RiskTier string // e.g. "Very Low Risk"
	Count    int
	Percent  float64
}

// ComponentRow represents one component score column.
type ComponentRow struct {
	Name    string
	Ceiling int
	Average float64
}

// GroupSummary summarizes behavioral features of a score group. Averages
// are zero when the group is empty.
type GroupSummary struct {
	Count             int
	AvgTransactions   float64
	AvgRepaymentRatio float64
	AvgLiquidations   float64
	AvgAssetDiversity float64
	AvgDepositVolume  float64
}

// riskTiers labels each 100-point range, lowest scores first.
var riskTiers = []string{
	"Very High Risk",
	"High Risk",
	"High Risk",
	"Moderate Risk",
	"Moderate Risk",
	"Low-Moderate Risk",
	"Low Risk",
	"Very Low Risk",
	"Excellent",
	"Outstanding",
}

// RiskTier returns the tier label for a credit score in [0, 1000].
func RiskTier(score int) string {
	idx := 0
	if score > 0 {
		idx = (score - 1) / 100
	}
	if idx > len(riskTiers)-1 {
		idx = len(riskTiers) - 1
	}
	return riskTiers[idx]
}
