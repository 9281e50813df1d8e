package domain

// FeatureVector holds the fixed set of behavioral metrics derived from one
// wallet's aggregate. Produced by the feature extractor, consumed by the
// score composer; immutable once produced.
type FeatureVector struct {
	Wallet string

	// Counts
	TotalTransactions int
	DepositCount      int
	BorrowCount       int
	RepayCount        int
	RedeemCount       int
	LiquidationCount  int

	// Converted USD volumes (amount_raw * asset_price_usd / 1e6)
	TotalDepositVolume float64
	TotalBorrowVolume  float64
	TotalRepayVolume   float64

	// Time-based
	AccountAgeDays float64 // (max - min timestamp) / 86400
	AvgTxInterval  float64 // account_age_days / (total - 1), 0 if <= 1 tx

	// Risk indicators
	LiquidationRatio  float64 // liquidations / max(1, total)
	RepaymentRatio    float64 // repay_volume / borrow_volume, see extractor
	BorrowUtilization float64 // borrow_volume / max(1, deposit_volume)

	// Diversity
	AssetDiversity  int // distinct non-empty asset symbols
	ActionDiversity int // distinct action kinds, including "other"

	// Behavioral regularity (coefficient of variation; low = bot-like)
	TimeRegularity         float64
	DepositSizeConsistency float64
}
