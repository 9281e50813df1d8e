// Package features derives the per-wallet behavioral feature vector from a
// wallet aggregate. Extraction is pure and never fails: malformed numeric
// fields exclude only the offending record from the metric it would have
// fed, as if the record were absent.
package features

import (
	"sort"

	"github.com/shopspring/decimal"

	"defi-credit-scorer/internal/domain"
)

// usdScale is the 6-decimal raw-unit divisor. Raw amounts without a price
// are assumed USD-denominated at 6 decimals.
var usdScale = decimal.NewFromInt(1_000_000)

// SafeAmount converts a transaction's raw amount into USD:
// amount_raw * asset_price_usd / 1e6, with the price assumed 1 when absent.
// The second return is false when the record contributes nothing: absent or
// malformed amount, or a present-but-malformed price.
func SafeAmount(tx *domain.Transaction) (float64, bool) {
	if tx.AmountRaw == "" {
		return 0, false
	}
	amount, err := decimal.NewFromString(tx.AmountRaw)
	if err != nil {
		return 0, false
	}

	if tx.AssetPriceUSD != "" {
		price, err := decimal.NewFromString(tx.AssetPriceUSD)
		if err != nil {
			return 0, false
		}
		amount = amount.Mul(price)
	}

	return amount.Div(usdScale).InexactFloat64(), true
}

// CountMalformedAmounts counts transactions whose amount is present but
// fails conversion (bad amount or bad price). Absent amounts are not
// malformed, just silent.
func CountMalformedAmounts(txs []*domain.Transaction) int {
	n := 0
	for _, tx := range txs {
		if tx.AmountRaw == "" {
			continue
		}
		if _, ok := SafeAmount(tx); !ok {
			n++
		}
	}
	return n
}

// safeAmounts collects the converted values of the parseable transactions.
func safeAmounts(txs []*domain.Transaction) []float64 {
	var amounts []float64
	for _, tx := range txs {
		if v, ok := SafeAmount(tx); ok {
			amounts = append(amounts, v)
		}
	}
	return amounts
}

// Extract computes the feature vector for one wallet aggregate.
func Extract(agg *domain.WalletAggregate) *domain.FeatureVector {
	fv := &domain.FeatureVector{
		Wallet:            agg.Wallet,
		TotalTransactions: len(agg.Transactions),
		DepositCount:      len(agg.Deposits),
		BorrowCount:       len(agg.Borrows),
		RepayCount:        len(agg.Repays),
		RedeemCount:       len(agg.Redeems),
		LiquidationCount:  len(agg.Liquidations),
	}

	depositAmounts := safeAmounts(agg.Deposits)
	fv.TotalDepositVolume = sum(depositAmounts)
	fv.TotalBorrowVolume = sum(safeAmounts(agg.Borrows))
	fv.TotalRepayVolume = sum(safeAmounts(agg.Repays))

	// Time-based features over transactions with a present timestamp.
	var timestamps []float64
	for _, tx := range agg.Transactions {
		if tx.Timestamp != nil {
			timestamps = append(timestamps, float64(*tx.Timestamp))
		}
	}
	sort.Float64s(timestamps)

	if len(timestamps) > 0 {
		fv.AccountAgeDays = (timestamps[len(timestamps)-1] - timestamps[0]) / 86400
		if fv.TotalTransactions > 1 {
			fv.AvgTxInterval = fv.AccountAgeDays / float64(fv.TotalTransactions-1)
		}
	}

	fv.LiquidationRatio = float64(fv.LiquidationCount) / float64(max(1, fv.TotalTransactions))

	// Repayment with no recorded borrow counts as fully compliant (1.0);
	// the position may have been opened before the observed window. No
	// borrowing and no repayment is neutral-low (0.0).
	switch {
	case fv.TotalBorrowVolume > 0:
		fv.RepaymentRatio = fv.TotalRepayVolume / fv.TotalBorrowVolume
	case fv.TotalRepayVolume > 0:
		fv.RepaymentRatio = 1.0
	}

	if fv.DepositCount > 0 {
		fv.BorrowUtilization = fv.TotalBorrowVolume / max(1, fv.TotalDepositVolume)
	}

	assets := make(map[string]struct{})
	actions := make(map[domain.Action]struct{})
	for _, tx := range agg.Transactions {
		if tx.AssetSymbol != "" {
			assets[tx.AssetSymbol] = struct{}{}
		}
		actions[tx.Action] = struct{}{}
	}
	fv.AssetDiversity = len(assets)
	fv.ActionDiversity = len(actions)

	// Bot-like timing: low variation of consecutive intervals is suspicious.
	if len(timestamps) > 2 {
		fv.TimeRegularity = coefficientOfVariation(consecutiveDiffs(timestamps))
	}

	fv.DepositSizeConsistency = coefficientOfVariation(depositAmounts)

	return fv
}

// ExtractAll computes feature vectors for every aggregate, preserving order.
func ExtractAll(aggs []*domain.WalletAggregate) []*domain.FeatureVector {
	out := make([]*domain.FeatureVector, len(aggs))
	for i, agg := range aggs {
		out[i] = Extract(agg)
	}
	return out
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
