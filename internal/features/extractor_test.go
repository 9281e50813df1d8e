package features

import (
	"testing"

	"defi-credit-scorer/internal/aggregation"
	"defi-credit-scorer/internal/domain"
)

func ts(v int64) *int64 { return &v }

func tx(wallet string, action domain.Action, when *int64, symbol, amount, price string) *domain.Transaction {
	return &domain.Transaction{
		Wallet:        wallet,
		Action:        action,
		Timestamp:     when,
		AssetSymbol:   symbol,
		AmountRaw:     amount,
		AssetPriceUSD: price,
	}
}

func extract(t *testing.T, txs ...*domain.Transaction) *domain.FeatureVector {
	t.Helper()
	book := aggregation.Build(txs)
	if book.Len() != 1 {
		t.Fatalf("test fixture spans %d wallets, want 1", book.Len())
	}
	return Extract(book.Aggregates()[0])
}

func TestSafeAmount(t *testing.T) {
	cases := []struct {
		name   string
		amount string
		price  string
		want   float64
		ok     bool
	}{
		{"amount with price", "2000000000", "0.99", 1980.0, true},
		{"amount without price", "1000000000", "", 1000.0, true},
		{"absent amount", "", "0.99", 0, false},
		{"malformed amount", "abc", "0.99", 0, false},
		{"present malformed price", "1000000000", "N/A", 0, false},
		{"big raw decimal", "145000000000000000000", "", 145_000_000_000_000, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := SafeAmount(&domain.Transaction{AmountRaw: tc.amount, AssetPriceUSD: tc.price})
			if ok != tc.ok {
				t.Fatalf("ok: got %v, want %v", ok, tc.ok)
			}
			if ok && !almostEqual(got, tc.want, 1e-9) {
				t.Errorf("amount: got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCountMalformedAmounts(t *testing.T) {
	txs := []*domain.Transaction{
		{Wallet: "w1", Action: domain.ActionDeposit, AmountRaw: "1000000000"},
		{Wallet: "w1", Action: domain.ActionDeposit, AmountRaw: "oops"},
		{Wallet: "w1", Action: domain.ActionDeposit, AmountRaw: "1000000000", AssetPriceUSD: "bad"},
		{Wallet: "w1", Action: domain.ActionLiquidation}, // absent amount is not malformed
	}
	if got := CountMalformedAmounts(txs); got != 2 {
		t.Errorf("CountMalformedAmounts: got %d, want 2", got)
	}
}

func TestExtract_HealthyWallet(t *testing.T) {
	fv := extract(t,
		tx("w1", domain.ActionDeposit, ts(0), "USDC", "1000000000", ""),
		tx("w1", domain.ActionDeposit, ts(86400), "USDC", "2000000000", ""),
		tx("w1", domain.ActionBorrow, ts(172800), "DAI", "1500000000", ""),
		tx("w1", domain.ActionRepay, ts(259200), "DAI", "750000000", ""),
	)

	if fv.TotalTransactions != 4 {
		t.Errorf("TotalTransactions: got %d, want 4", fv.TotalTransactions)
	}
	if fv.DepositCount != 2 || fv.BorrowCount != 1 || fv.RepayCount != 1 {
		t.Errorf("counts: got deposits=%d borrows=%d repays=%d", fv.DepositCount, fv.BorrowCount, fv.RepayCount)
	}
	if !almostEqual(fv.TotalDepositVolume, 3000, 1e-9) {
		t.Errorf("TotalDepositVolume: got %v, want 3000", fv.TotalDepositVolume)
	}
	if !almostEqual(fv.AccountAgeDays, 3, 1e-9) {
		t.Errorf("AccountAgeDays: got %v, want 3", fv.AccountAgeDays)
	}
	// 3 days over 3 gaps
	if !almostEqual(fv.AvgTxInterval, 1, 1e-9) {
		t.Errorf("AvgTxInterval: got %v, want 1", fv.AvgTxInterval)
	}
	if fv.LiquidationRatio != 0 {
		t.Errorf("LiquidationRatio: got %v, want 0", fv.LiquidationRatio)
	}
	if !almostEqual(fv.RepaymentRatio, 0.5, 1e-9) {
		t.Errorf("RepaymentRatio: got %v, want 0.5", fv.RepaymentRatio)
	}
	// 1500 borrowed against 3000 deposited
	if !almostEqual(fv.BorrowUtilization, 0.5, 1e-9) {
		t.Errorf("BorrowUtilization: got %v, want 0.5", fv.BorrowUtilization)
	}
	if fv.AssetDiversity != 2 {
		t.Errorf("AssetDiversity: got %d, want 2", fv.AssetDiversity)
	}
	if fv.ActionDiversity != 3 {
		t.Errorf("ActionDiversity: got %d, want 3", fv.ActionDiversity)
	}
	// Perfectly even 86400s spacing
	if fv.TimeRegularity != 0 {
		t.Errorf("TimeRegularity: got %v, want 0", fv.TimeRegularity)
	}
	// deposits 1000 and 2000: pop stddev 500 over mean 1500
	if !almostEqual(fv.DepositSizeConsistency, 500.0/(1500.0+covEpsilon), 1e-12) {
		t.Errorf("DepositSizeConsistency: got %v", fv.DepositSizeConsistency)
	}
}

func TestExtract_PricedUtilization(t *testing.T) {
	// Deposit 2e9 and borrow 1e9 raw units at the same price: the price
	// cancels out and utilization lands at exactly 0.5.
	fv := extract(t,
		tx("w1", domain.ActionDeposit, ts(0), "USDC", "2000000000", "0.99"),
		tx("w1", domain.ActionBorrow, ts(3600), "USDC", "1000000000", "0.99"),
	)
	if !almostEqual(fv.TotalDepositVolume, 1980, 1e-9) {
		t.Errorf("TotalDepositVolume: got %v, want 1980", fv.TotalDepositVolume)
	}
	if !almostEqual(fv.TotalBorrowVolume, 990, 1e-9) {
		t.Errorf("TotalBorrowVolume: got %v, want 990", fv.TotalBorrowVolume)
	}
	if !almostEqual(fv.BorrowUtilization, 0.5, 1e-9) {
		t.Errorf("BorrowUtilization: got %v, want 0.5", fv.BorrowUtilization)
	}
}

func TestExtract_MalformedAmountsExcluded(t *testing.T) {
	fv := extract(t,
		tx("w1", domain.ActionDeposit, ts(0), "USDC", "1000000000", ""),
		tx("w1", domain.ActionDeposit, ts(100), "USDC", "oops", ""),
		tx("w1", domain.ActionDeposit, ts(200), "USDC", "1000000000", "bad-price"),
	)

	// All three still count as transactions and deposits.
	if fv.TotalTransactions != 3 || fv.DepositCount != 3 {
		t.Errorf("counts: got total=%d deposits=%d, want 3/3", fv.TotalTransactions, fv.DepositCount)
	}
	// Only the parseable deposit contributes volume.
	if !almostEqual(fv.TotalDepositVolume, 1000, 1e-9) {
		t.Errorf("TotalDepositVolume: got %v, want 1000", fv.TotalDepositVolume)
	}
	// Consistency is over the single parseable amount, not the record count.
	if fv.DepositSizeConsistency != 0 {
		t.Errorf("DepositSizeConsistency: got %v, want 0", fv.DepositSizeConsistency)
	}
}

func TestExtract_RepaymentRatio(t *testing.T) {
	// Repay with no recorded borrow counts as fully compliant.
	fv := extract(t,
		tx("w1", domain.ActionRepay, ts(0), "DAI", "1000000000", ""),
	)
	if fv.RepaymentRatio != 1.0 {
		t.Errorf("repay without borrow: got %v, want 1.0", fv.RepaymentRatio)
	}

	// Neither borrow nor repay is neutral-low.
	fv = extract(t, tx("w1", domain.ActionDeposit, ts(0), "USDC", "1000000000", ""))
	if fv.RepaymentRatio != 0 {
		t.Errorf("no borrow activity: got %v, want 0", fv.RepaymentRatio)
	}

	// Over-repayment exceeds 1 and is left unclamped here.
	fv = extract(t,
		tx("w1", domain.ActionBorrow, ts(0), "DAI", "1000000000", ""),
		tx("w1", domain.ActionRepay, ts(100), "DAI", "2000000000", ""),
	)
	if !almostEqual(fv.RepaymentRatio, 2.0, 1e-9) {
		t.Errorf("over-repayment: got %v, want 2.0", fv.RepaymentRatio)
	}
}

func TestExtract_BorrowUtilizationGates(t *testing.T) {
	// No deposits recorded: utilization stays 0 however much was borrowed.
	fv := extract(t, tx("w1", domain.ActionBorrow, ts(0), "DAI", "5000000000", ""))
	if fv.BorrowUtilization != 0 {
		t.Errorf("utilization without deposits: got %v, want 0", fv.BorrowUtilization)
	}

	// Deposits present but sub-dollar: denominator floors at 1.
	fv = extract(t,
		tx("w1", domain.ActionDeposit, ts(0), "USDC", "1", ""),
		tx("w1", domain.ActionBorrow, ts(100), "DAI", "5000000", ""),
	)
	if !almostEqual(fv.BorrowUtilization, 5, 1e-9) {
		t.Errorf("floored denominator: got %v, want 5", fv.BorrowUtilization)
	}
}

func TestExtract_TimeFeatures(t *testing.T) {
	// Missing timestamps contribute nothing to the age window.
	fv := extract(t,
		tx("w1", domain.ActionDeposit, nil, "USDC", "1000000000", ""),
		tx("w1", domain.ActionBorrow, nil, "DAI", "1000000000", ""),
	)
	if fv.AccountAgeDays != 0 || fv.AvgTxInterval != 0 {
		t.Errorf("no timestamps: got age=%v interval=%v, want 0/0", fv.AccountAgeDays, fv.AvgTxInterval)
	}

	// Single transaction has no interval.
	fv = extract(t, tx("w1", domain.ActionDeposit, ts(86400), "USDC", "1000000000", ""))
	if fv.AvgTxInterval != 0 {
		t.Errorf("single tx interval: got %v, want 0", fv.AvgTxInterval)
	}

	// Two timestamps are not enough for regularity.
	fv = extract(t,
		tx("w1", domain.ActionDeposit, ts(0), "USDC", "1000000000", ""),
		tx("w1", domain.ActionDeposit, ts(86400), "USDC", "1000000000", ""),
	)
	if fv.TimeRegularity != 0 {
		t.Errorf("two timestamps: got regularity %v, want 0", fv.TimeRegularity)
	}

	// Out-of-order input timestamps still yield the correct window.
	fv = extract(t,
		tx("w1", domain.ActionDeposit, ts(172800), "USDC", "1000000000", ""),
		tx("w1", domain.ActionBorrow, ts(0), "DAI", "1000000000", ""),
		tx("w1", domain.ActionRepay, ts(86400), "DAI", "1000000000", ""),
	)
	if !almostEqual(fv.AccountAgeDays, 2, 1e-9) {
		t.Errorf("unsorted timestamps: got age %v, want 2", fv.AccountAgeDays)
	}
}

func TestExtract_LiquidationRatio(t *testing.T) {
	fv := extract(t,
		tx("w1", domain.ActionDeposit, ts(0), "USDC", "1000000000", ""),
		tx("w1", domain.ActionLiquidation, ts(100), "USDC", "", ""),
		tx("w1", domain.ActionLiquidation, ts(200), "USDC", "", ""),
		tx("w1", domain.ActionBorrow, ts(300), "DAI", "1000000000", ""),
	)
	if !almostEqual(fv.LiquidationRatio, 0.5, 1e-9) {
		t.Errorf("LiquidationRatio: got %v, want 0.5", fv.LiquidationRatio)
	}
	if fv.LiquidationCount != 2 {
		t.Errorf("LiquidationCount: got %d, want 2", fv.LiquidationCount)
	}
}

func TestExtract_Diversity(t *testing.T) {
	fv := extract(t,
		tx("w1", domain.ActionDeposit, ts(0), "USDC", "1000000000", ""),
		tx("w1", domain.ActionDeposit, ts(100), "", "1000000000", ""),
		tx("w1", domain.ActionOther, ts(200), "USDC", "", ""),
		tx("w1", domain.ActionOther, ts(300), "WMATIC", "", ""),
	)
	// Empty symbols do not count; unknown actions collapse into one kind.
	if fv.AssetDiversity != 2 {
		t.Errorf("AssetDiversity: got %d, want 2", fv.AssetDiversity)
	}
	if fv.ActionDiversity != 2 {
		t.Errorf("ActionDiversity: got %d, want 2", fv.ActionDiversity)
	}
}

func TestExtractAll_PreservesOrder(t *testing.T) {
	book := aggregation.Build([]*domain.Transaction{
		tx("w2", domain.ActionDeposit, ts(0), "USDC", "1000000000", ""),
		tx("w1", domain.ActionBorrow, ts(0), "DAI", "1000000000", ""),
	})

	fvs := ExtractAll(book.Aggregates())
	if len(fvs) != 2 {
		t.Fatalf("expected 2 feature vectors, got %d", len(fvs))
	}
	if fvs[0].Wallet != "w2" || fvs[1].Wallet != "w1" {
		t.Errorf("order: got [%s %s], want [w2 w1]", fvs[0].Wallet, fvs[1].Wallet)
	}
}
