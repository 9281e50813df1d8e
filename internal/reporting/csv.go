package reporting

import (
	"fmt"
	"strings"

	"defi-credit-scorer/internal/domain"
)

// RenderScoresCSV renders credit scores as a CSV string, one row per wallet
// in first-seen order.
func RenderScoresCSV(scores []*domain.CreditScore) string {
	var sb strings.Builder

	sb.WriteString("wallet,credit_score,activity_score,risk_score,reliability_score,sophistication_score\n")

	for _, s := range scores {
		sb.WriteString(fmt.Sprintf("%s,%d,%d,%d,%d,%d\n",
			s.Wallet,
			s.CreditScore,
			s.ActivityScore,
			s.RiskScore,
			s.ReliabilityScore,
			s.SophisticationScore,
		))
	}

	return sb.String()
}

// RenderDetailedCSV renders the feature vectors joined with their scores,
// one row per wallet in first-seen order. Wallets without a matching score
// row are skipped.
func RenderDetailedCSV(features []*domain.FeatureVector, scores []*domain.CreditScore) string {
	scoreByWallet := make(map[string]*domain.CreditScore, len(scores))
	for _, s := range scores {
		scoreByWallet[s.Wallet] = s
	}

	var sb strings.Builder

	sb.WriteString("wallet,total_transactions,deposit_count,borrow_count,repay_count,redeem_count,liquidation_count,")
	sb.WriteString("total_deposit_volume,total_borrow_volume,total_repay_volume,")
	sb.WriteString("account_age_days,avg_tx_interval,liquidation_ratio,repayment_ratio,borrow_utilization,")
	sb.WriteString("asset_diversity,action_diversity,time_regularity,deposit_size_consistency,")
	sb.WriteString("credit_score,activity_score,risk_score,reliability_score,sophistication_score\n")

	for _, f := range features {
		s, ok := scoreByWallet[f.Wallet]
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s,%d,%d,%d,%d,%d,%d,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%d,%d,%.6f,%.6f,%d,%d,%d,%d,%d\n",
			f.Wallet,
			f.TotalTransactions,
			f.DepositCount,
			f.BorrowCount,
			f.RepayCount,
			f.RedeemCount,
			f.LiquidationCount,
			f.TotalDepositVolume,
			f.TotalBorrowVolume,
			f.TotalRepayVolume,
			f.AccountAgeDays,
			f.AvgTxInterval,
			f.LiquidationRatio,
			f.RepaymentRatio,
			f.BorrowUtilization,
			f.AssetDiversity,
			f.ActionDiversity,
			f.TimeRegularity,
			f.DepositSizeConsistency,
			s.CreditScore,
			s.ActivityScore,
			s.RiskScore,
			s.ReliabilityScore,
			s.SophisticationScore,
		))
	}

	return sb.String()
}
