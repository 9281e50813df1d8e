package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the analysis report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# DeFi Credit Scoring Analysis Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Batch: `%s`\n\n", r.BatchID))

	// Executive summary
	sb.WriteString("## Executive Summary\n\n")
	sb.WriteString(fmt.Sprintf("This report covers **%d unique wallets**.\n\n", r.TotalWallets))
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Average Credit Score | %.1f/1000 |\n", r.Stats.Mean))
	sb.WriteString(fmt.Sprintf("| Median Credit Score | %.1f/1000 |\n", r.Stats.Median))
	sb.WriteString(fmt.Sprintf("| Score Standard Deviation | %.1f |\n", r.Stats.Stddev))
	sb.WriteString(fmt.Sprintf("| Score Range | %d-%d |\n", r.Stats.Min, r.Stats.Max))
	sb.WriteString("\n")

	// Distribution
	sb.WriteString("## Score Distribution\n\n")
	sb.WriteString("| Score Range | Wallet Count | Percentage | Risk Level |\n")
	sb.WriteString("|-------------|--------------|------------|------------|\n")
	for _, b := range r.Ranges {
		sb.WriteString(fmt.Sprintf("| %s | %d | %.1f%% | %s |\n",
			b.Label, b.Count, b.Percent, b.RiskTier))
	}
	sb.WriteString("\n")

	// Component breakdown
	sb.WriteString("## Component Score Breakdown\n\n")
	sb.WriteString("| Component | Average Score | Ceiling |\n")
	sb.WriteString("|-----------|---------------|--------|\n")
	for _, c := range r.Components {
		sb.WriteString(fmt.Sprintf("| %s | %.0f | %d |\n", c.Name, c.Average, c.Ceiling))
	}
	sb.WriteString("\nComponent scores are informational and not penalty-adjusted; ")
	sb.WriteString("only the top-level credit score reflects penalties.\n\n")

	// Score extremes
	sb.WriteString("## High-Risk Wallets (Score 0-300)\n\n")
	writeGroup(&sb, r.LowScoreGroup, r.TotalWallets)

	sb.WriteString("## Excellent Credit Wallets (Score 700-1000)\n\n")
	writeGroup(&sb, r.HighScoreGroup, r.TotalWallets)

	return sb.String()
}

func writeGroup(sb *strings.Builder, g GroupSummary, total int) {
	pct := 0.0
	if total > 0 {
		pct = float64(g.Count) / float64(total) * 100
	}
	sb.WriteString(fmt.Sprintf("**Population**: %d wallets (%.1f%% of total)\n\n", g.Count, pct))
	if g.Count == 0 {
		sb.WriteString("No wallets in this range.\n\n")
		return
	}
	sb.WriteString(fmt.Sprintf("- Average Transactions: %.1f\n", g.AvgTransactions))
	sb.WriteString(fmt.Sprintf("- Average Repayment Ratio: %.2f\n", g.AvgRepaymentRatio))
	sb.WriteString(fmt.Sprintf("- Average Liquidation Events: %.2f\n", g.AvgLiquidations))
	sb.WriteString(fmt.Sprintf("- Asset Diversity: %.1f assets\n", g.AvgAssetDiversity))
	sb.WriteString(fmt.Sprintf("- Average Deposit Volume: $%.0f\n", g.AvgDepositVolume))
	sb.WriteString("\n")
}
