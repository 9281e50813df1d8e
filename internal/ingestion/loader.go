// Package ingestion parses the raw lending-protocol transaction export into
// validated in-memory records. Only records missing the wallet or the
// action are dropped; every other field is optional and individually
// fallible, left for downstream stages to tolerate.
package ingestion

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"defi-credit-scorer/internal/domain"
)

// Stats summarizes one decode pass.
type Stats struct {
	Records int // records seen in the document
	Skipped int // records dropped for missing wallet or action
}

// rawTransaction mirrors the export document shape. Numeric fields arrive
// as either JSON strings or numbers depending on the exporter version, so
// they are captured raw and normalized below.
type rawTransaction struct {
	UserWallet string          `json:"userWallet"`
	Action     string          `json:"action"`
	Timestamp  json.RawMessage `json:"timestamp"`
	ActionData struct {
		Amount        json.RawMessage `json:"amount"`
		AssetPriceUSD json.RawMessage `json:"assetPriceUSD"`
		AssetSymbol   string          `json:"assetSymbol"`
	} `json:"actionData"`
}

// LoadFile reads and decodes a transaction export file.
func LoadFile(path string) ([]*domain.Transaction, *Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open transaction export: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a JSON array of transaction records from r. A malformed
// document is an error; malformed individual fields are not.
func Decode(r io.Reader) ([]*domain.Transaction, *Stats, error) {
	var raw []rawTransaction
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("decode transaction export: %w", err)
	}

	stats := &Stats{Records: len(raw)}
	txs := make([]*domain.Transaction, 0, len(raw))

	for _, rec := range raw {
		if rec.UserWallet == "" || rec.Action == "" {
			stats.Skipped++
			continue
		}

		txs = append(txs, &domain.Transaction{
			Wallet:        rec.UserWallet,
			Action:        NormalizeAction(rec.Action),
			Timestamp:     rawInt64(rec.Timestamp),
			AssetSymbol:   rec.ActionData.AssetSymbol,
			AmountRaw:     rawNumericString(rec.ActionData.Amount),
			AssetPriceUSD: rawNumericString(rec.ActionData.AssetPriceUSD),
		})
	}

	return txs, stats, nil
}

// NormalizeAction maps an export action string onto the known action kinds.
// Matching is case-insensitive; unrecognized actions become ActionOther.
func NormalizeAction(action string) domain.Action {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "deposit":
		return domain.ActionDeposit
	case "borrow":
		return domain.ActionBorrow
	case "repay":
		return domain.ActionRepay
	case "redeemunderlying", "redeem_underlying":
		return domain.ActionRedeem
	case "liquidationcall", "liquidation_call":
		return domain.ActionLiquidation
	default:
		return domain.ActionOther
	}
}

// rawInt64 extracts an integer from a raw JSON value that may be a number
// or a numeric string. Anything else counts as absent.
func rawInt64(raw json.RawMessage) *int64 {
	s := rawNumericString(raw)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Exporters sometimes emit timestamps as floats.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return nil
		}
		v = int64(f)
	}
	return &v
}

// rawNumericString returns the textual form of a raw JSON string or number,
// or "" when the value is absent, null, or some other shape.
func rawNumericString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return ""
	}
	return n.String()
}
