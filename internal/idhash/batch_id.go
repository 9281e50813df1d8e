package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"defi-credit-scorer/internal/domain"
)

// ComputeBatchID computes a deterministic identifier for a scoring run from
// the identity fields of every input transaction, in input order.
// Formula: SHA256 over "wallet|action|timestamp|symbol|amount|price\n" lines.
// Returns hex-encoded hash (64 characters). Identical batches in identical
// order always produce the same ID.
func ComputeBatchID(txs []*domain.Transaction) string {
	h := sha256.New()
	for _, tx := range txs {
		ts := int64(-1)
		if tx.Timestamp != nil {
			ts = *tx.Timestamp
		}
		io.WriteString(h, fmt.Sprintf("%s|%s|%d|%s|%s|%s\n",
			tx.Wallet,
			string(tx.Action),
			ts,
			tx.AssetSymbol,
			tx.AmountRaw,
			tx.AssetPriceUSD,
		))
	}
	return hex.EncodeToString(h.Sum(nil))
}
