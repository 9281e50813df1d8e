// Package aggregation groups raw transactions into per-wallet aggregates.
package aggregation

import "defi-credit-scorer/internal/domain"

// Book maps wallet addresses to their aggregates while preserving the order
// in which wallets were first encountered. That order is the output order
// for the whole pipeline.
type Book struct {
	order      []string
	aggregates map[string]*domain.WalletAggregate
}

// Build groups the full transaction sequence by wallet. Every transaction is
// appended to its wallet's full list and, for recognized action kinds, to
// exactly one typed sub-list; "other" actions stay in the full list only.
// No transaction is dropped and no wallet is excluded. Deterministic for a
// given input order.
func Build(txs []*domain.Transaction) *Book {
	b := &Book{
		aggregates: make(map[string]*domain.WalletAggregate),
	}

	for _, tx := range txs {
		agg, ok := b.aggregates[tx.Wallet]
		if !ok {
			agg = &domain.WalletAggregate{Wallet: tx.Wallet}
			b.aggregates[tx.Wallet] = agg
			b.order = append(b.order, tx.Wallet)
		}

		agg.Transactions = append(agg.Transactions, tx)

		switch tx.Action {
		case domain.ActionDeposit:
			agg.Deposits = append(agg.Deposits, tx)
		case domain.ActionBorrow:
			agg.Borrows = append(agg.Borrows, tx)
		case domain.ActionRepay:
			agg.Repays = append(agg.Repays, tx)
		case domain.ActionRedeem:
			agg.Redeems = append(agg.Redeems, tx)
		case domain.ActionLiquidation:
			agg.Liquidations = append(agg.Liquidations, tx)
		}
	}

	return b
}

// Wallets returns wallet addresses in first-seen order.
func (b *Book) Wallets() []string {
	return b.order
}

// Get returns the aggregate for a wallet, or nil if the wallet was not seen.
func (b *Book) Get(wallet string) *domain.WalletAggregate {
	return b.aggregates[wallet]
}

// Len returns the number of distinct wallets.
func (b *Book) Len() int {
	return len(b.order)
}

// Aggregates returns all aggregates in first-seen wallet order.
func (b *Book) Aggregates() []*domain.WalletAggregate {
	out := make([]*domain.WalletAggregate, len(b.order))
	for i, w := range b.order {
		out[i] = b.aggregates[w]
	}
	return out
}
