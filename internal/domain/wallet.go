package domain

// WalletAggregate owns one wallet's full ordered transaction list plus the
// five action-partitioned sub-lists. Built once per run by the aggregator
// and never mutated afterwards; discarded at end of run.
type WalletAggregate struct {
	Wallet       string
	Transactions []*Transaction // all transactions, input order
	Deposits     []*Transaction
	Borrows      []*Transaction
	Repays       []*Transaction
	Redeems      []*Transaction
	Liquidations []*Transaction
}
