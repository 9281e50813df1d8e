package domain

// Action is the category of a lending-protocol operation.
type Action string

// Known action kinds. Anything the ingestor does not recognize maps to ActionOther.
const (
	ActionDeposit     Action = "deposit"
	ActionBorrow      Action = "borrow"
	ActionRepay       Action = "repay"
	ActionRedeem      Action = "redeem_underlying"
	ActionLiquidation Action = "liquidation_call"
	ActionOther       Action = "other"
)

// Transaction represents one lending-protocol transaction for a wallet.
// Wallet and Action are always present (the ingestor drops records without
// them); every other field may be absent or malformed and must be tolerated
// downstream, never treated as fatal.
type Transaction struct {
	Wallet        string // wallet address, case-sensitive as supplied
	Action        Action
	Timestamp     *int64 // Unix seconds, nil if absent
	AssetSymbol   string // empty if absent
	AmountRaw     string // decimal string, empty if absent
	AssetPriceUSD string // decimal string, empty if absent
}
