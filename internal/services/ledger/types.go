package ledger

// CoinStatus is what a player sees about their wallet.
type CoinStatus struct {
	Balance         int64 `json:"balance"`
	NextFreeCoinsAt int64 `json:"nextFreeCoinsAt"`
}

// Balance is the result of a plain credit or debit.
type Balance struct {
	Balance int64 `json:"balance"`
}
