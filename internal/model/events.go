package model

// EventKind names a committed instruction.
type EventKind string

const (
	EventPoolCreated         EventKind = "pool_created"
	EventPoolUpdated         EventKind = "pool_updated"
	EventPoolMigrated        EventKind = "pool_migrated"
	EventPoolClosed          EventKind = "pool_closed"
	EventSharedEscrowSet     EventKind = "shared_escrow_set"
	EventDepositBuy          EventKind = "deposit_buy"
	EventDepositSell         EventKind = "deposit_sell"
	EventWithdrawBuy         EventKind = "withdraw_buy"
	EventWithdrawSell        EventKind = "withdraw_sell"
	EventFulfillBuy          EventKind = "fulfill_buy"
	EventFulfillSell         EventKind = "fulfill_sell"
	EventDynamicAllowlistSet EventKind = "dynamic_allowlist_set"
)

// IsFill reports whether the event is a counterparty fill.
func (k EventKind) IsFill() bool {
	return k == EventFulfillBuy || k == EventFulfillSell
}

// Event is the journal record of one committed instruction.
type Event struct {
	Kind      EventKind `json:"kind"`
	Pool      Pubkey    `json:"pool"`
	Owner     Pubkey    `json:"owner"`
	Signer    Pubkey    `json:"signer"`
	AssetMint Pubkey    `json:"asset_mint"`
	Timestamp int64     `json:"timestamp"`

	Quantity uint64 `json:"quantity"`
	Lamports uint64 `json:"lamports"`

	TotalPrice         uint64 `json:"total_price"`
	LPFee              uint64 `json:"lp_fee"`
	MakerFee           int64  `json:"maker_fee"`
	TakerFee           uint64 `json:"taker_fee"`
	ReferralFee        uint64 `json:"referral_fee"`
	RoyaltyPaid        uint64 `json:"royalty_paid"`
	CounterpartyAmount uint64 `json:"counterparty_amount"`
	SpotPriceBefore    uint64 `json:"spot_price_before"`
	SpotPriceAfter     uint64 `json:"spot_price_after"`

	PoolClosed   bool `json:"pool_closed,omitempty"`
	EscrowClosed bool `json:"escrow_closed,omitempty"`
}

// Payment is one native currency movement performed by an instruction.
type Payment struct {
	From     Pubkey `json:"from"`
	To       Pubkey `json:"to"`
	Lamports uint64 `json:"lamports"`
	Reason   string `json:"reason"`
}
