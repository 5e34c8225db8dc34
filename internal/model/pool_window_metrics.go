package model

import "time"

// PoolWindowMetrics stores aggregated fill metrics for a pool window.
// Lamport amounts are rendered as SOL decimal strings.
type PoolWindowMetrics struct {
	PoolAddress      string    `json:"pool_address"`
	WindowSizeSecs   int64     `json:"window_size_secs"`
	WindowStart      time.Time `json:"window_start"`
	WindowEnd        time.Time `json:"window_end"`
	FulfillBuyCount  uint64    `json:"fulfill_buy_count"`
	FulfillSellCount uint64    `json:"fulfill_sell_count"`
	AssetsBought     uint64    `json:"assets_bought"`
	AssetsSold       uint64    `json:"assets_sold"`
	Volume           string    `json:"volume"`
	LPFee            string    `json:"lp_fee"`
	ReferralFee      string    `json:"referral_fee"`
	RoyaltyPaid      string    `json:"royalty_paid"`
	OpenPrice        uint64    `json:"open_price"`
	ClosePrice       uint64    `json:"close_price"`
	HighPrice        uint64    `json:"high_price"`
	LowPrice         uint64    `json:"low_price"`
	// Liquidity is read from the ledger when the window is flushed, so it
	// reflects the latest pool state rather than the window end.
	BuysideLiquidity *string `json:"buyside_liquidity,omitempty"`
	SellsideAssets   *uint64 `json:"sellside_assets,omitempty"`
	LPFeeRate        *string `json:"lp_fee_rate,omitempty"`
	APR              *string `json:"apr,omitempty"`
	LiquidityMethod  string  `json:"liquidity_method"`
}
