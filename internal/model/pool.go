package model

// CurveType selects how the spot price moves per unit.
type CurveType uint8

const (
	CurveLinear CurveType = iota
	CurveExponential
)

func (c CurveType) String() string {
	switch c {
	case CurveLinear:
		return "linear"
	case CurveExponential:
		return "exponential"
	default:
		return "unknown"
	}
}

// Pool is the aggregate root of one owner's market.
type Pool struct {
	Address Pubkey `json:"address"`

	SpotPrice  uint64    `json:"spot_price"`
	CurveType  CurveType `json:"curve_type"`
	CurveDelta uint64    `json:"curve_delta"`

	LPFeeBP                 uint16 `json:"lp_fee_bp"`
	BuysideCreatorRoyaltyBP uint16 `json:"buyside_creator_royalty_bp"`
	ReinvestFulfillBuy      bool   `json:"reinvest_fulfill_buy"`
	ReinvestFulfillSell     bool   `json:"reinvest_fulfill_sell"`
	Expiry                  int64  `json:"expiry"`
	Referral                Pubkey `json:"referral"`
	ReferralBP              uint16 `json:"referral_bp"`

	Owner              Pubkey     `json:"owner"`
	Cosigner           Pubkey     `json:"cosigner"`
	CosignerAnnotation [32]byte   `json:"cosigner_annotation"`
	PaymentMint        Pubkey     `json:"payment_mint"`
	UUID               Pubkey     `json:"uuid"`
	Allowlists         Allowlists `json:"allowlists"`

	BuysidePaymentAmount uint64 `json:"buyside_payment_amount"`
	SellsideAssetAmount  uint64 `json:"sellside_asset_amount"`
	LPFeeEarned          uint64 `json:"lp_fee_earned"`

	SharedEscrowAccount Pubkey `json:"shared_escrow_account"`
	SharedEscrowCount   uint64 `json:"shared_escrow_count"`

	RentLamports uint64 `json:"rent_lamports"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
}

// UsingSharedEscrow reports whether buy side liquidity is delegated.
func (p *Pool) UsingSharedEscrow() bool {
	return !p.SharedEscrowAccount.IsZero()
}

// SharedEscrowLive reports whether the delegation still has quota left.
func (p *Pool) SharedEscrowLive() bool {
	return p.UsingSharedEscrow() && p.SharedEscrowCount > 0
}

// Expired reports whether fills are rejected at unix time now.
func (p *Pool) Expired(now int64) bool {
	return p.Expiry != 0 && now > p.Expiry
}

// RequiresCosigner reports whether operations must be co-signed.
func (p *Pool) RequiresCosigner() bool {
	return !p.Cosigner.IsZero()
}

// PoolAddress derives the key of the pool owned by owner with uuid.
func PoolAddress(program, owner, uuid Pubkey) Pubkey {
	return FindAddress(program, []byte("pool"), owner[:], uuid[:])
}

// EscrowAddress derives the key of the pool's payment escrow.
func EscrowAddress(program, pool Pubkey) Pubkey {
	return FindAddress(program, []byte("buyside_escrow"), pool[:])
}

// SellStateAddress derives the key of the pool's inventory record for asset.
func SellStateAddress(program, pool, asset Pubkey) Pubkey {
	return FindAddress(program, []byte("sell_state"), pool[:], asset[:])
}

// DynamicAllowlistAddress derives the key of a dynamic allowlist record.
func DynamicAllowlistAddress(program, authority, seed Pubkey) Pubkey {
	return FindAddress(program, []byte("dynamic_allowlist"), authority[:], seed[:])
}

// DelegateEscrowAddress derives the owner's escrow account held by the
// delegate escrow program.
func DelegateEscrowAddress(delegateProgram, owner Pubkey) Pubkey {
	return FindAddress(delegateProgram, []byte("escrow"), owner[:])
}
