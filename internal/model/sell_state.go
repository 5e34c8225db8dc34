package model

// SellState tracks how many units of one asset a pool holds.
type SellState struct {
	Pool               Pubkey   `json:"pool"`
	PoolOwner          Pubkey   `json:"pool_owner"`
	AssetMint          Pubkey   `json:"asset_mint"`
	CosignerAnnotation [32]byte `json:"cosigner_annotation"`
	AssetAmount        uint64   `json:"asset_amount"`
	RentLamports       uint64   `json:"rent_lamports"`
}

// Escrow is the pool's native currency escrow. A stored record means the
// account is open.
type Escrow struct {
	Pool     Pubkey `json:"pool"`
	Lamports uint64 `json:"lamports"`
}
