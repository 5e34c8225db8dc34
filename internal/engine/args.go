package engine

import (
	"github.com/ethereum/go-ethereum/common"

	"collectibleAMM/internal/model"
)

// Auth carries the signers of an instruction. Cosigner must equal the
// pool's cosigner when the pool has one.
type Auth struct {
	Signer   model.Pubkey `json:"signer"`
	Cosigner model.Pubkey `json:"cosigner"`
}

type CreatePoolArgs struct {
	Auth
	UUID                    model.Pubkey     `json:"uuid"`
	PoolCosigner            model.Pubkey     `json:"pool_cosigner"`
	SpotPrice               uint64           `json:"spot_price"`
	CurveType               model.CurveType  `json:"curve_type"`
	CurveDelta              uint64           `json:"curve_delta"`
	ReinvestFulfillBuy      bool             `json:"reinvest_fulfill_buy"`
	ReinvestFulfillSell     bool             `json:"reinvest_fulfill_sell"`
	Expiry                  int64            `json:"expiry"`
	LPFeeBP                 uint16           `json:"lp_fee_bp"`
	Referral                model.Pubkey     `json:"referral"`
	ReferralBP              uint16           `json:"referral_bp"`
	BuysideCreatorRoyaltyBP uint16           `json:"buyside_creator_royalty_bp"`
	CosignerAnnotation      [32]byte         `json:"cosigner_annotation"`
	PaymentMint             model.Pubkey     `json:"payment_mint"`
	Allowlists              model.Allowlists `json:"allowlists"`
}

type UpdatePoolArgs struct {
	Auth
	Pool                    model.Pubkey      `json:"pool"`
	SpotPrice               uint64            `json:"spot_price"`
	CurveType               model.CurveType   `json:"curve_type"`
	CurveDelta              uint64            `json:"curve_delta"`
	ReinvestFulfillBuy      bool              `json:"reinvest_fulfill_buy"`
	ReinvestFulfillSell     bool              `json:"reinvest_fulfill_sell"`
	Expiry                  int64             `json:"expiry"`
	LPFeeBP                 uint16            `json:"lp_fee_bp"`
	Referral                model.Pubkey      `json:"referral"`
	ReferralBP              uint16            `json:"referral_bp"`
	BuysideCreatorRoyaltyBP uint16            `json:"buyside_creator_royalty_bp"`
	CosignerAnnotation      [32]byte          `json:"cosigner_annotation"`
	Allowlists              *model.Allowlists `json:"allowlists,omitempty"`
}

// SetSharedEscrowArgs enables delegation with a quota of Count units.
// A zero Count disables it.
type SetSharedEscrowArgs struct {
	Auth
	Pool                model.Pubkey `json:"pool"`
	SharedEscrowAccount model.Pubkey `json:"shared_escrow_account"`
	Count               uint64       `json:"count"`
}

type DepositBuyArgs struct {
	Auth
	Pool          model.Pubkey `json:"pool"`
	PaymentAmount uint64       `json:"payment_amount"`
}

type WithdrawBuyArgs struct {
	Auth
	Pool          model.Pubkey `json:"pool"`
	PaymentAmount uint64       `json:"payment_amount"`
}

type DepositSellArgs struct {
	Auth
	Pool        model.Pubkey `json:"pool"`
	Asset       model.Asset  `json:"asset"`
	AssetAmount uint64       `json:"asset_amount"`
}

type WithdrawSellArgs struct {
	Auth
	Pool        model.Pubkey `json:"pool"`
	Asset       model.Asset  `json:"asset"`
	AssetAmount uint64       `json:"asset_amount"`
}

// FulfillBuyArgs sells AssetAmount units into the pool. Signer is the
// seller and MinPaymentAmount bounds what they receive.
type FulfillBuyArgs struct {
	Auth
	Pool             model.Pubkey `json:"pool"`
	Asset            model.Asset  `json:"asset"`
	AssetAmount      uint64       `json:"asset_amount"`
	MinPaymentAmount uint64       `json:"min_payment_amount"`
	MakerFeeBP       int16        `json:"maker_fee_bp"`
	TakerFeeBP       uint16       `json:"taker_fee_bp"`
	CreatorsHash     common.Hash  `json:"creators_hash"`
	Referral         model.Pubkey `json:"referral"`
}

// FulfillSellArgs buys AssetAmount units from the pool. Signer is the buyer
// and MaxPaymentAmount bounds what they pay.
type FulfillSellArgs struct {
	Auth
	Pool                    model.Pubkey `json:"pool"`
	Asset                   model.Asset  `json:"asset"`
	AssetAmount             uint64       `json:"asset_amount"`
	MaxPaymentAmount        uint64       `json:"max_payment_amount"`
	BuysideCreatorRoyaltyBP uint16       `json:"buyside_creator_royalty_bp"`
	MakerFeeBP              int16        `json:"maker_fee_bp"`
	TakerFeeBP              uint16       `json:"taker_fee_bp"`
	CreatorsHash            common.Hash  `json:"creators_hash"`
	Referral                model.Pubkey `json:"referral"`
}

type ClosePoolArgs struct {
	Auth
	Pool model.Pubkey `json:"pool"`
}

type CreateDynamicAllowlistArgs struct {
	Authority          model.Pubkey     `json:"authority"`
	Seed               model.Pubkey     `json:"seed"`
	CosignerAnnotation [32]byte         `json:"cosigner_annotation"`
	Allowlists         model.Allowlists `json:"allowlists"`
}

type UpdateDynamicAllowlistArgs struct {
	Authority  model.Pubkey     `json:"authority"`
	Key        model.Pubkey     `json:"key"`
	Allowlists model.Allowlists `json:"allowlists"`
}

type MigratePoolArgs struct {
	Authority        model.Pubkey `json:"authority"`
	Pool             model.Pubkey `json:"pool"`
	DynamicAllowlist model.Pubkey `json:"dynamic_allowlist"`
}

// QuoteArgs prices a hypothetical fill without committing it.
type QuoteArgs struct {
	Pool        model.Pubkey `json:"pool"`
	Asset       *model.Asset `json:"asset,omitempty"`
	AssetAmount uint64       `json:"asset_amount"`
	FulfillBuy  bool         `json:"fulfill_buy"`
	MakerFeeBP  int16        `json:"maker_fee_bp"`
	TakerFeeBP  uint16       `json:"taker_fee_bp"`
	// RoyaltyShareBP applies to fulfill-sell quotes; fulfill-buy uses the
	// pool's buy side royalty share.
	RoyaltyShareBP uint16 `json:"royalty_share_bp"`
}
