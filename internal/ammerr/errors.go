package ammerr

import (
	"errors"
	"fmt"
)

// Code identifies an engine error kind. Codes are stable and start at 6000.
type Code uint32

// Error is a coded engine error. Every instance is a package-level sentinel,
// so callers match with errors.Is after any amount of wrapping.
type Error struct {
	Code Code
	Name string
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Msg)
}

var registry = make(map[Code]*Error)

func register(code Code, name, msg string) *Error {
	if _, ok := registry[code]; ok {
		panic(fmt.Sprintf("duplicate error code %d", code))
	}
	e := &Error{Code: code, Name: name, Msg: msg}
	registry[code] = e
	return e
}

var (
	ErrInvalidLPFeeBP                 = register(6000, "InvalidLPFeeBP", "lp fee bp must be between 0 and 2000")
	ErrInvalidBuysideCreatorRoyaltyBP = register(6001, "InvalidBuysideCreatorRoyaltyBP", "buyside creator royalty bp must be between 0 and 10000")
	ErrInvalidAllowLists              = register(6002, "InvalidAllowLists", "invalid allowlists")
	ErrInvalidCurveType               = register(6003, "InvalidCurveType", "invalid curve type")
	ErrInvalidCurveDelta              = register(6004, "InvalidCurveDelta", "invalid curve delta")
	ErrInvalidSpotPrice               = register(6005, "InvalidSpotPrice", "invalid spot price")
	ErrInvalidExpiry                  = register(6006, "InvalidExpiry", "invalid expiry")
	ErrInvalidPaymentMint             = register(6007, "InvalidPaymentMint", "only native payment is supported")
	ErrInvalidCosigner                = register(6008, "InvalidCosigner", "invalid cosigner")
	ErrInvalidOwner                   = register(6009, "InvalidOwner", "invalid owner")
	ErrInvalidReferral                = register(6010, "InvalidReferral", "invalid referral")
	ErrNumericOverflow                = register(6011, "NumericOverflow", "numeric overflow")
	ErrInvalidRequestedPrice          = register(6012, "InvalidRequestedPrice", "requested price violates bound")
	ErrInvalidMakerOrTakerFeeBP       = register(6013, "InvalidMakerOrTakerFeeBP", "invalid maker or taker fee bp")
	ErrInvalidCreators                = register(6014, "InvalidCreators", "creators do not match the committed hash")
	ErrInvalidAccountState            = register(6015, "InvalidAccountState", "invalid account state")
	ErrExpired                        = register(6016, "Expired", "pool has expired")
	ErrNotEmptyEscrowAccount          = register(6017, "NotEmptyEscrowAccount", "escrow account is not empty")
	ErrNotEmptySellsideAssetAmount    = register(6018, "NotEmptySellsideAssetAmount", "pool still holds sell side assets")
	ErrPoolNotFound                   = register(6019, "PoolNotFound", "pool does not exist")
	ErrSellStateNotFound              = register(6020, "SellStateNotFound", "sell state does not exist")
	ErrInsufficientEscrow             = register(6021, "InsufficientEscrow", "escrow balance is insufficient")
	ErrPubkeyMismatch                 = register(6022, "PubkeyMismatch", "supplied account does not match the expected key")
	ErrConservationViolated           = register(6023, "ConservationViolated", "payment split does not conserve value")
	ErrPoolExists                     = register(6024, "PoolExists", "pool already exists")
	ErrDynamicAllowlistNotFound       = register(6025, "DynamicAllowlistNotFound", "dynamic allowlist does not exist")
	ErrInvalidAsset                   = register(6026, "InvalidAsset", "asset does not match any allowlist rule")
	ErrAssetTransferRejected          = register(6027, "AssetTransferRejected", "asset transfer rejected")
)

// CodeOf returns the code of the first coded error in err's chain.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}

// Lookup returns the sentinel registered under code.
func Lookup(code Code) (*Error, bool) {
	e, ok := registry[code]
	return e, ok
}

// IsEngine reports whether err was produced by the engine's validation rather
// than by an I/O collaborator.
func IsEngine(err error) bool {
	_, ok := CodeOf(err)
	return ok
}
