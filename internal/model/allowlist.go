package model

import "fmt"

// AllowlistKind is the rule type of an allowlist slot.
type AllowlistKind uint8

const (
	AllowlistEmpty AllowlistKind = iota
	AllowlistFirstVerifiedCreator
	AllowlistMint
	AllowlistVerifiedCollection
	AllowlistAnyVerifiedCreator
	AllowlistToken2022Group
	AllowlistDynamic
)

// AllowlistSlots is the fixed number of allowlist slots on a pool.
const AllowlistSlots = 6

func (k AllowlistKind) String() string {
	switch k {
	case AllowlistEmpty:
		return "empty"
	case AllowlistFirstVerifiedCreator:
		return "first_verified_creator"
	case AllowlistMint:
		return "mint"
	case AllowlistVerifiedCollection:
		return "verified_collection"
	case AllowlistAnyVerifiedCreator:
		return "any_verified_creator"
	case AllowlistToken2022Group:
		return "token2022_group"
	case AllowlistDynamic:
		return "dynamic"
	default:
		return fmt.Sprintf("allowlist_kind(%d)", uint8(k))
	}
}

// Slot is one allowlist rule.
type Slot struct {
	Kind  AllowlistKind `json:"kind"`
	Value Pubkey        `json:"value"`
}

func (s Slot) IsEmpty() bool {
	return s.Kind == AllowlistEmpty
}

// Allowlists is a pool's or dynamic record's rule set.
type Allowlists [AllowlistSlots]Slot

// DynamicAllowlist is a shared rule set that pools can point at.
type DynamicAllowlist struct {
	Key                Pubkey     `json:"key"`
	Authority          Pubkey     `json:"authority"`
	CosignerAnnotation [32]byte   `json:"cosigner_annotation"`
	Allowlists         Allowlists `json:"allowlists"`
}
