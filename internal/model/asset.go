package model

import "fmt"

// AssetKind selects the transfer strategy for a collectible.
type AssetKind uint8

const (
	AssetKindVanilla AssetKind = iota
	AssetKindTokenExtension
	AssetKindProgrammable
	AssetKindCompressed
	AssetKindCore
	AssetKindWrapped
)

var assetKindNames = map[AssetKind]string{
	AssetKindVanilla:        "vanilla",
	AssetKindTokenExtension: "token_extension",
	AssetKindProgrammable:   "programmable",
	AssetKindCompressed:     "compressed",
	AssetKindCore:           "core",
	AssetKindWrapped:        "wrapped",
}

func (k AssetKind) String() string {
	if name, ok := assetKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("asset_kind(%d)", uint8(k))
}

func (k AssetKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *AssetKind) UnmarshalText(text []byte) error {
	kind, err := ParseAssetKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// ParseAssetKind maps a kind name back to its value.
func ParseAssetKind(name string) (AssetKind, error) {
	for kind, n := range assetKindNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown asset kind: %s", name)
}

// Asset identifies one collectible. For compressed assets Mint is the
// identity derived from the tree and leaf index, see CompressedAssetID.
type Asset struct {
	Kind AssetKind `json:"kind"`
	Mint Pubkey    `json:"mint"`
}

// CompressedAssetID derives the asset identity of a compressed leaf.
func CompressedAssetID(tree Pubkey, leafIndex uint32) Pubkey {
	idx := []byte{byte(leafIndex), byte(leafIndex >> 8), byte(leafIndex >> 16), byte(leafIndex >> 24)}
	return PubkeyFromBytes([]byte("asset"), tree[:], idx)
}

// Creator is one entry of an asset's declared creator set.
type Creator struct {
	Address  Pubkey `json:"address"`
	Verified bool   `json:"verified"`
	Share    uint8  `json:"share"`
}

// Collection is the collection an asset claims membership of.
type Collection struct {
	Key      Pubkey `json:"key"`
	Verified bool   `json:"verified"`
}

// AssetMetadata is the resolved royalty and eligibility information of an asset.
type AssetMetadata struct {
	Mint       Pubkey      `json:"mint"`
	RoyaltyBP  uint16      `json:"royalty_bp"`
	Creators   []Creator   `json:"creators"`
	Collection *Collection `json:"collection,omitempty"`
	Group      Pubkey      `json:"group"`
}
