package model

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mr-tron/base58"
)

// Pubkey is a 32-byte account address rendered as base58.
type Pubkey [32]byte

// ParsePubkey decodes a base58 address.
func ParsePubkey(input string) (Pubkey, error) {
	var pk Pubkey
	if input == "" {
		return pk, nil
	}
	raw, err := base58.Decode(input)
	if err != nil {
		return pk, fmt.Errorf("invalid pubkey %q: %w", input, err)
	}
	if len(raw) != len(pk) {
		return pk, fmt.Errorf("invalid pubkey length %d: %s", len(raw), input)
	}
	copy(pk[:], raw)
	return pk, nil
}

// MustPubkey is ParsePubkey for constants and tests.
func MustPubkey(input string) Pubkey {
	pk, err := ParsePubkey(input)
	if err != nil {
		panic(err)
	}
	return pk
}

// PubkeyFromBytes hashes arbitrary bytes into an address. It is used for
// identifiers that are not natively 32 bytes, such as uuids and leaf indexes.
func PubkeyFromBytes(data ...[]byte) Pubkey {
	var pk Pubkey
	copy(pk[:], crypto.Keccak256(data...))
	return pk
}

func (p Pubkey) IsZero() bool {
	return p == Pubkey{}
}

func (p Pubkey) Bytes() []byte {
	return p[:]
}

func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

func (p Pubkey) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Pubkey) UnmarshalText(text []byte) error {
	parsed, err := ParsePubkey(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

const derivationMarker = "ProgramDerivedAddress"

// FindAddress derives a deterministic address owned by program from seeds.
// The derivation is keccak256(seed_0 || ... || seed_n || program || marker).
func FindAddress(program Pubkey, seeds ...[]byte) Pubkey {
	parts := make([][]byte, 0, len(seeds)+2)
	parts = append(parts, seeds...)
	parts = append(parts, program[:], []byte(derivationMarker))
	return PubkeyFromBytes(parts...)
}
