package replay

import (
	"fmt"
	"strings"

	"collectibleAMM/internal/model"
)

// ParsePools converts base58 pool addresses into pubkeys.
func ParsePools(inputs []string) ([]model.Pubkey, error) {
	pools := make([]model.Pubkey, 0, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		pk, err := model.ParsePubkey(input)
		if err != nil {
			return nil, fmt.Errorf("invalid pool: %w", err)
		}
		pools = append(pools, pk)
	}
	return pools, nil
}
