package fees

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collectibleAMM/internal/ammerr"
	"collectibleAMM/internal/model"
)

func testCreators() []model.Creator {
	return []model.Creator{
		{Address: model.PubkeyFromBytes([]byte("artist")), Verified: true, Share: 70},
		{Address: model.PubkeyFromBytes([]byte("studio")), Verified: false, Share: 30},
	}
}

func TestRoyaltySplitsByShare(t *testing.T) {
	meta := model.AssetMetadata{RoyaltyBP: 500, Creators: testCreators()}

	payouts, paid, err := Royalty(1_000_000, meta, 10_000)
	require.NoError(t, err)

	require.Len(t, payouts, 2)
	assert.Equal(t, uint64(35_000), payouts[0].Lamports)
	assert.Equal(t, uint64(15_000), payouts[1].Lamports)
	assert.Equal(t, uint64(50_000), paid)
}

func TestRoyaltyCappedAndScaled(t *testing.T) {
	tests := []struct {
		name     string
		total    uint64
		metaBP   uint16
		shareBP  uint16
		expected uint64
	}{
		{"capped", 1_000_000, 9_000, 10_000, 300_000},
		{"capped half share", 1_000_000, 9_000, 5_000, 150_000},
		{"no share", 1_000_000, 500, 0, 0},
		// 555 bp at half share is 277.5 bp, not 277
		{"fractional bp", 1_000_000, 555, 5_000, 27_750},
		{"share above max", 1_000_000, 500, 20_000, 50_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, err := RoyaltyFee(tt.total, tt.metaBP, tt.shareBP)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, fee)
		})
	}
}

func TestRoyaltyDustStaysWithPayer(t *testing.T) {
	creators := []model.Creator{
		{Address: model.PubkeyFromBytes([]byte("a")), Share: 33},
		{Address: model.PubkeyFromBytes([]byte("b")), Share: 33},
		{Address: model.PubkeyFromBytes([]byte("c")), Share: 34},
	}
	_, paid, err := Royalty(10_000, model.AssetMetadata{RoyaltyBP: 1_000, Creators: creators}, 10_000)
	require.NoError(t, err)
	// 1000 split 330/330/340
	assert.Equal(t, uint64(1_000), paid)

	_, paid, err = Royalty(1_010, model.AssetMetadata{RoyaltyBP: 1_000, Creators: creators}, 10_000)
	require.NoError(t, err)
	// 101 split 33/33/34
	assert.Equal(t, uint64(100), paid)
}

func TestVerifyCreators(t *testing.T) {
	creators := testCreators()
	require.NoError(t, VerifyCreators(creators, CreatorsHash(creators)))

	swapped := testCreators()
	swapped[0].Share, swapped[1].Share = 30, 70
	require.ErrorIs(t, VerifyCreators(swapped, CreatorsHash(creators)), ammerr.ErrInvalidCreators)

	short := testCreators()
	short[1].Share = 20
	require.ErrorIs(t, VerifyCreators(short, CreatorsHash(short)), ammerr.ErrInvalidCreators)

	require.NoError(t, VerifyCreators(nil, common.Hash{}))
}
