package fees

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collectibleAMM/internal/ammerr"
	"collectibleAMM/internal/model"
)

func TestFulfillSellScenario(t *testing.T) {
	s, err := SplitFulfillSell(Inputs{
		TotalPrice: 1_000_000,
		LPFeeBP:    200,
		TwoSided:   true,
		MakerFeeBP: 0,
		TakerFeeBP: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(20_000), s.LPFee)
	assert.Equal(t, uint64(10_000), s.TakerFee)
	assert.Equal(t, uint64(10_000), s.ReferralFee)
	assert.Equal(t, uint64(1_030_000), s.CounterpartyAmount)
	assert.Equal(t, uint64(1_000_000), s.PoolProceeds)
}

func TestFulfillBuyRebateAboveTakerFeeIsRejected(t *testing.T) {
	_, err := SplitFulfillBuy(Inputs{
		TotalPrice: 500_000,
		MakerFeeBP: -50,
		TakerFeeBP: 0,
	})
	require.ErrorIs(t, err, ammerr.ErrNumericOverflow)
}

func TestFulfillBuyRebateCoveredByTakerFee(t *testing.T) {
	s, err := SplitFulfillBuy(Inputs{
		TotalPrice: 500_000,
		MakerFeeBP: -50,
		TakerFeeBP: 150,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(-2_500), s.MakerFee)
	assert.Equal(t, uint64(7_500), s.TakerFee)
	assert.Equal(t, uint64(5_000), s.ReferralFee)
	assert.Equal(t, uint64(492_500), s.CounterpartyAmount)
	assert.Equal(t, uint64(497_500), s.EscrowDebit)
}

func TestInvalidMakerTakerCombination(t *testing.T) {
	_, err := SplitFulfillBuy(Inputs{TotalPrice: 1, MakerFeeBP: 300, TakerFeeBP: 201})
	require.ErrorIs(t, err, ammerr.ErrInvalidMakerOrTakerFeeBP)

	_, err = SplitFulfillSell(Inputs{TotalPrice: 1, MakerFeeBP: -501})
	require.ErrorIs(t, err, ammerr.ErrInvalidMakerOrTakerFeeBP)

	require.NoError(t, ValidateMakerTaker(-500, 500))
}

func TestLPFeeOnlyWhenTwoSided(t *testing.T) {
	fee, err := LPFee(1_000_000, 200, false)
	require.NoError(t, err)
	assert.Zero(t, fee)

	fee, err = LPFee(1_000_000, 200, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(20_000), fee)
}

func TestConservationProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	creators := []model.Creator{
		{Address: model.PubkeyFromBytes([]byte("a")), Verified: true, Share: 33},
		{Address: model.PubkeyFromBytes([]byte("b")), Share: 33},
		{Address: model.PubkeyFromBytes([]byte("c")), Share: 34},
	}

	for i := 0; i < 2_000; i++ {
		maker := int16(rng.Intn(1_001) - 500)
		maxTaker := 500 - int(maker)
		if maxTaker > 500 {
			maxTaker = 500
		}
		taker := uint16(rng.Intn(maxTaker + 1))
		if int(maker)+int(taker) < 0 {
			taker = uint16(-int(maker))
		}

		in := Inputs{
			TotalPrice:     uint64(rng.Int63n(8_000_000_000_000_000)),
			LPFeeBP:        uint16(rng.Intn(MaxLPFeeBP + 1)),
			TwoSided:       rng.Intn(2) == 0,
			MakerFeeBP:     maker,
			TakerFeeBP:     taker,
			Metadata:       model.AssetMetadata{RoyaltyBP: uint16(rng.Intn(5_000)), Creators: creators},
			RoyaltyShareBP: uint16(rng.Intn(MaxBuysideCreatorRoyaltyBP + 1)),
		}

		buy, err := SplitFulfillBuy(in)
		require.NoError(t, err, "buy %+v", in)
		assert.Equal(t, buy.EscrowDebit, buy.CounterpartyAmount+buy.LPFee+buy.ReferralFee+buy.RoyaltyPaid)
		if in.MakerFeeBP == 0 {
			assert.Equal(t, in.TotalPrice, buy.CounterpartyAmount+buy.LPFee+buy.ReferralFee+buy.RoyaltyPaid)
		}

		sell, err := SplitFulfillSell(in)
		require.NoError(t, err, "sell %+v", in)
		assert.Equal(t, sell.CounterpartyAmount, sell.PoolProceeds+sell.LPFee+sell.ReferralFee+sell.RoyaltyPaid)
		if in.MakerFeeBP == 0 {
			assert.Equal(t, sell.CounterpartyAmount, in.TotalPrice+sell.LPFee+sell.ReferralFee+sell.RoyaltyPaid)
		}
	}
}
