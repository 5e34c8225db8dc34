package pricing

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collectibleAMM/internal/ammerr"
	"collectibleAMM/internal/model"
)

func TestLinearFulfillSellClosedForm(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		spot := uint64(rng.Int63n(1_000_000_000)) + 1
		delta := uint64(rng.Int63n(10_000_000))
		n := uint64(rng.Int63n(50)) + 1

		q, err := Price(Curve{Type: model.CurveLinear, SpotPrice: spot, Delta: delta}, n, false)
		require.NoError(t, err)

		assert.Equal(t, n*spot+delta*n*(n-1)/2, q.TotalPrice)
		assert.Equal(t, spot+n*delta, q.NextSpotPrice)
	}
}

func TestLinearFulfillBuyIsSymmetric(t *testing.T) {
	c := Curve{Type: model.CurveLinear, SpotPrice: 10_000, Delta: 100}

	q, err := Price(c, 5, true)
	require.NoError(t, err)
	// 10000 + 9900 + 9800 + 9700 + 9600
	assert.Equal(t, uint64(49_000), q.TotalPrice)
	assert.Equal(t, uint64(9_500), q.NextSpotPrice)

	up, err := Price(Curve{Type: model.CurveLinear, SpotPrice: q.NextSpotPrice, Delta: 100}, 5, false)
	require.NoError(t, err)
	assert.Equal(t, c.SpotPrice, up.NextSpotPrice)
}

func TestLinearFulfillBuyUnderflowIsAnError(t *testing.T) {
	c := Curve{Type: model.CurveLinear, SpotPrice: 300, Delta: 100}

	q, err := Price(c, 2, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), q.NextSpotPrice)

	// landing exactly on zero would make the next unit free
	_, err = Price(c, 3, true)
	require.ErrorIs(t, err, ammerr.ErrNumericOverflow)

	_, err = Price(c, 4, true)
	require.ErrorIs(t, err, ammerr.ErrNumericOverflow)
}

func TestLinearOverflow(t *testing.T) {
	c := Curve{Type: model.CurveLinear, SpotPrice: math.MaxUint64 / 2, Delta: 1}
	_, err := Price(c, 3, false)
	require.ErrorIs(t, err, ammerr.ErrNumericOverflow)
}

func TestMaxTotalPrice(t *testing.T) {
	c := Curve{Type: model.CurveLinear, SpotPrice: MaxTotalPrice, Delta: 0}

	_, err := Price(c, 1, false)
	require.NoError(t, err)

	_, err = Price(c, 2, false)
	require.ErrorIs(t, err, ammerr.ErrNumericOverflow)
}

func TestExponential(t *testing.T) {
	up, err := Price(Curve{Type: model.CurveExponential, SpotPrice: 1_000_000, Delta: 1_000}, 3, false)
	require.NoError(t, err)
	// 1_000_000 + 1_100_000 + 1_210_000
	assert.Equal(t, uint64(3_310_000), up.TotalPrice)
	assert.Equal(t, uint64(1_331_000), up.NextSpotPrice)

	down, err := Price(Curve{Type: model.CurveExponential, SpotPrice: 1_331_000, Delta: 1_000}, 3, true)
	require.NoError(t, err)
	// 1_331_000 + 1_210_000 + 1_100_000
	assert.Equal(t, uint64(3_641_000), down.TotalPrice)
	assert.Equal(t, uint64(1_000_000), down.NextSpotPrice)
}

func TestExponentialNeverPricesAtZero(t *testing.T) {
	c := Curve{Type: model.CurveExponential, SpotPrice: 3, Delta: 10_000}

	// 3 then 1 leaves the spot at 0
	_, err := Price(c, 2, true)
	require.ErrorIs(t, err, ammerr.ErrNumericOverflow)

	q, err := Price(c, 1, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), q.TotalPrice)
	assert.Equal(t, uint64(1), q.NextSpotPrice)

	_, err = Price(Curve{Type: model.CurveExponential, SpotPrice: 1, Delta: 5_000}, 3, true)
	require.ErrorIs(t, err, ammerr.ErrNumericOverflow)
	_, err = Price(Curve{Type: model.CurveExponential, SpotPrice: 1, Delta: 5_000}, 1, true)
	require.ErrorIs(t, err, ammerr.ErrNumericOverflow)
}

func TestExponentialOverflow(t *testing.T) {
	_, err := Price(Curve{Type: model.CurveExponential, SpotPrice: math.MaxUint64 / 3, Delta: 10_000}, 2, false)
	require.ErrorIs(t, err, ammerr.ErrNumericOverflow)
}

func TestZeroQuantity(t *testing.T) {
	_, err := Price(Curve{Type: model.CurveLinear, SpotPrice: 1}, 0, false)
	require.ErrorIs(t, err, ammerr.ErrInvalidRequestedPrice)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Curve{Type: model.CurveLinear, SpotPrice: 1, Delta: math.MaxUint64}.Validate())
	require.ErrorIs(t, Curve{Type: model.CurveExponential, SpotPrice: 1, Delta: 10_001}.Validate(), ammerr.ErrInvalidCurveDelta)
	require.ErrorIs(t, Curve{Type: 9, SpotPrice: 1}.Validate(), ammerr.ErrInvalidCurveType)
	require.ErrorIs(t, Curve{Type: model.CurveLinear}.Validate(), ammerr.ErrInvalidSpotPrice)
}
