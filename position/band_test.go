package position

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/gridbot/market"
)

func TestComputeBandExcludesFormingCandle(t *testing.T) {
	t.Parallel()

	cs := dailyCandles(54)
	cs[0].High, cs[0].Low = 1000, 1 // outside the window

	b, err := ComputeBand(cs, 52)
	require.NoError(t, err)

	// window is cs[1:53]; cs[53] is still forming
	assert.Equal(t, 152.0, b.High)
	assert.Equal(t, 24.0, b.Low)
	assert.True(t, b.UpdatedAt.IsZero())
}

func TestComputeBandMinimumHistory(t *testing.T) {
	t.Parallel()

	b, err := ComputeBand(dailyCandles(53), 52)
	require.NoError(t, err)
	assert.Equal(t, 151.0, b.High)
	assert.Equal(t, 24.5, b.Low)

	_, err = ComputeBand(dailyCandles(52), 52)
	assert.True(t, errors.Is(err, market.ErrDataUnavailable))

	_, err = ComputeBand(nil, 52)
	assert.Error(t, err)

	_, err = ComputeBand(dailyCandles(10), 0)
	assert.Error(t, err)
}

func TestComputeBandSmallLookback(t *testing.T) {
	t.Parallel()

	cs := []market.Candle{
		{High: 10, Low: 5},
		{High: 12, Low: 7},
		{High: 11, Low: 3},
		{High: 99, Low: 1},
	}
	b, err := ComputeBand(cs, 2)
	require.NoError(t, err)
	assert.Equal(t, 12.0, b.High)
	assert.Equal(t, 3.0, b.Low)
}
