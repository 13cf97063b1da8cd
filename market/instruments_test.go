package market

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloorAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		precision int
		in        float64
		want      float64
	}{
		{"exact", 3, 0.1, 0.1},
		{"floors", 3, 0.12345, 0.123},
		{"never rounds up", 3, 0.0019999, 0.001},
		{"float noise", 2, 0.29, 0.29},
		{"unknown precision", PrecisionUnknown, 1.23456, 1.234},
		{"whole contracts only", 0, 12.3456, 12},
		{"whole contracts below one", 0, 0.9, 0},
		{"zero", 3, 0, 0},
		{"negative", 3, -1, 0},
		{"one decimal", 1, 12.98, 12.9},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := Instrument{AmountPrecision: tt.precision}
			assert.InDelta(t, tt.want, in.FloorAmount(tt.in), 1e-12)
		})
	}
}

func TestCheckOrder(t *testing.T) {
	t.Parallel()

	in := NewInstrument("BTC/USDT")

	// 0.0001 contracts at 50000 is below both the 0.001 size and 10 USDT floor;
	// the size check fires first.
	err := in.CheckOrder(0.0001, 50000)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOrderRejected))
	var le *OrderLimitError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "min_amount", le.Limit)

	// Large enough in size, too small in notional.
	err = in.CheckOrder(0.001, 5000)
	require.Error(t, err)
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "min_notional", le.Limit)
	assert.InDelta(t, 5.0, le.Value, 1e-9)

	assert.NoError(t, in.CheckOrder(0.001, 50000))
}

func TestWithDefaults(t *testing.T) {
	t.Parallel()

	in := Instrument{Symbol: "ETH/USDT", AmountPrecision: PrecisionUnknown, MinNotional: 5}.WithDefaults()
	assert.Equal(t, DefaultAmountPrecision, in.AmountPrecision)
	assert.Equal(t, DefaultMinAmount, in.MinAmount)
	assert.Equal(t, 5.0, in.MinNotional)
}

func TestWholeContractInstrument(t *testing.T) {
	t.Parallel()

	in := Instrument{Symbol: "DOGE/USDT", AmountPrecision: 0, MinAmount: 1}.WithDefaults()
	assert.Equal(t, 0, in.AmountPrecision)
	assert.Equal(t, 12.0, in.FloorAmount(12.3456))
	assert.NoError(t, in.CheckOrder(in.FloorAmount(12.3456), 1))
}

func TestFindPosition(t *testing.T) {
	t.Parallel()

	ps := []PositionSnapshot{
		{Symbol: "ETH/USDT", Side: PositionShort, Contracts: -2},
		{Symbol: "BTC/USDT", Side: PositionLong, Contracts: 0.5},
	}

	eth := FindPosition(ps, "ETH/USDT")
	assert.Equal(t, PositionShort, eth.Side)
	assert.Equal(t, 2.0, eth.Contracts)

	none := FindPosition(ps, "BNB/USDT")
	assert.True(t, none.Flat())
	assert.Equal(t, "BNB/USDT", none.Symbol)
}
