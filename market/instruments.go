package market

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Defaults applied when the exchange does not publish instrument metadata.
const (
	DefaultAmountPrecision = 3
	DefaultMinAmount       = 0.001
	DefaultMinNotional     = 10.0

	// PrecisionUnknown marks an instrument whose amount precision was not
	// published. Zero is a real precision: whole contracts only.
	PrecisionUnknown = -1
)

// Instrument carries the trading limits of one futures symbol.
type Instrument struct {
	Symbol          string
	BaseAsset       string
	QuoteAsset      string
	AmountPrecision int     // decimal places allowed in an order amount; PrecisionUnknown if not published
	MinAmount       float64 // minimum contracts per order
	MinNotional     float64 // minimum amount*price per order, in quote units
}

// NewInstrument returns an Instrument with the default limits.
func NewInstrument(symbol string) Instrument {
	return Instrument{
		Symbol:          symbol,
		AmountPrecision: DefaultAmountPrecision,
		MinAmount:       DefaultMinAmount,
		MinNotional:     DefaultMinNotional,
	}
}

// WithDefaults fills unknown precision and zero-valued minimums with the
// package defaults.
func (in Instrument) WithDefaults() Instrument {
	if in.AmountPrecision < 0 {
		in.AmountPrecision = DefaultAmountPrecision
	}
	if in.MinAmount <= 0 {
		in.MinAmount = DefaultMinAmount
	}
	if in.MinNotional <= 0 {
		in.MinNotional = DefaultMinNotional
	}
	return in
}

// FloorAmount rounds x down to the instrument's amount precision.
// Decimal arithmetic keeps 0.1 from turning into 0.099.
func (in Instrument) FloorAmount(x float64) float64 {
	if x <= 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	places := in.AmountPrecision
	if places < 0 {
		places = DefaultAmountPrecision
	}
	f, _ := decimal.NewFromFloat(x).Truncate(int32(places)).Float64()
	return f
}

// CheckOrder reports whether amount at price clears both minimums.
func (in Instrument) CheckOrder(amount, price float64) error {
	in = in.WithDefaults()
	if amount < in.MinAmount {
		return &OrderLimitError{Limit: "min_amount", Value: amount, Min: in.MinAmount}
	}
	if notional := amount * price; notional < in.MinNotional {
		return &OrderLimitError{Limit: "min_notional", Value: notional, Min: in.MinNotional}
	}
	return nil
}

// OrderLimitError describes which exchange minimum an order failed.
type OrderLimitError struct {
	Limit string
	Value float64
	Min   float64
}

func (e *OrderLimitError) Error() string {
	return fmt.Sprintf("%s not met: %.8f < %.8f", e.Limit, e.Value, e.Min)
}

func (e *OrderLimitError) Unwrap() error { return ErrOrderRejected }
