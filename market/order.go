package market

import "time"

// OrderType values accepted by CreateFuturesOrder.
const (
	OrderTypeMarket = "market"
	OrderTypeLimit  = "limit"
)

// Order is the exchange's acknowledgement of a submitted order.
type Order struct {
	ID           string
	Symbol       string
	Side         Side
	Type         string
	Amount       float64
	AveragePrice float64
	Filled       float64
	Status       string
	Timestamp    time.Time
}

// FillPrice returns the average fill price, falling back to ref when the
// exchange did not report one.
func (o Order) FillPrice(ref float64) float64 {
	if o.AveragePrice > 0 {
		return o.AveragePrice
	}
	return ref
}

// FilledAmount returns the filled quantity, falling back to requested when
// the exchange did not report one.
func (o Order) FilledAmount(requested float64) float64 {
	if o.Filled > 0 {
		return o.Filled
	}
	return requested
}
