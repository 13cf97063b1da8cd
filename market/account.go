package market

import "math"

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// PositionSide is the direction of an open futures position. A flat
// position has an empty side.
type PositionSide string

const (
	PositionLong  PositionSide = "long"
	PositionShort PositionSide = "short"
	PositionFlat  PositionSide = ""
)

// AccountSnapshot holds per-asset balances as reported by the exchange.
type AccountSnapshot struct {
	Free  map[string]float64
	Used  map[string]float64
	Total map[string]float64
}

func (a AccountSnapshot) FreeOf(asset string) float64  { return a.Free[asset] }
func (a AccountSnapshot) UsedOf(asset string) float64  { return a.Used[asset] }
func (a AccountSnapshot) TotalOf(asset string) float64 { return a.Total[asset] }

// PositionSnapshot is one symbol's futures position. Contracts is an
// unsigned magnitude; direction lives in Side.
type PositionSnapshot struct {
	Symbol        string
	Side          PositionSide
	Contracts     float64
	Notional      float64
	EntryPrice    float64
	UnrealizedPnL float64
	Percentage    float64
}

// Flat reports whether the snapshot carries no exposure.
func (p PositionSnapshot) Flat() bool {
	return p.Side == PositionFlat || p.Contracts == 0
}

// FindPosition returns the entry for symbol, or a flat snapshot when the
// exchange did not report one.
func FindPosition(positions []PositionSnapshot, symbol string) PositionSnapshot {
	for _, p := range positions {
		if p.Symbol == symbol {
			p.Contracts = math.Abs(p.Contracts)
			return p
		}
	}
	return PositionSnapshot{Symbol: symbol}
}
