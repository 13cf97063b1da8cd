// Package risk classifies account exposure into a trading permission.
package risk

// State gates which trade directions the S1 engine may execute.
type State int

const (
	AllowAll State = iota
	AllowSellOnly
	AllowBuyOnly
)

func (s State) String() string {
	switch s {
	case AllowAll:
		return "ALLOW_ALL"
	case AllowSellOnly:
		return "ALLOW_SELL_ONLY"
	case AllowBuyOnly:
		return "ALLOW_BUY_ONLY"
	default:
		return "UNKNOWN"
	}
}

// AllowsBuy reports whether buys may execute in this state.
func (s State) AllowsBuy() bool { return s != AllowSellOnly }

// AllowsSell reports whether sells may execute in this state.
func (s State) AllowsSell() bool { return s != AllowBuyOnly }
