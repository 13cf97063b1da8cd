package risk

import (
	"fmt"
	"strings"
)

// FailurePolicy chooses the state returned when a check cannot complete.
type FailurePolicy string

const (
	// FailOpen permits all trading when the risk inputs are unknown.
	FailOpen FailurePolicy = "open"
	// FailReduceOnly permits only sells when the risk inputs are unknown.
	FailReduceOnly FailurePolicy = "reduce_only"
)

// ParseFailurePolicy accepts "open", "reduce_only" or "" (open).
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", FailOpen:
		return FailOpen, nil
	case FailReduceOnly:
		return FailReduceOnly, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q", s)
	}
}

func (p FailurePolicy) state() State {
	if p == FailReduceOnly {
		return AllowSellOnly
	}
	return AllowAll
}

type Thresholds struct {
	MaxPositionRatio float64 // 0.8
	MinPositionRatio float64 // 0.1
	Leverage         float64 // 10
	QuoteAsset       string  // "USDT"

	FailurePolicy FailurePolicy
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxPositionRatio: 0.8,
		MinPositionRatio: 0.1,
		Leverage:         10,
		QuoteAsset:       "USDT",
		FailurePolicy:    FailOpen,
	}
}

func (t Thresholds) Validate() error {
	if t.MinPositionRatio < 0 {
		return fmt.Errorf("min_position_ratio must be >= 0, got %v", t.MinPositionRatio)
	}
	if t.MinPositionRatio >= t.MaxPositionRatio {
		return fmt.Errorf("min_position_ratio %v must be below max_position_ratio %v",
			t.MinPositionRatio, t.MaxPositionRatio)
	}
	if t.Leverage < 1 {
		return fmt.Errorf("leverage must be >= 1, got %v", t.Leverage)
	}
	if t.QuoteAsset == "" {
		return fmt.Errorf("quote asset is required")
	}
	if _, err := ParseFailurePolicy(string(t.FailurePolicy)); err != nil {
		return err
	}
	return nil
}
