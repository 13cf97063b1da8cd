package position

import "github.com/rustyeddy/gridbot/market"

// Action is what one evaluation did.
type Action string

const (
	ActionNone     Action = "none"     // no breach
	ActionSkipped  Action = "skipped"  // band unset, bad data or adapter failure
	ActionBlocked  Action = "blocked"  // risk state forbids the direction
	ActionRejected Action = "rejected" // below the instrument minimums
	ActionFailed   Action = "failed"   // order submission failed
	ActionExecuted Action = "executed"
)

// Breach reasons carried on an Intent.
const (
	ReasonUpperBreach = "s1_upper_breach"
	ReasonLowerBreach = "s1_lower_breach"
)

// Intent is a proposed adjustment. At most one exists per evaluation.
type Intent struct {
	Side   market.Side
	Amount float64
	Reason string
}

// Decision reports the outcome of Evaluate.
type Decision struct {
	Action Action
	Intent *Intent

	Price  float64
	Ratio  float64
	Target float64 // target contracts for the breached side

	Order *market.Order
	Err   error
}

func (d Decision) Executed() bool { return d.Action == ActionExecuted }
