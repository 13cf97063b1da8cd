package market

import "errors"

// Failure classes shared by the risk classifier and the S1 engine. Both
// handle every one of them at their public boundary by logging and skipping
// the current cycle.
var (
	// ErrDataUnavailable: not enough candle history, or the band is unset.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrInvalidAccountState: non-positive equity or price.
	ErrInvalidAccountState = errors.New("invalid account state")

	// ErrOrderRejected: the order is below the instrument's minimums.
	ErrOrderRejected = errors.New("order rejected")

	// ErrAdapter: any failure from an exchange or ledger collaborator.
	ErrAdapter = errors.New("adapter failure")
)
