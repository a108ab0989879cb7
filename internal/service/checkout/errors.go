package checkout

import "errors"

var (
	// ErrNotIdle is returned when an operation needs status idle, e.g. a second
	// Advance while a payment is processing.
	ErrNotIdle = errors.New("checkout is not idle")

	// ErrNotTerminal is returned by recovery actions outside failed/expired.
	ErrNotTerminal = errors.New("checkout has no failed or expired payment")

	ErrInvalidMethod = errors.New("invalid payment method")
	ErrEmptyCart     = errors.New("cart is empty")
)
