package entity

import "errors"

// Sentinel errors for the checkout pipeline. Callers match with errors.Is;
// the HTTP layer maps each to a stable error code and status.
var (
	// ErrAuthRequired is returned when an unauthenticated caller attempts a
	// cart mutation or checkout.
	ErrAuthRequired = errors.New("authentication required")

	// ErrMissingUserContext is returned when a payment session carries no
	// user id in its metadata and the caller supplied no fallback.
	ErrMissingUserContext = errors.New("missing user context")

	// ErrNotFound covers missing records and, deliberately, orders owned by
	// someone else — a Forbidden would leak that the order exists.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRequest flags malformed or incomplete input.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrServiceUnavailable means a required provider credential is not
	// configured. The real cause is logged server-side only.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrPaymentProcessing wraps failures reported by the payment provider.
	ErrPaymentProcessing = errors.New("payment processing error")

	// ErrSessionNotPaid is returned when a session is verified before the
	// provider reports the payment as completed.
	ErrSessionNotPaid = errors.New("checkout session is not paid")

	// ErrInvalidShipping flags a dispatch precondition failure. The carrier
	// is never called with guessed data.
	ErrInvalidShipping = errors.New("invalid shipping configuration")

	// ErrPickupPointRequired is the dedicated condition for a packeta
	// shipment without a selected pickup point.
	ErrPickupPointRequired = errors.New("pickup point required")

	// ErrInsufficientStock is returned by the conditional stock decrement
	// when fewer units remain than requested.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrOrderCreation aborts the whole flow; nothing before the order row
	// is durably written may succeed partially.
	ErrOrderCreation = errors.New("order creation failed")
)
