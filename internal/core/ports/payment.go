package ports

import "context"

// CheckoutSession is the provider-side session the customer is redirected to.
// Metadata is the side channel that carries user id, shipping method and the
// serialized shipping address across the redirect.
type CheckoutSession struct {
	ID            string
	URL           string
	PaymentStatus string // "paid" once the customer completed payment
	AmountTotal   int64  // minor units
	Currency      string
	Metadata      map[string]string
}

// SessionLine is one cart line converted for the provider. UnitAmount is in
// minor units (cents), rounded, never truncated.
type SessionLine struct {
	Name       string
	UnitAmount int64
	Quantity   int
	ProductID  int64 // embedded in the provider's product metadata
}

type CreateSessionInput struct {
	Lines      []SessionLine
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// SessionLineItem is a purchased line read back from the provider with the
// nested product expanded. ProductID is 0 when the provider's product record
// carries no usable metadata.
type SessionLineItem struct {
	Description string
	Quantity    int
	UnitAmount  int64
	ProductID   int64
	ProductName string
}

// PaymentGateway abstracts the hosted-checkout payment provider.
type PaymentGateway interface {
	CreateSession(ctx context.Context, in CreateSessionInput) (*CheckoutSession, error)
	GetSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
	ListLineItems(ctx context.Context, sessionID string) ([]SessionLineItem, error)
}
