package ports

import (
	"context"

	"github.com/quanb-duy/custom-ecommerce-website/internal/core/domain/entity"
)

// CartService is the cart aggregate. The bool result reports whether the
// requested quantity was clamped to the available stock — a condition, not a
// failure: the mutation still succeeded at the clamped value.
type CartService interface {
	AddItem(ctx context.Context, userID string, productID int64, quantity int) (*entity.CartView, bool, error)
	UpdateQuantity(ctx context.Context, userID string, itemID int64, quantity int) (*entity.CartView, bool, error)
	RemoveItem(ctx context.Context, userID string, itemID int64) (*entity.CartView, error)
	Clear(ctx context.Context, userID string) error
	View(ctx context.Context, userID string) (*entity.CartView, error)
}

// CheckoutInput is the client's shipping selection for session creation.
type CheckoutInput struct {
	ShippingMethod  entity.ShippingMethod
	ShippingAddress entity.ShippingAddress
	SuccessURL      string
	CancelURL       string
}

type CheckoutRedirect struct {
	SessionID   string
	RedirectURL string
}

// CheckoutService converts a cart snapshot plus shipping selection into a
// payment-provider session the customer is redirected to.
type CheckoutService interface {
	CreateSession(ctx context.Context, userID, userEmail string, in CheckoutInput) (*CheckoutRedirect, error)
}

// PaymentVerifier confirms a completed session with the provider and turns
// it into an order exactly once. The bool result is true when this call
// created the order, false when it already existed.
type PaymentVerifier interface {
	VerifySession(ctx context.Context, sessionID, fallbackUserID string) (*entity.Order, bool, error)
}

// OrderDraft is the order intent reconstructed from a verified session or
// submitted directly by the cash-on-delivery flow.
type OrderDraft struct {
	ShippingMethod  entity.ShippingMethod
	ShippingAddress entity.ShippingAddress
}

// OrderWriter atomically persists an order with its items, decrements stock
// and clears the cart. paymentRef semantics: the manual/cash sentinel yields
// a pending order with no stored reference; any other non-empty reference
// yields a paid order; empty yields pending.
type OrderWriter interface {
	CreateOrder(ctx context.Context, userID string, draft OrderDraft, items []entity.OrderItem, paymentRef string) (*entity.Order, error)
}

type DispatchResult struct {
	TrackingNumber string
	PacketID       string
}

// CarrierDispatcher submits a confirmed order to the carrier and records the
// resulting tracking reference. Failures annotate the order but never revert
// its status.
type CarrierDispatcher interface {
	Dispatch(ctx context.Context, orderID int64) (*DispatchResult, error)
}

type TrackingInfo struct {
	TrackingNumber string
	Status         entity.OrderStatus
}

// TrackingPoller returns an order's tracking number, fetching or
// synthesizing one exactly once if it is absent.
type TrackingPoller interface {
	GetTracking(ctx context.Context, orderID int64, requestingUserID string) (*TrackingInfo, error)
}

// PickupPointDirectory serves the carrier's pickup point list, cached.
type PickupPointDirectory interface {
	List(ctx context.Context) ([]entity.PickupPoint, error)
}
