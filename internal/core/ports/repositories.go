package ports

import (
	"context"

	"github.com/quanb-duy/custom-ecommerce-website/internal/core/domain/entity"
)

// ProductRepository is the authoritative inventory ledger.
type ProductRepository interface {
	GetProduct(ctx context.Context, id int64) (*entity.Product, error)

	// SearchProductByName returns the best fuzzy match for a product name,
	// or entity.ErrNotFound. Used as a reconciliation fallback when a
	// payment-provider line carries no product id.
	SearchProductByName(ctx context.Context, name string) (*entity.Product, error)

	// DecrementStock performs a conditional "stock = stock - qty WHERE
	// stock >= qty" update and returns entity.ErrInsufficientStock when no
	// row was affected. Concurrent checkouts can never drive stock negative.
	DecrementStock(ctx context.Context, productID int64, quantity int) error

	// IncrementStock restores stock; used by pipeline compensation.
	IncrementStock(ctx context.Context, productID int64, quantity int) error
}

type CartRepository interface {
	ListItems(ctx context.Context, userID string) ([]entity.CartItem, error)
	GetItem(ctx context.Context, itemID int64) (*entity.CartItem, error)
	GetItemByProduct(ctx context.Context, userID string, productID int64) (*entity.CartItem, error)

	// UpsertItem inserts or replaces the (user, product) row with the given
	// quantity and returns the row id.
	UpsertItem(ctx context.Context, userID string, productID int64, quantity int) (int64, error)
	UpdateQuantity(ctx context.Context, itemID int64, quantity int) error
	DeleteItem(ctx context.Context, itemID int64) error
	Clear(ctx context.Context, userID string) error
}

type OrderRepository interface {
	// CreateOrder persists the order row and its items in a single
	// transaction and returns the generated order id.
	CreateOrder(ctx context.Context, order *entity.Order, items []entity.OrderItem) (int64, error)

	GetOrder(ctx context.Context, id int64) (*entity.Order, error)
	GetOrderItems(ctx context.Context, orderID int64) ([]entity.OrderItem, error)

	// FindByPaymentIntent returns the order already created for a payment
	// session, or entity.ErrNotFound. This is the verification idempotency
	// guard; a unique index backs it up against races.
	FindByPaymentIntent(ctx context.Context, paymentIntentID string) (*entity.Order, error)

	// SetTracking records the tracking number, status and raw carrier data.
	// The write is conditional on tracking_number being unset so the number
	// is assigned at most once.
	SetTracking(ctx context.Context, orderID int64, trackingNumber string, status entity.OrderStatus, carrierData string) error

	SetStatus(ctx context.Context, orderID int64, status entity.OrderStatus) error

	// AppendNote attaches an operator-visible diagnostic line to the order.
	AppendNote(ctx context.Context, orderID int64, note string) error
}

type AddressRepository interface {
	// DefaultAddress returns the user's default saved address, or
	// entity.ErrNotFound when none exists.
	DefaultAddress(ctx context.Context, userID string) (*entity.UserAddress, error)
}
