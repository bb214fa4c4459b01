package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusPaid       OrderStatus = "paid"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
	ShippingPacketa  ShippingMethod = "packeta"
)

// Cost returns the flat shipping fee for the method. Unknown methods fall
// back to the standard rate rather than shipping for free.
func (m ShippingMethod) Cost() decimal.Decimal {
	switch m {
	case ShippingExpress:
		return decimal.NewFromFloat(12.90)
	case ShippingPacketa:
		return decimal.NewFromFloat(4.90)
	default:
		return decimal.NewFromFloat(5.00)
	}
}

func (m ShippingMethod) Valid() bool {
	switch m {
	case ShippingStandard, ShippingExpress, ShippingPacketa:
		return true
	}
	return false
}

// ManualPaymentSentinel is the payment reference used by the cash-on-delivery
// flow. An order created with it stays pending and the reference itself is
// never persisted.
const ManualPaymentSentinel = "manual-payment-required"

// Order is created exactly once and never deleted. After creation only
// tracking_number, status, carrier_data and notes may change.
type Order struct {
	ID              int64
	UserID          string
	CreatedAt       time.Time
	Status          OrderStatus
	Total           decimal.Decimal
	ShippingMethod  ShippingMethod
	ShippingAddress ShippingAddress
	PaymentIntentID string
	TrackingNumber  string
	CarrierData     string // opaque carrier response, JSON
	Notes           string
}

// CashOnDelivery reports whether the order was placed without an upfront
// payment reference, i.e. the carrier must collect the total on delivery.
func (o *Order) CashOnDelivery() bool {
	return o.PaymentIntentID == "" && o.Status == StatusPending
}

// OrderItem snapshots the product name and price at purchase time; it is
// written atomically with its order and never mutated.
type OrderItem struct {
	ID           int64
	OrderID      int64
	ProductID    int64
	ProductName  string
	ProductPrice decimal.Decimal
	Quantity     int
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.ProductPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemsSubtotal sums the line totals of the given items.
func ItemsSubtotal(items []OrderItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}
