package entity

import "github.com/shopspring/decimal"

// PlaceholderProductID marks an order item whose payment-provider line could
// not be reconciled to a catalog product. Orders carrying it are published to
// the review queue for manual reconciliation.
const PlaceholderProductID int64 = -1

type Product struct {
	ID          int64
	Name        string
	Price       decimal.Decimal
	Stock       int
	Category    string
	Description string
}

// InStock reports whether the requested quantity can be fulfilled.
func (p *Product) InStock(quantity int) bool {
	return quantity <= p.Stock
}
