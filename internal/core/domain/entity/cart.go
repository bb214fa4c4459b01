package entity

import "github.com/shopspring/decimal"

// CartItem is the persisted per-user cart row. (user_id, product_id) is
// unique; quantity is always >= 1 — a zero quantity means the row is deleted.
type CartItem struct {
	ID        int64
	UserID    string
	ProductID int64
	Quantity  int
}

// CartLine is a cart item joined with its product at read time.
type CartLine struct {
	ItemID      int64
	ProductID   int64
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	Stock       int
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartView is the derived read model of a cart. Totals are computed from the
// lines on every read, never stored, so they cannot drift from the rows.
type CartView struct {
	Lines []CartLine
}

func (v *CartView) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range v.Lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

func (v *CartView) ItemCount() int {
	n := 0
	for _, l := range v.Lines {
		n += l.Quantity
	}
	return n
}

func (v *CartView) Empty() bool {
	return len(v.Lines) == 0
}
