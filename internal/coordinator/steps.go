package coordinator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quanb-duy/custom-ecommerce-website/internal/core/domain/entity"
	"github.com/quanb-duy/custom-ecommerce-website/internal/core/ports"
)

// --- ReserveStockStep ---

// ReserveStockStep decrements inventory for every order item with a
// conditional update. Items already decremented are tracked so compensation
// restores exactly what was taken when a later item (or step) fails.
type ReserveStockStep struct {
	products ports.ProductRepository
	items    []entity.OrderItem
	reserved []entity.OrderItem
}

func NewReserveStockStep(products ports.ProductRepository, items []entity.OrderItem) *ReserveStockStep {
	return &ReserveStockStep{
		products: products,
		items:    items,
	}
}

func (s *ReserveStockStep) Name() string { return "Reserve_Stock_Step" }

func (s *ReserveStockStep) Execute(ctx context.Context) error {
	for _, it := range s.items {
		// Placeholder items reference no real product; there is no stock
		// row to decrement for them.
		if it.ProductID == entity.PlaceholderProductID {
			continue
		}
		if err := s.products.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			return fmt.Errorf("reserve %d x product %d: %w", it.Quantity, it.ProductID, err)
		}
		s.reserved = append(s.reserved, it)
	}
	return nil
}

func (s *ReserveStockStep) Compensate(ctx context.Context) error {
	var firstErr error
	for _, it := range s.reserved {
		if err := s.products.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("restore %d x product %d: %w", it.Quantity, it.ProductID, err)
		}
	}
	return firstErr
}

// --- PersistOrderStep ---

// PersistOrderStep writes the order and its items in a single transaction.
// Orders are an audit trail and never deleted, so compensation marks the
// order cancelled and annotates it instead.
type PersistOrderStep struct {
	orders ports.OrderRepository
	order  *entity.Order
	items  []entity.OrderItem
}

func NewPersistOrderStep(orders ports.OrderRepository, order *entity.Order, items []entity.OrderItem) *PersistOrderStep {
	return &PersistOrderStep{
		orders: orders,
		order:  order,
		items:  items,
	}
}

func (s *PersistOrderStep) Name() string { return "Persist_Order_Step" }

func (s *PersistOrderStep) Execute(ctx context.Context) error {
	id, err := s.orders.CreateOrder(ctx, s.order, s.items)
	if err != nil {
		return fmt.Errorf("persist order: %w", err)
	}
	s.order.ID = id
	return nil
}

func (s *PersistOrderStep) Compensate(ctx context.Context) error {
	if s.order.ID == 0 {
		return nil
	}
	if err := s.orders.SetStatus(ctx, s.order.ID, entity.StatusCancelled); err != nil {
		return fmt.Errorf("cancel order %d: %w", s.order.ID, err)
	}
	return s.orders.AppendNote(ctx, s.order.ID, "order cancelled by pipeline rollback")
}

// --- ClearCartStep ---

// ClearCartStep empties the user's cart after the order is durably written.
// A leftover cart is cosmetic, so a failure here is logged but never fails
// (or unwinds) the already-paid order.
type ClearCartStep struct {
	carts  ports.CartRepository
	userID string
}

func NewClearCartStep(carts ports.CartRepository, userID string) *ClearCartStep {
	return &ClearCartStep{carts: carts, userID: userID}
}

func (s *ClearCartStep) Name() string { return "Clear_Cart_Step" }

func (s *ClearCartStep) Execute(ctx context.Context) error {
	if err := s.carts.Clear(ctx, s.userID); err != nil {
		slog.ErrorContext(ctx, "failed to clear cart after order creation",
			"user_id", s.userID, "error", err)
	}
	return nil
}

func (s *ClearCartStep) Compensate(ctx context.Context) error {
	// The cleared cart cannot be reconstructed; last step, nothing to undo.
	return nil
}
