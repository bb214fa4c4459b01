package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/quanb-duy/custom-ecommerce-website/internal/core/domain/entity"
	"github.com/quanb-duy/custom-ecommerce-website/internal/core/ports"
)

var _ ports.CartService = (*CartService)(nil)

// CartService is the cart aggregate. Every mutation re-reads authoritative
// stock; requested quantities above stock are clamped, not rejected.
type CartService struct {
	carts    ports.CartRepository
	products ports.ProductRepository
}

func NewCartService(carts ports.CartRepository, products ports.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

func (s *CartService) AddItem(ctx context.Context, userID string, productID int64, quantity int) (*entity.CartView, bool, error) {
	if userID == "" {
		return nil, false, entity.ErrAuthRequired
	}
	if quantity < 1 {
		return nil, false, fmt.Errorf("%w: quantity must be at least 1", entity.ErrInvalidRequest)
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, false, fmt.Errorf("add item: %w", err)
	}

	desired := quantity
	var existingID int64
	if existing, err := s.carts.GetItemByProduct(ctx, userID, productID); err == nil {
		desired += existing.Quantity
		existingID = existing.ID
	} else if !errors.Is(err, entity.ErrNotFound) {
		return nil, false, fmt.Errorf("add item: %w", err)
	}

	desired, clamped := clampToStock(desired, product.Stock)
	if desired == 0 {
		// Out of stock entirely: a previously carted quantity is removed so
		// the stored row never exceeds current stock. Not an error; the
		// caller gets the stock-limit condition.
		if existingID != 0 {
			if err := s.carts.DeleteItem(ctx, existingID); err != nil {
				return nil, false, fmt.Errorf("add item: %w", err)
			}
		}
		view, err := s.View(ctx, userID)
		return view, true, err
	}

	if _, err := s.carts.UpsertItem(ctx, userID, productID, desired); err != nil {
		return nil, false, fmt.Errorf("add item: %w", err)
	}
	if clamped {
		slog.InfoContext(ctx, "cart quantity clamped to stock",
			"user_id", userID, "product_id", productID, "stock", product.Stock)
	}

	view, err := s.View(ctx, userID)
	return view, clamped, err
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID string, itemID int64, quantity int) (*entity.CartView, bool, error) {
	if userID == "" {
		return nil, false, entity.ErrAuthRequired
	}

	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, false, err
	}

	// A resulting quantity of zero or less means remove.
	if quantity <= 0 {
		view, err := s.RemoveItem(ctx, userID, itemID)
		return view, false, err
	}

	product, err := s.products.GetProduct(ctx, item.ProductID)
	if err != nil {
		return nil, false, fmt.Errorf("update quantity: %w", err)
	}

	desired, clamped := clampToStock(quantity, product.Stock)
	if desired == 0 {
		view, err := s.RemoveItem(ctx, userID, itemID)
		return view, true, err
	}

	if err := s.carts.UpdateQuantity(ctx, itemID, desired); err != nil {
		return nil, false, fmt.Errorf("update quantity: %w", err)
	}

	view, err := s.View(ctx, userID)
	return view, clamped, err
}

func (s *CartService) RemoveItem(ctx context.Context, userID string, itemID int64) (*entity.CartView, error) {
	if userID == "" {
		return nil, entity.ErrAuthRequired
	}
	if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
		return nil, err
	}
	if err := s.carts.DeleteItem(ctx, itemID); err != nil {
		return nil, fmt.Errorf("remove item: %w", err)
	}
	return s.View(ctx, userID)
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return entity.ErrAuthRequired
	}
	return s.carts.Clear(ctx, userID)
}

// View joins cart rows with current product data and derives totals.
func (s *CartService) View(ctx context.Context, userID string) (*entity.CartView, error) {
	if userID == "" {
		return nil, entity.ErrAuthRequired
	}

	items, err := s.carts.ListItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("cart view: %w", err)
	}

	view := &entity.CartView{}
	for _, it := range items {
		product, err := s.products.GetProduct(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				// Product removed from the catalog after it was carted;
				// drop the line from the view rather than failing the read.
				slog.WarnContext(ctx, "cart references missing product",
					"user_id", userID, "product_id", it.ProductID)
				continue
			}
			return nil, fmt.Errorf("cart view: %w", err)
		}
		view.Lines = append(view.Lines, entity.CartLine{
			ItemID:      it.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    it.Quantity,
			Stock:       product.Stock,
		})
	}
	return view, nil
}

// ownedItem loads a cart item and hides other users' items behind NotFound.
func (s *CartService) ownedItem(ctx context.Context, userID string, itemID int64) (*entity.CartItem, error) {
	item, err := s.carts.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		return nil, entity.ErrNotFound
	}
	return item, nil
}

func clampToStock(desired, stock int) (int, bool) {
	if stock < 0 {
		stock = 0
	}
	if desired > stock {
		return stock, true
	}
	return desired, false
}
