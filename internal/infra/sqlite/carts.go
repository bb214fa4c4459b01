package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/quanb-duy/custom-ecommerce-website/internal/core/domain/entity"
	"github.com/quanb-duy/custom-ecommerce-website/internal/core/ports"
)

var _ ports.CartRepository = (*CartRepo)(nil)

type CartRepo struct {
	db *sql.DB
}

func (s *Store) Carts() *CartRepo {
	return &CartRepo{db: s.db}
}

func (r *CartRepo) ListItems(ctx context.Context, userID string) ([]entity.CartItem, error) {
	const q = `SELECT id, user_id, product_id, quantity FROM cart_items WHERE user_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list cart items: %w", err)
	}
	defer rows.Close()

	var items []entity.CartItem
	for rows.Next() {
		var it entity.CartItem
		if err := rows.Scan(&it.ID, &it.UserID, &it.ProductID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("sqlite: scan cart item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *CartRepo) GetItem(ctx context.Context, itemID int64) (*entity.CartItem, error) {
	const q = `SELECT id, user_id, product_id, quantity FROM cart_items WHERE id = ?`
	var it entity.CartItem
	err := r.db.QueryRowContext(ctx, q, itemID).Scan(&it.ID, &it.UserID, &it.ProductID, &it.Quantity)
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get cart item %d: %w", itemID, err)
	}
	return &it, nil
}

func (r *CartRepo) GetItemByProduct(ctx context.Context, userID string, productID int64) (*entity.CartItem, error) {
	const q = `SELECT id, user_id, product_id, quantity FROM cart_items WHERE user_id = ? AND product_id = ?`
	var it entity.CartItem
	err := r.db.QueryRowContext(ctx, q, userID, productID).Scan(&it.ID, &it.UserID, &it.ProductID, &it.Quantity)
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get cart item for product %d: %w", productID, err)
	}
	return &it, nil
}

func (r *CartRepo) UpsertItem(ctx context.Context, userID string, productID int64, quantity int) (int64, error) {
	const q = `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = excluded.quantity`
	if _, err := r.db.ExecContext(ctx, q, userID, productID, quantity); err != nil {
		return 0, fmt.Errorf("sqlite: upsert cart item: %w", err)
	}

	// LastInsertId is unreliable on conflict-updates; read the row id back.
	const sel = `SELECT id FROM cart_items WHERE user_id = ? AND product_id = ?`
	var id int64
	if err := r.db.QueryRowContext(ctx, sel, userID, productID).Scan(&id); err != nil {
		return 0, fmt.Errorf("sqlite: read back cart item id: %w", err)
	}
	return id, nil
}

func (r *CartRepo) UpdateQuantity(ctx context.Context, itemID int64, quantity int) error {
	const q = `UPDATE cart_items SET quantity = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, quantity, itemID)
	if err != nil {
		return fmt.Errorf("sqlite: update cart item %d: %w", itemID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *CartRepo) DeleteItem(ctx context.Context, itemID int64) error {
	const q = `DELETE FROM cart_items WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, itemID); err != nil {
		return fmt.Errorf("sqlite: delete cart item %d: %w", itemID, err)
	}
	return nil
}

func (r *CartRepo) Clear(ctx context.Context, userID string) error {
	const q = `DELETE FROM cart_items WHERE user_id = ?`
	if _, err := r.db.ExecContext(ctx, q, userID); err != nil {
		return fmt.Errorf("sqlite: clear cart: %w", err)
	}
	return nil
}
