package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/quanb-duy/custom-ecommerce-website/internal/core/domain/entity"
	"github.com/quanb-duy/custom-ecommerce-website/internal/core/ports"
)

var _ ports.ProductRepository = (*ProductRepo)(nil)

type ProductRepo struct {
	db *sql.DB
}

func (s *Store) Products() *ProductRepo {
	return &ProductRepo{db: s.db}
}

func (r *ProductRepo) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	const q = `SELECT id, name, price, stock, category, description FROM products WHERE id = ?`
	return r.scanProduct(r.db.QueryRowContext(ctx, q, id))
}

// SearchProductByName finds the closest catalog match for a free-text name.
// Exact match wins; otherwise the shortest name containing the query is
// taken as the least ambiguous candidate.
func (r *ProductRepo) SearchProductByName(ctx context.Context, name string) (*entity.Product, error) {
	const q = `
		SELECT id, name, price, stock, category, description
		FROM   products
		WHERE  name = ?1 COLLATE NOCASE
		   OR  name LIKE '%' || ?1 || '%' COLLATE NOCASE
		ORDER  BY (name = ?1 COLLATE NOCASE) DESC, length(name) ASC
		LIMIT  1`
	return r.scanProduct(r.db.QueryRowContext(ctx, q, name))
}

// DecrementStock is the conditional update that makes oversubscription
// impossible: zero affected rows means not enough stock remained.
func (r *ProductRepo) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	const q = `UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`
	res, err := r.db.ExecContext(ctx, q, quantity, productID, quantity)
	if err != nil {
		return fmt.Errorf("sqlite: decrement stock for product %d: %w", productID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: decrement stock for product %d: %w", productID, err)
	}
	if n == 0 {
		return fmt.Errorf("product %d: %w", productID, entity.ErrInsufficientStock)
	}
	return nil
}

func (r *ProductRepo) IncrementStock(ctx context.Context, productID int64, quantity int) error {
	const q = `UPDATE products SET stock = stock + ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, quantity, productID); err != nil {
		return fmt.Errorf("sqlite: increment stock for product %d: %w", productID, err)
	}
	return nil
}

func (r *ProductRepo) scanProduct(row *sql.Row) (*entity.Product, error) {
	var p entity.Product
	var price string
	err := row.Scan(&p.ID, &p.Name, &price, &p.Stock, &p.Category, &p.Description)
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: scan product: %w", err)
	}
	p.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("sqlite: product %d has malformed price %q: %w", p.ID, price, err)
	}
	return &p, nil
}
