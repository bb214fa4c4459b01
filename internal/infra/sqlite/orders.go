package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/quanb-duy/custom-ecommerce-website/internal/core/domain/entity"
	"github.com/quanb-duy/custom-ecommerce-website/internal/core/ports"
)

var _ ports.OrderRepository = (*OrderRepo)(nil)

type OrderRepo struct {
	db *sql.DB
}

func (s *Store) Orders() *OrderRepo {
	return &OrderRepo{db: s.db}
}

// CreateOrder writes the order row and all item rows in one transaction;
// either everything is durable or nothing is.
func (r *OrderRepo) CreateOrder(ctx context.Context, order *entity.Order, items []entity.OrderItem) (int64, error) {
	addr, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return 0, fmt.Errorf("sqlite: marshal shipping address: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin order tx: %w", err)
	}
	defer tx.Rollback()

	const insOrder = `
		INSERT INTO orders
			(user_id, created_at, status, total, shipping_method, shipping_address,
			 payment_intent_id, tracking_number, carrier_data, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULL, NULL, ?)`

	res, err := tx.ExecContext(ctx, insOrder,
		order.UserID,
		formatTime(order.CreatedAt),
		string(order.Status),
		order.Total.String(),
		string(order.ShippingMethod),
		string(addr),
		nullable(order.PaymentIntentID),
		order.Notes,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: insert order: %w", err)
	}

	orderID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlite: order id: %w", err)
	}

	const insItem = `
		INSERT INTO order_items (order_id, product_id, product_name, product_price, quantity)
		VALUES (?, ?, ?, ?, ?)`

	for _, it := range items {
		if _, err := tx.ExecContext(ctx, insItem,
			orderID, it.ProductID, it.ProductName, it.ProductPrice.String(), it.Quantity,
		); err != nil {
			return 0, fmt.Errorf("sqlite: insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit order tx: %w", err)
	}
	return orderID, nil
}

const orderColumns = `id, user_id, created_at, status, total, shipping_method, shipping_address,
	COALESCE(payment_intent_id, ''), COALESCE(tracking_number, ''), COALESCE(carrier_data, ''), notes`

func (r *OrderRepo) GetOrder(ctx context.Context, id int64) (*entity.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	return r.scanOrder(r.db.QueryRowContext(ctx, q, id))
}

func (r *OrderRepo) FindByPaymentIntent(ctx context.Context, paymentIntentID string) (*entity.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE payment_intent_id = ?`
	return r.scanOrder(r.db.QueryRowContext(ctx, q, paymentIntentID))
}

func (r *OrderRepo) GetOrderItems(ctx context.Context, orderID int64) ([]entity.OrderItem, error) {
	const q = `
		SELECT id, order_id, product_id, product_name, product_price, quantity
		FROM   order_items
		WHERE  order_id = ?
		ORDER  BY id`
	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list order items: %w", err)
	}
	defer rows.Close()

	var items []entity.OrderItem
	for rows.Next() {
		var it entity.OrderItem
		var price string
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &price, &it.Quantity); err != nil {
			return nil, fmt.Errorf("sqlite: scan order item: %w", err)
		}
		it.ProductPrice, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("sqlite: order item %d has malformed price %q: %w", it.ID, price, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// SetTracking assigns the tracking number at most once: the WHERE clause
// refuses the write if a number is already present.
func (r *OrderRepo) SetTracking(ctx context.Context, orderID int64, trackingNumber string, status entity.OrderStatus, carrierData string) error {
	const q = `
		UPDATE orders
		SET    tracking_number = ?, status = ?, carrier_data = ?
		WHERE  id = ? AND (tracking_number IS NULL OR tracking_number = '')`
	res, err := r.db.ExecContext(ctx, q, trackingNumber, string(status), nullable(carrierData), orderID)
	if err != nil {
		return fmt.Errorf("sqlite: set tracking for order %d: %w", orderID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("sqlite: order %d already has a tracking number or does not exist: %w", orderID, entity.ErrNotFound)
	}
	return nil
}

func (r *OrderRepo) SetStatus(ctx context.Context, orderID int64, status entity.OrderStatus) error {
	const q = `UPDATE orders SET status = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, string(status), orderID)
	if err != nil {
		return fmt.Errorf("sqlite: set status for order %d: %w", orderID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *OrderRepo) AppendNote(ctx context.Context, orderID int64, note string) error {
	const q = `
		UPDATE orders
		SET    notes = CASE WHEN notes = '' THEN ? ELSE notes || char(10) || ? END
		WHERE  id = ?`
	res, err := r.db.ExecContext(ctx, q, note, note, orderID)
	if err != nil {
		return fmt.Errorf("sqlite: append note to order %d: %w", orderID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *OrderRepo) scanOrder(row *sql.Row) (*entity.Order, error) {
	var o entity.Order
	var createdAt, total, addr string
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&createdAt,
		&o.Status,
		&total,
		&o.ShippingMethod,
		&addr,
		&o.PaymentIntentID,
		&o.TrackingNumber,
		&o.CarrierData,
		&o.Notes,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: scan order: %w", err)
	}

	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("sqlite: order %d has malformed total %q: %w", o.ID, total, err)
	}
	if err := json.Unmarshal([]byte(addr), &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("sqlite: order %d has malformed shipping address: %w", o.ID, err)
	}
	return &o, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
