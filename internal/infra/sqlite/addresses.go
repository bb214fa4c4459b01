package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/quanb-duy/custom-ecommerce-website/internal/core/domain/entity"
	"github.com/quanb-duy/custom-ecommerce-website/internal/core/ports"
)

var _ ports.AddressRepository = (*AddressRepo)(nil)

type AddressRepo struct {
	db *sql.DB
}

func (s *Store) Addresses() *AddressRepo {
	return &AddressRepo{db: s.db}
}

// DefaultAddress returns the user's default saved address, falling back to
// the most recent one when no row is flagged default.
func (r *AddressRepo) DefaultAddress(ctx context.Context, userID string) (*entity.UserAddress, error) {
	const q = `
		SELECT id, user_id, full_name, address_line1, address_line2, city, state, postal_code, country, phone, is_default
		FROM   user_addresses
		WHERE  user_id = ?
		ORDER  BY is_default DESC, id DESC
		LIMIT  1`

	var a entity.UserAddress
	var isDefault int
	err := r.db.QueryRowContext(ctx, q, userID).Scan(
		&a.ID, &a.UserID, &a.FullName, &a.Line1, &a.Line2, &a.City, &a.State, &a.PostalCode, &a.Country, &a.Phone, &isDefault,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: default address for %q: %w", userID, err)
	}
	a.IsDefault = isDefault != 0
	return &a, nil
}
