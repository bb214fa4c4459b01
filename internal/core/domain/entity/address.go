package entity

import (
	"fmt"
	"strings"
)

type AddressType string

const (
	AddressStandard AddressType = "standard"
	AddressPacketa  AddressType = "packeta"
)

// ShippingAddress is a tagged union: Type selects exactly one of the variant
// pointers. Modelling the variants as separate structs (instead of one bag of
// optional fields) keeps exhaustiveness checkable at the switch sites.
type ShippingAddress struct {
	Type     AddressType      `json:"type"`
	FullName string           `json:"full_name"`
	Phone    string           `json:"phone"`
	Email    string           `json:"email,omitempty"`
	Standard *StandardAddress `json:"standard,omitempty"`
	Packeta  *PacketaAddress  `json:"packeta,omitempty"`
}

type StandardAddress struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// PacketaAddress references a parcel-locker pickup point plus the billing
// address required for the invoice.
type PacketaAddress struct {
	PickupPointID   string          `json:"pickup_point_id"`
	PickupPointName string          `json:"pickup_point_name,omitempty"`
	Billing         StandardAddress `json:"billing"`
}

// PickupPoint is read-only reference data from the carrier's directory.
type PickupPoint struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Zip     string `json:"zip"`
	City    string `json:"city"`
}

// UserAddress is a saved address used to prefill standard shipping addresses.
type UserAddress struct {
	ID         int64
	UserID     string
	FullName   string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
	Phone      string
	IsDefault  bool
}

// AsShipping converts a saved address into a standard shipping address.
func (u *UserAddress) AsShipping() ShippingAddress {
	return ShippingAddress{
		Type:     AddressStandard,
		FullName: u.FullName,
		Phone:    u.Phone,
		Standard: &StandardAddress{
			Line1:      u.Line1,
			Line2:      u.Line2,
			City:       u.City,
			State:      u.State,
			PostalCode: u.PostalCode,
			Country:    u.Country,
		},
	}
}

func (a *ShippingAddress) IsZero() bool {
	return a == nil || (a.Type == "" && a.Standard == nil && a.Packeta == nil)
}

// SplitName splits FullName into first and last name. The carrier requires
// both parts, so a single-word name is an error, not a guess.
func (a *ShippingAddress) SplitName() (first, last string, err error) {
	parts := strings.Fields(a.FullName)
	if len(parts) < 2 {
		return "", "", fmt.Errorf("%w: full name %q must contain first and last name", ErrInvalidShipping, a.FullName)
	}
	return parts[0], strings.Join(parts[1:], " "), nil
}

// Validate checks the variant selected by Type. It is called before checkout
// session creation and again before carrier dispatch.
func (a *ShippingAddress) Validate() error {
	if a.IsZero() {
		return fmt.Errorf("%w: shipping address is missing", ErrInvalidShipping)
	}
	switch a.Type {
	case AddressStandard:
		if a.Standard == nil {
			return fmt.Errorf("%w: standard address fields are missing", ErrInvalidShipping)
		}
		if a.Standard.Line1 == "" || a.Standard.City == "" || a.Standard.PostalCode == "" {
			return fmt.Errorf("%w: address line, city and postal code are required", ErrInvalidShipping)
		}
	case AddressPacketa:
		if a.Packeta == nil || a.Packeta.PickupPointID == "" {
			return ErrPickupPointRequired
		}
	default:
		return fmt.Errorf("%w: unknown address type %q", ErrInvalidShipping, a.Type)
	}
	return nil
}
