package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/quanb-duy/custom-ecommerce-website/internal/core/domain/entity"
	"github.com/quanb-duy/custom-ecommerce-website/internal/core/ports"
)

// Metadata keys attached to every checkout session. The Payment Verifier
// reconstructs the full order intent from these after the redirect, with no
// extra database round trip.
const (
	metaUserID          = "user_id"
	metaUserEmail       = "user_email"
	metaShippingMethod  = "shipping_method"
	metaShippingAddress = "shipping_address"
)

var _ ports.CheckoutService = (*CheckoutService)(nil)

// CheckoutService converts a cart snapshot plus shipping selection into a
// payment-provider checkout session.
type CheckoutService struct {
	cart      ports.CartService
	gateway   ports.PaymentGateway // nil when provider credentials are absent
	addresses ports.AddressRepository
}

func NewCheckoutService(cart ports.CartService, gateway ports.PaymentGateway, addresses ports.AddressRepository) *CheckoutService {
	return &CheckoutService{cart: cart, gateway: gateway, addresses: addresses}
}

func (s *CheckoutService) CreateSession(ctx context.Context, userID, userEmail string, in ports.CheckoutInput) (*ports.CheckoutRedirect, error) {
	if userID == "" {
		return nil, entity.ErrAuthRequired
	}
	if s.gateway == nil {
		slog.ErrorContext(ctx, "checkout session requested but payment provider is not configured")
		return nil, entity.ErrServiceUnavailable
	}
	if in.SuccessURL == "" || in.CancelURL == "" {
		return nil, fmt.Errorf("%w: success and cancel URLs are required", entity.ErrInvalidRequest)
	}
	if !in.ShippingMethod.Valid() {
		return nil, fmt.Errorf("%w: unknown shipping method %q", entity.ErrInvalidRequest, in.ShippingMethod)
	}

	// An empty address falls back to the user's default saved address before
	// validation; only a packeta selection has no sensible prefill.
	addr := in.ShippingAddress
	if addr.IsZero() && s.addresses != nil {
		if saved, err := s.addresses.DefaultAddress(ctx, userID); err == nil {
			addr = saved.AsShipping()
		}
	}

	// A packeta shipment without a pickup point must fail here, before the
	// provider is ever called.
	if err := addr.Validate(); err != nil {
		return nil, err
	}

	view, err := s.cart.View(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	if view.Empty() {
		return nil, fmt.Errorf("%w: cart is empty", entity.ErrInvalidRequest)
	}

	lines := make([]ports.SessionLine, 0, len(view.Lines))
	for _, l := range view.Lines {
		lines = append(lines, ports.SessionLine{
			Name:       l.ProductName,
			UnitAmount: entity.MinorUnits(l.UnitPrice),
			Quantity:   l.Quantity,
			ProductID:  l.ProductID,
		})
	}

	addrJSON, err := json.Marshal(addr)
	if err != nil {
		return nil, fmt.Errorf("checkout: serialize shipping address: %w", err)
	}

	sess, err := s.gateway.CreateSession(ctx, ports.CreateSessionInput{
		Lines:      lines,
		SuccessURL: in.SuccessURL,
		CancelURL:  in.CancelURL,
		Metadata: map[string]string{
			metaUserID:          userID,
			metaUserEmail:       userEmail,
			metaShippingMethod:  string(in.ShippingMethod),
			metaShippingAddress: string(addrJSON),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	slog.InfoContext(ctx, "checkout session created",
		"user_id", userID, "session_id", sess.ID, "items", len(lines))

	return &ports.CheckoutRedirect{
		SessionID:   sess.ID,
		RedirectURL: sess.URL,
	}, nil
}
