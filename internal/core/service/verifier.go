package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/quanb-duy/custom-ecommerce-website/internal/core/domain/entity"
	"github.com/quanb-duy/custom-ecommerce-website/internal/core/ports"
	"github.com/quanb-duy/custom-ecommerce-website/internal/pkg/cache"
)

// verifiedSessionOp namespaces the cache entries mapping a verified session
// id to its order id.
const verifiedSessionOp = "verified-session"

var _ ports.PaymentVerifier = (*VerifierService)(nil)

// VerifierService confirms payment completion with the provider and turns a
// completed session into an order exactly once.
type VerifierService struct {
	gateway    ports.PaymentGateway
	orders     ports.OrderRepository
	writer     ports.OrderWriter
	reconciler *Reconciler
	cache      cache.Cache // nil-safe fast path for repeated verifications
}

func NewVerifierService(
	gateway ports.PaymentGateway,
	orders ports.OrderRepository,
	writer ports.OrderWriter,
	reconciler *Reconciler,
	c cache.Cache,
) *VerifierService {
	return &VerifierService{
		gateway:    gateway,
		orders:     orders,
		writer:     writer,
		reconciler: reconciler,
		cache:      c,
	}
}

func (s *VerifierService) VerifySession(ctx context.Context, sessionID, fallbackUserID string) (*entity.Order, bool, error) {
	if sessionID == "" {
		return nil, false, fmt.Errorf("%w: session id is required", entity.ErrInvalidRequest)
	}
	if s.gateway == nil {
		slog.ErrorContext(ctx, "session verification requested but payment provider is not configured")
		return nil, false, entity.ErrServiceUnavailable
	}

	// Fast path: a session verified earlier resolves straight from the
	// cache, skipping the provider round trip. Misses and stale entries
	// fall through to the database guard.
	if s.cache != nil {
		key := s.cache.GenerateKey(verifiedSessionOp, sessionID)
		if raw, err := s.cache.Get(ctx, key); err == nil && raw != "" {
			if id, parseErr := strconv.ParseInt(raw, 10, 64); parseErr == nil {
				if order, getErr := s.orders.GetOrder(ctx, id); getErr == nil {
					return order, false, nil
				}
			}
		}
	}

	// Idempotency guard: a session already turned into an order is returned
	// as-is. The unique index on payment_intent_id backs this up if two
	// verifications race past the check.
	if existing, err := s.orders.FindByPaymentIntent(ctx, sessionID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, entity.ErrNotFound) {
		return nil, false, fmt.Errorf("verify session: %w", err)
	}

	sess, err := s.gateway.GetSession(ctx, sessionID)
	if err != nil {
		return nil, false, fmt.Errorf("verify session: %w", err)
	}
	if sess.PaymentStatus != "paid" {
		return nil, false, fmt.Errorf("%w: status %q", entity.ErrSessionNotPaid, sess.PaymentStatus)
	}

	userID := sess.Metadata[metaUserID]
	if userID == "" {
		// Sessions created before metadata propagation was reliable carry
		// no user id; accept the caller-supplied identity instead.
		userID = fallbackUserID
	}
	if userID == "" {
		return nil, false, entity.ErrMissingUserContext
	}

	method := entity.ShippingMethod(sess.Metadata[metaShippingMethod])
	if !method.Valid() {
		method = entity.ShippingStandard
	}

	// Payment already succeeded; a malformed address must not lose the
	// order. Fall back to an empty standard address and annotate.
	var notes []string
	addr, addrErr := parseAddressMetadata(sess.Metadata[metaShippingAddress])
	if addrErr != nil {
		slog.ErrorContext(ctx, "shipping address metadata unparseable, using empty standard address",
			"session_id", sessionID, "error", addrErr)
		notes = append(notes, "shipping address metadata could not be parsed: "+addrErr.Error())
	}
	if addr.Email == "" {
		// The carrier wants a recipient email; the session carries the
		// buyer's address even when the shipping form left it blank.
		addr.Email = sess.Metadata[metaUserEmail]
	}

	lineItems, err := s.gateway.ListLineItems(ctx, sessionID)
	if err != nil {
		return nil, false, fmt.Errorf("verify session: %w", err)
	}
	if len(lineItems) == 0 {
		return nil, false, fmt.Errorf("%w: session %s has no line items", entity.ErrPaymentProcessing, sessionID)
	}

	items := make([]entity.OrderItem, 0, len(lineItems))
	for _, li := range lineItems {
		productID, how := s.reconciler.Resolve(ctx, sessionID, li)
		if how == matchedSentinel {
			notes = append(notes, fmt.Sprintf("line %q assigned placeholder product, needs manual reconciliation", li.Description))
		}
		name := li.ProductName
		if name == "" {
			name = li.Description
		}
		items = append(items, entity.OrderItem{
			ProductID:    productID,
			ProductName:  name,
			ProductPrice: entity.FromMinorUnits(li.UnitAmount),
			Quantity:     li.Quantity,
		})
	}

	order, err := s.writer.CreateOrder(ctx, userID, ports.OrderDraft{
		ShippingMethod:  method,
		ShippingAddress: addr,
	}, items, sessionID)
	if err != nil {
		return nil, false, err
	}

	for _, note := range notes {
		if err := s.orders.AppendNote(ctx, order.ID, note); err != nil {
			slog.ErrorContext(ctx, "failed to annotate order", "order_id", order.ID, "error", err)
		}
	}

	if s.cache != nil {
		key := s.cache.GenerateKey(verifiedSessionOp, sessionID)
		if err := s.cache.Set(ctx, key, strconv.FormatInt(order.ID, 10), 24*time.Hour); err != nil {
			slog.WarnContext(ctx, "failed to cache verified session", "session_id", sessionID, "error", err)
		}
	}

	slog.InfoContext(ctx, "payment session verified, order created",
		"session_id", sessionID, "order_id", order.ID, "user_id", userID)
	return order, true, nil
}

// parseAddressMetadata decodes the JSON-encoded shipping address carried in
// session metadata. On any failure it returns an empty standard address so
// the paid order still gets created.
func parseAddressMetadata(raw string) (entity.ShippingAddress, error) {
	empty := entity.ShippingAddress{
		Type:     entity.AddressStandard,
		Standard: &entity.StandardAddress{},
	}
	if raw == "" {
		return empty, errors.New("metadata field is empty")
	}
	var addr entity.ShippingAddress
	if err := json.Unmarshal([]byte(raw), &addr); err != nil {
		return empty, err
	}
	if addr.IsZero() {
		return empty, errors.New("metadata decoded to an empty address")
	}
	return addr, nil
}
