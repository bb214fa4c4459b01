package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/quanb-duy/custom-ecommerce-website/internal/core/domain/entity"
	"github.com/quanb-duy/custom-ecommerce-website/internal/core/ports"
)

var _ ports.CarrierDispatcher = (*DispatcherService)(nil)

// DispatcherService submits confirmed orders to the parcel-locker carrier.
// A dispatch failure annotates the order for the operator but never reverts
// its status — the customer has already paid.
type DispatcherService struct {
	orders   ports.OrderRepository
	carrier  ports.Carrier // nil when carrier credentials are absent
	currency string
	weightKG float64
}

func NewDispatcherService(orders ports.OrderRepository, carrier ports.Carrier, currency string, weightKG float64) *DispatcherService {
	return &DispatcherService{
		orders:   orders,
		carrier:  carrier,
		currency: currency,
		weightKG: weightKG,
	}
}

// PacketNumber derives the carrier packet number from the order id. It is
// stable across retries, so re-dispatching an order presents the same number
// to the carrier.
func PacketNumber(orderID int64) string {
	return fmt.Sprintf("ORD-%d", orderID)
}

func (s *DispatcherService) Dispatch(ctx context.Context, orderID int64) (*ports.DispatchResult, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Re-dispatch of a shipped order returns the recorded references
	// instead of creating a second packet.
	if order.TrackingNumber != "" {
		return &ports.DispatchResult{
			TrackingNumber: order.TrackingNumber,
			PacketID:       packetIDFromCarrierData(order.CarrierData),
		}, nil
	}

	req, err := s.buildPacketRequest(ctx, order)
	if err != nil {
		// Precondition failures are diagnosed on the order too; a shipment
		// silently stuck in limbo is the one outcome this must prevent.
		s.annotate(ctx, orderID, "carrier dispatch rejected: "+err.Error())
		return nil, err
	}

	if s.carrier == nil {
		slog.ErrorContext(ctx, "dispatch requested but carrier is not configured", "order_id", orderID)
		s.annotate(ctx, orderID, "carrier dispatch skipped: carrier not configured")
		return nil, entity.ErrServiceUnavailable
	}

	result, err := s.carrier.CreatePacket(ctx, *req)
	if err != nil {
		// Order status deliberately unchanged: the customer is not told the
		// order failed because shipping needs operator attention.
		s.annotate(ctx, orderID, "carrier dispatch failed: "+err.Error())
		return nil, fmt.Errorf("dispatch order %d: %w", orderID, err)
	}

	// Prefer the customer-facing barcode; fall back to the internal packet id.
	tracking := result.Barcode
	if tracking == "" {
		tracking = result.PacketID
	}

	carrierData, _ := json.Marshal(result)
	if err := s.orders.SetTracking(ctx, orderID, tracking, entity.StatusProcessing, string(carrierData)); err != nil {
		return nil, fmt.Errorf("dispatch order %d: record tracking: %w", orderID, err)
	}

	slog.InfoContext(ctx, "order dispatched to carrier",
		"order_id", orderID, "packet_id", result.PacketID, "tracking_number", tracking)

	return &ports.DispatchResult{
		TrackingNumber: tracking,
		PacketID:       result.PacketID,
	}, nil
}

// buildPacketRequest validates every carrier precondition and assembles the
// request. Nothing is guessed: missing data fails with a descriptive error.
func (s *DispatcherService) buildPacketRequest(ctx context.Context, order *entity.Order) (*ports.PacketRequest, error) {
	addr := order.ShippingAddress
	if addr.IsZero() {
		return nil, fmt.Errorf("%w: order %d has no shipping address", entity.ErrInvalidShipping, order.ID)
	}
	if addr.Type != entity.AddressPacketa || addr.Packeta == nil {
		return nil, fmt.Errorf("%w: order %d is not a packeta shipment", entity.ErrInvalidShipping, order.ID)
	}
	if addr.Packeta.PickupPointID == "" {
		return nil, fmt.Errorf("%w: order %d has no pickup point", entity.ErrInvalidShipping, order.ID)
	}

	// The carrier's addressId is numeric; a non-numeric pickup point id is a
	// data error, not something to coerce loosely.
	addressID, err := strconv.ParseInt(addr.Packeta.PickupPointID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: pickup point id %q is not numeric", entity.ErrInvalidShipping, addr.Packeta.PickupPointID)
	}

	first, last, err := addr.SplitName()
	if err != nil {
		return nil, err
	}
	if addr.Phone == "" {
		return nil, fmt.Errorf("%w: order %d has no recipient phone", entity.ErrInvalidShipping, order.ID)
	}

	value, err := s.declaredValue(ctx, order)
	if err != nil {
		return nil, err
	}

	cod := decimal.Zero
	if order.CashOnDelivery() {
		cod = value
	}

	return &ports.PacketRequest{
		Number:    PacketNumber(order.ID),
		Name:      first,
		Surname:   last,
		Email:     addr.Email,
		Phone:     addr.Phone,
		AddressID: addressID,
		COD:       cod,
		Value:     value,
		Currency:  s.currency,
		WeightKG:  s.weightKG,
	}, nil
}

// declaredValue sums the item line totals, falling back to the order total
// when the items cannot be read.
func (s *DispatcherService) declaredValue(ctx context.Context, order *entity.Order) (decimal.Decimal, error) {
	items, err := s.orders.GetOrderItems(ctx, order.ID)
	if err != nil || len(items) == 0 {
		return order.Total, nil
	}
	return entity.ItemsSubtotal(items), nil
}

func (s *DispatcherService) annotate(ctx context.Context, orderID int64, note string) {
	if err := s.orders.AppendNote(ctx, orderID, note); err != nil {
		slog.ErrorContext(ctx, "failed to append dispatch note", "order_id", orderID, "error", err)
	}
}

func packetIDFromCarrierData(raw string) string {
	if raw == "" {
		return ""
	}
	var result ports.PacketResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return ""
	}
	return result.PacketID
}
