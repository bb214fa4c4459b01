package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quanb-duy/custom-ecommerce-website/internal/core/domain/entity"
	"github.com/quanb-duy/custom-ecommerce-website/internal/core/ports"
)

var _ ports.TrackingPoller = (*TrackingService)(nil)

// TrackingService answers on-demand tracking requests. It is the only path
// besides the dispatcher that may move a tracking number from absent to
// present, and it does so at most once.
type TrackingService struct {
	orders  ports.OrderRepository
	carrier ports.Carrier // nil-safe: synthesis is used when absent
}

func NewTrackingService(orders ports.OrderRepository, carrier ports.Carrier) *TrackingService {
	return &TrackingService{orders: orders, carrier: carrier}
}

func (s *TrackingService) GetTracking(ctx context.Context, orderID int64, requestingUserID string) (*ports.TrackingInfo, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	// NotFound, not Forbidden: a 403 would confirm the order exists.
	if order.UserID != requestingUserID {
		return nil, entity.ErrNotFound
	}

	// Idempotent read: an existing number is returned unchanged and
	// carrier_data is not touched again.
	if order.TrackingNumber != "" {
		return &ports.TrackingInfo{
			TrackingNumber: order.TrackingNumber,
			Status:         order.Status,
		}, nil
	}

	tracking := s.resolveTracking(ctx, order)

	// Status is preserved: assigning a number on demand says nothing about
	// the shipment having progressed.
	if err := s.orders.SetTracking(ctx, orderID, tracking, order.Status, order.CarrierData); err != nil {
		return nil, fmt.Errorf("tracking: persist number for order %d: %w", orderID, err)
	}

	slog.InfoContext(ctx, "tracking number assigned on demand",
		"order_id", orderID, "tracking_number", tracking)

	return &ports.TrackingInfo{
		TrackingNumber: tracking,
		Status:         order.Status,
	}, nil
}

// resolveTracking asks the carrier for the barcode of an already-created
// packet; when there is no packet or no carrier, it synthesizes a
// deterministic number from the order id so retries agree.
func (s *TrackingService) resolveTracking(ctx context.Context, order *entity.Order) string {
	if s.carrier != nil {
		if packetID := packetIDFromCarrierData(order.CarrierData); packetID != "" {
			barcode, err := s.carrier.PacketBarcode(ctx, packetID)
			if err == nil && barcode != "" {
				return barcode
			}
			slog.WarnContext(ctx, "carrier barcode lookup failed, synthesizing tracking number",
				"order_id", order.ID, "packet_id", packetID, "error", err)
		}
	}
	return fmt.Sprintf("Z%09d", order.ID)
}
