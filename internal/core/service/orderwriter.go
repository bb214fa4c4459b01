package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quanb-duy/custom-ecommerce-website/internal/coordinator"
	"github.com/quanb-duy/custom-ecommerce-website/internal/coordinator/flowlog"
	"github.com/quanb-duy/custom-ecommerce-website/internal/core/domain/entity"
	"github.com/quanb-duy/custom-ecommerce-website/internal/core/ports"
)

var _ ports.OrderWriter = (*OrderWriterService)(nil)

// OrderWriterService is the single point where money, inventory and shipping
// intent are reconciled. Creation runs as a compensating pipeline:
// reserve stock, persist order+items in one transaction, clear the cart.
type OrderWriterService struct {
	orders   ports.OrderRepository
	products ports.ProductRepository
	carts    ports.CartRepository
	flowLog  flowlog.Repository
}

func NewOrderWriterService(
	orders ports.OrderRepository,
	products ports.ProductRepository,
	carts ports.CartRepository,
	flowLog flowlog.Repository,
) *OrderWriterService {
	return &OrderWriterService{
		orders:   orders,
		products: products,
		carts:    carts,
		flowLog:  flowLog,
	}
}

func (s *OrderWriterService) CreateOrder(ctx context.Context, userID string, draft ports.OrderDraft, items []entity.OrderItem, paymentRef string) (*entity.Order, error) {
	if userID == "" {
		return nil, entity.ErrMissingUserContext
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order has no items", entity.ErrInvalidRequest)
	}

	status, storedRef := resolvePayment(paymentRef)

	subtotal := entity.ItemsSubtotal(items)
	order := &entity.Order{
		UserID:          userID,
		CreatedAt:       time.Now().UTC(),
		Status:          status,
		Total:           entity.OrderTotal(subtotal, draft.ShippingMethod.Cost()),
		ShippingMethod:  draft.ShippingMethod,
		ShippingAddress: draft.ShippingAddress,
		PaymentIntentID: storedRef,
	}

	steps := []coordinator.Step{
		coordinator.NewReserveStockStep(s.products, items),
		coordinator.NewPersistOrderStep(s.orders, order, items),
		coordinator.NewClearCartStep(s.carts, userID),
	}

	// The order id does not exist until the persist step runs, so the flow
	// is keyed by a fresh uuid; the payload records the inputs for replay.
	flowID := uuid.NewString()
	pipeline := coordinator.NewOrchestrator(flowID, steps, s.flowLog, s.flowPayload(userID, draft, items, paymentRef))

	if err := pipeline.Start(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrOrderCreation, err)
	}

	slog.InfoContext(ctx, "order created",
		"order_id", order.ID, "user_id", userID, "status", string(order.Status), "total", order.Total.String())
	return order, nil
}

// resolvePayment maps the payment reference to an order status. The
// manual/cash sentinel yields a pending order and the reference itself is
// cleared so the sentinel string is never persisted.
func resolvePayment(paymentRef string) (entity.OrderStatus, string) {
	switch paymentRef {
	case entity.ManualPaymentSentinel:
		return entity.StatusPending, ""
	case "":
		return entity.StatusPending, ""
	default:
		return entity.StatusPaid, paymentRef
	}
}

func (s *OrderWriterService) flowPayload(userID string, draft ports.OrderDraft, items []entity.OrderItem, paymentRef string) string {
	type line struct {
		ProductID int64  `json:"product_id"`
		Name      string `json:"name"`
		Price     string `json:"price"`
		Quantity  int    `json:"quantity"`
	}
	payload := struct {
		UserID         string `json:"user_id"`
		ShippingMethod string `json:"shipping_method"`
		PaymentRef     string `json:"payment_ref,omitempty"`
		Lines          []line `json:"lines"`
	}{
		UserID:         userID,
		ShippingMethod: string(draft.ShippingMethod),
		PaymentRef:     paymentRef,
	}
	for _, it := range items {
		payload.Lines = append(payload.Lines, line{
			ProductID: it.ProductID,
			Name:      it.ProductName,
			Price:     it.ProductPrice.String(),
			Quantity:  it.Quantity,
		})
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(b)
}
