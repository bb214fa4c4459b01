package httpx

import (
	"github.com/quanb-duy/custom-ecommerce-website/internal/core/domain/entity"
)

type AddCartItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateCartItemRequest struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

type RemoveCartItemRequest struct {
	ItemID int64 `json:"item_id"`
}

type CartLineResponse struct {
	ItemID      int64  `json:"item_id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	Subtotal    string `json:"subtotal"`
}

type CartResponse struct {
	Success      bool               `json:"success"`
	StockLimited bool               `json:"stock_limited,omitempty"`
	Items        []CartLineResponse `json:"items"`
	Subtotal     string             `json:"subtotal"`
	ItemCount    int                `json:"item_count"`
}

type CreateSessionRequest struct {
	ShippingMethod  string                 `json:"shipping_method"`
	ShippingAddress entity.ShippingAddress `json:"shipping_address"`
	SuccessURL      string                 `json:"success_url"`
	CancelURL       string                 `json:"cancel_url"`
}

type CreateSessionResponse struct {
	Success     bool   `json:"success"`
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

type VerifySessionRequest struct {
	SessionID string `json:"session_id"`
	// UserID is the fallback identity for sessions whose metadata predates
	// reliable user id propagation.
	UserID string `json:"user_id,omitempty"`
}

type OrderResponse struct {
	Success        bool   `json:"success"`
	OrderID        int64  `json:"order_id"`
	Status         string `json:"status"`
	Total          string `json:"total"`
	ShippingMethod string `json:"shipping_method"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	Created        bool   `json:"created,omitempty"`
}

type CreateOrderRequest struct {
	ShippingMethod  string                 `json:"shipping_method"`
	ShippingAddress entity.ShippingAddress `json:"shipping_address"`
	// PaymentIntentID is empty or the manual/cash sentinel for orders
	// placed without an upfront payment.
	PaymentIntentID string `json:"payment_intent_id,omitempty"`
}

type DispatchOrderRequest struct {
	OrderID int64 `json:"order_id"`
}

type DispatchOrderResponse struct {
	Success        bool   `json:"success"`
	TrackingNumber string `json:"tracking_number"`
	PacketID       string `json:"packet_id,omitempty"`
}

type TrackOrderRequest struct {
	OrderID int64 `json:"order_id"`
}

type TrackOrderResponse struct {
	Success        bool   `json:"success"`
	TrackingNumber string `json:"tracking_number"`
	Status         string `json:"status"`
}

type PickupPointsResponse struct {
	Success bool                 `json:"success"`
	Points  []entity.PickupPoint `json:"points"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func mapCart(view *entity.CartView, stockLimited bool) CartResponse {
	resp := CartResponse{
		Success:      true,
		StockLimited: stockLimited,
		Items:        make([]CartLineResponse, 0, len(view.Lines)),
		Subtotal:     view.Subtotal().StringFixed(2),
		ItemCount:    view.ItemCount(),
	}
	for _, l := range view.Lines {
		resp.Items = append(resp.Items, CartLineResponse{
			ItemID:      l.ItemID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			UnitPrice:   l.UnitPrice.StringFixed(2),
			Quantity:    l.Quantity,
			Subtotal:    l.Subtotal().StringFixed(2),
		})
	}
	return resp
}

func mapOrder(order *entity.Order, created bool) OrderResponse {
	return OrderResponse{
		Success:        true,
		OrderID:        order.ID,
		Status:         string(order.Status),
		Total:          order.Total.StringFixed(2),
		ShippingMethod: string(order.ShippingMethod),
		TrackingNumber: order.TrackingNumber,
		Created:        created,
	}
}
