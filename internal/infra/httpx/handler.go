package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/quanb-duy/custom-ecommerce-website/internal/core/domain/entity"
	"github.com/quanb-duy/custom-ecommerce-website/internal/core/ports"
	"github.com/quanb-duy/custom-ecommerce-website/internal/infra/httpx/middlewares"
)

// Handler exposes the checkout pipeline stages as HTTP endpoints.
type Handler struct {
	cart       ports.CartService
	checkout   ports.CheckoutService
	verifier   ports.PaymentVerifier
	orders     ports.OrderWriter
	dispatcher ports.CarrierDispatcher
	tracking   ports.TrackingPoller
	pickups    ports.PickupPointDirectory
}

func NewHandler(
	cart ports.CartService,
	checkout ports.CheckoutService,
	verifier ports.PaymentVerifier,
	orders ports.OrderWriter,
	dispatcher ports.CarrierDispatcher,
	tracking ports.TrackingPoller,
	pickups ports.PickupPointDirectory,
) *Handler {
	return &Handler{
		cart:       cart,
		checkout:   checkout,
		verifier:   verifier,
		orders:     orders,
		dispatcher: dispatcher,
		tracking:   tracking,
		pickups:    pickups,
	}
}

// --- cart ---

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	view, limited, err := h.cart.AddItem(r.Context(), middlewares.UserID(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(view, limited))
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	view, limited, err := h.cart.UpdateQuantity(r.Context(), middlewares.UserID(r.Context()), req.ItemID, req.Quantity)
	if err != nil {
		writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(view, limited))
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	var req RemoveCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	view, err := h.cart.RemoveItem(r.Context(), middlewares.UserID(r.Context()), req.ItemID)
	if err != nil {
		writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(view, false))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context(), middlewares.UserID(r.Context())); err != nil {
		writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, CartResponse{Success: true, Items: []CartLineResponse{}, Subtotal: "0.00"})
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.cart.View(r.Context(), middlewares.UserID(r.Context()))
	if err != nil {
		writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(view, false))
}

// --- checkout ---

func (h *Handler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	redirect, err := h.checkout.CreateSession(r.Context(),
		middlewares.UserID(r.Context()),
		middlewares.UserEmail(r.Context()),
		ports.CheckoutInput{
			ShippingMethod:  entity.ShippingMethod(req.ShippingMethod),
			ShippingAddress: req.ShippingAddress,
			SuccessURL:      req.SuccessURL,
			CancelURL:       req.CancelURL,
		})
	if err != nil {
		writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, CreateSessionResponse{
		Success:     true,
		SessionID:   redirect.SessionID,
		RedirectURL: redirect.RedirectURL,
	})
}

func (h *Handler) VerifyCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req VerifySessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	fallback := req.UserID
	if fallback == "" {
		fallback = middlewares.UserID(r.Context())
	}

	order, created, err := h.verifier.VerifySession(r.Context(), req.SessionID, fallback)
	if err != nil {
		writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(order, created))
}

// --- orders ---

// CreateOrder is the direct (cash-on-delivery) path: items are priced from
// the caller's server-side cart, never from the request body.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	userID := middlewares.UserID(r.Context())
	view, err := h.cart.View(r.Context(), userID)
	if err != nil {
		writeDomainError(r, w, err)
		return
	}

	items := make([]entity.OrderItem, 0, len(view.Lines))
	for _, l := range view.Lines {
		items = append(items, entity.OrderItem{
			ProductID:    l.ProductID,
			ProductName:  l.ProductName,
			ProductPrice: l.UnitPrice,
			Quantity:     l.Quantity,
		})
	}

	order, err := h.orders.CreateOrder(r.Context(), userID, ports.OrderDraft{
		ShippingMethod:  entity.ShippingMethod(req.ShippingMethod),
		ShippingAddress: req.ShippingAddress,
	}, items, req.PaymentIntentID)
	if err != nil {
		writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapOrder(order, true))
}

func (h *Handler) DispatchOrder(w http.ResponseWriter, r *http.Request) {
	var req DispatchOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), req.OrderID)
	if err != nil {
		writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, DispatchOrderResponse{
		Success:        true,
		TrackingNumber: result.TrackingNumber,
		PacketID:       result.PacketID,
	})
}

func (h *Handler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	var req TrackOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	info, err := h.tracking.GetTracking(r.Context(), req.OrderID, middlewares.UserID(r.Context()))
	if err != nil {
		writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, TrackOrderResponse{
		Success:        true,
		TrackingNumber: info.TrackingNumber,
		Status:         string(info.Status),
	})
}

func (h *Handler) PickupPoints(w http.ResponseWriter, r *http.Request) {
	points, err := h.pickups.List(r.Context())
	if err != nil {
		writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, PickupPointsResponse{Success: true, Points: points})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{
		Success: false,
		Error:   code,
		Details: details,
	})
}

// writeDomainError maps domain sentinels onto the wire taxonomy. The
// ServiceUnavailable branch deliberately hides the underlying cause; it is
// already logged where it happened.
func writeDomainError(r *http.Request, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrAuthRequired):
		writeError(w, http.StatusUnauthorized, "authentication_required", "")
	case errors.Is(err, entity.ErrMissingUserContext):
		writeError(w, http.StatusUnauthorized, "missing_user_context", err.Error())
	case errors.Is(err, entity.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "")
	case errors.Is(err, entity.ErrPickupPointRequired):
		writeError(w, http.StatusBadRequest, "pickup_point_required", err.Error())
	case errors.Is(err, entity.ErrInvalidShipping):
		writeError(w, http.StatusBadRequest, "invalid_shipping_configuration", err.Error())
	case errors.Is(err, entity.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, entity.ErrInsufficientStock):
		writeError(w, http.StatusConflict, "insufficient_stock", err.Error())
	case errors.Is(err, entity.ErrSessionNotPaid):
		writeError(w, http.StatusPaymentRequired, "session_not_paid", err.Error())
	case errors.Is(err, entity.ErrPaymentProcessing):
		writeError(w, http.StatusBadGateway, "payment_processing_error", err.Error())
	case errors.Is(err, entity.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, "service_unavailable", "required provider is not configured")
	case errors.Is(err, entity.ErrOrderCreation):
		writeError(w, http.StatusInternalServerError, "order_creation_failed", err.Error())
	default:
		slog.ErrorContext(r.Context(), "unhandled error", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}
