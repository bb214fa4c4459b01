package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/quanb-duy/custom-ecommerce-website/internal/infra/httpx/middlewares"
	"github.com/quanb-duy/custom-ecommerce-website/internal/pkg/metrics"
)

// NewRouter assembles the HTTP surface. Every pipeline endpoint accepts
// POST plus the CORS OPTIONS preflight; anything else gets a JSON error
// naming the expected method.
func NewRouter(handler *Handler, m *metrics.ServerMetrics, corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middlewares.HeaderUserID, middlewares.HeaderUserEmail},
		MaxAge:         300,
	}))
	r.Use(middlewares.AttachIdentity)

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed",
			"this endpoint expects POST (or OPTIONS for preflight)")
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "")
	})

	post := func(pattern, name string, fn http.HandlerFunc) {
		if m != nil {
			fn = m.Instrument(name, fn)
		}
		r.Post(pattern, fn)
	}
	get := func(pattern, name string, fn http.HandlerFunc) {
		if m != nil {
			fn = m.Instrument(name, fn)
		}
		r.Get(pattern, fn)
	}

	post("/api/cart/items", "cart_add", handler.AddCartItem)
	post("/api/cart/items/update", "cart_update", handler.UpdateCartItem)
	post("/api/cart/items/remove", "cart_remove", handler.RemoveCartItem)
	post("/api/cart/clear", "cart_clear", handler.ClearCart)
	get("/api/cart", "cart_view", handler.GetCart)

	post("/api/checkout/session", "checkout_session", handler.CreateCheckoutSession)
	post("/api/checkout/verify", "checkout_verify", handler.VerifyCheckoutSession)

	post("/api/orders", "order_create", handler.CreateOrder)
	post("/api/orders/dispatch", "order_dispatch", handler.DispatchOrder)
	post("/api/orders/track", "order_track", handler.TrackOrder)

	get("/api/pickup-points", "pickup_points", handler.PickupPoints)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}
