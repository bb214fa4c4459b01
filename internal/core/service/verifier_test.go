package service

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quanb-duy/custom-ecommerce-website/internal/core/domain/entity"
	"github.com/quanb-duy/custom-ecommerce-website/internal/core/ports"
)

const addrMetadata = `{"type":"standard","full_name":"Jana Novak","phone":"+420777123456",` +
	`"standard":{"line1":"Main Street 1","city":"Prague","postal_code":"11000","country":"CZ"}}`

func verifierFixture() (*VerifierService, *fakeGateway, *fakeOrders, *fakeProducts, *fakeQueue) {
	products := newFakeProducts(
		&entity.Product{ID: 1, Name: "Widget", Price: price("49.99"), Stock: 5},
	)
	carts := newFakeCarts()
	orders := newFakeOrders()
	gateway := newFakeGateway()
	queue := &fakeQueue{}

	writer := NewOrderWriterService(orders, products, carts, nil)
	reconciler := NewReconciler(products, queue)
	svc := NewVerifierService(gateway, orders, writer, reconciler, nil)
	return svc, gateway, orders, products, queue
}

func paidSession(gateway *fakeGateway, id string, metadata map[string]string, lines []ports.SessionLineItem) {
	gateway.sessions[id] = &ports.CheckoutSession{
		ID:            id,
		PaymentStatus: "paid",
		Metadata:      metadata,
	}
	gateway.lineItems[id] = lines
}

func widgetLine() []ports.SessionLineItem {
	return []ports.SessionLineItem{
		{Description: "Widget", ProductName: "Widget", Quantity: 2, UnitAmount: 4999, ProductID: 1},
	}
}

func fullMetadata() map[string]string {
	return map[string]string{
		"user_id":          "u1",
		"user_email":       "u1@example.com",
		"shipping_method":  "standard",
		"shipping_address": addrMetadata,
	}
}

func TestVerifySessionRequiresSessionID(t *testing.T) {
	svc, _, _, _, _ := verifierFixture()
	_, _, err := svc.VerifySession(context.Background(), "", "")
	assert.ErrorIs(t, err, entity.ErrInvalidRequest)
}

func TestVerifySessionWithoutGateway(t *testing.T) {
	svc, _, _, _, _ := verifierFixture()
	svc.gateway = nil
	_, _, err := svc.VerifySession(context.Background(), "cs_1", "")
	assert.ErrorIs(t, err, entity.ErrServiceUnavailable)
}

func TestVerifySessionUnpaid(t *testing.T) {
	svc, gateway, _, _, _ := verifierFixture()
	gateway.sessions["cs_1"] = &ports.CheckoutSession{ID: "cs_1", PaymentStatus: "unpaid"}

	_, _, err := svc.VerifySession(context.Background(), "cs_1", "")
	assert.ErrorIs(t, err, entity.ErrSessionNotPaid)
}

func TestVerifySessionCreatesOrderOnce(t *testing.T) {
	svc, gateway, orders, products, _ := verifierFixture()
	paidSession(gateway, "cs_1", fullMetadata(), widgetLine())

	order, created, err := svc.VerifySession(context.Background(), "cs_1", "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "u1", order.UserID)
	assert.Equal(t, entity.StatusPaid, order.Status)
	assert.Equal(t, "cs_1", order.PaymentIntentID)
	// 99.98 + 5.00 shipping + 7.00 tax
	assert.True(t, order.Total.Equal(price("111.98")), "total = %s", order.Total)
	assert.Equal(t, 3, products.byID[1].Stock)

	// Second verification returns the same order without touching anything.
	again, created, err := svc.VerifySession(context.Background(), "cs_1", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, order.ID, again.ID)
	assert.Equal(t, 3, products.byID[1].Stock, "stock not decremented twice")
	require.Len(t, orders.orders, 1)
}

func TestVerifySessionFallbackUserID(t *testing.T) {
	svc, gateway, _, _, _ := verifierFixture()
	meta := fullMetadata()
	delete(meta, "user_id")
	paidSession(gateway, "cs_1", meta, widgetLine())

	order, created, err := svc.VerifySession(context.Background(), "cs_1", "fallback-user")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "fallback-user", order.UserID)
}

func TestVerifySessionNoUserAnywhere(t *testing.T) {
	svc, gateway, _, _, _ := verifierFixture()
	meta := fullMetadata()
	delete(meta, "user_id")
	paidSession(gateway, "cs_1", meta, widgetLine())

	_, _, err := svc.VerifySession(context.Background(), "cs_1", "")
	assert.ErrorIs(t, err, entity.ErrMissingUserContext)
}

func TestVerifySessionMalformedAddressStillCreatesOrder(t *testing.T) {
	svc, gateway, orders, _, _ := verifierFixture()
	meta := fullMetadata()
	meta["shipping_address"] = "{not json"
	paidSession(gateway, "cs_1", meta, widgetLine())

	order, created, err := svc.VerifySession(context.Background(), "cs_1", "")
	require.NoError(t, err)
	assert.True(t, created)

	stored, err := orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AddressStandard, stored.ShippingAddress.Type)
	assert.True(t, strings.Contains(stored.Notes, "could not be parsed"), "notes = %q", stored.Notes)
}

func TestVerifySessionUnknownShippingMethodFallsBackToStandard(t *testing.T) {
	svc, gateway, _, _, _ := verifierFixture()
	meta := fullMetadata()
	meta["shipping_method"] = "teleport"
	paidSession(gateway, "cs_1", meta, widgetLine())

	order, _, err := svc.VerifySession(context.Background(), "cs_1", "")
	require.NoError(t, err)
	assert.Equal(t, entity.ShippingStandard, order.ShippingMethod)
}

func TestVerifySessionNoLineItems(t *testing.T) {
	svc, gateway, _, _, _ := verifierFixture()
	paidSession(gateway, "cs_1", fullMetadata(), nil)

	_, _, err := svc.VerifySession(context.Background(), "cs_1", "")
	assert.ErrorIs(t, err, entity.ErrPaymentProcessing)
}

func TestVerifySessionReconcilesByName(t *testing.T) {
	svc, gateway, orders, _, queue := verifierFixture()
	lines := []ports.SessionLineItem{
		// No product id in metadata; the catalog name matches.
		{Description: "widget", Quantity: 1, UnitAmount: 4999},
	}
	paidSession(gateway, "cs_1", fullMetadata(), lines)

	order, _, err := svc.VerifySession(context.Background(), "cs_1", "")
	require.NoError(t, err)

	items, err := orders.GetOrderItems(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].ProductID)
	assert.Empty(t, queue.events)
}

func TestVerifySessionSentinelLineGoesToReview(t *testing.T) {
	svc, gateway, orders, _, queue := verifierFixture()
	lines := []ports.SessionLineItem{
		{Description: "Discontinued thing", Quantity: 1, UnitAmount: 500},
	}
	paidSession(gateway, "cs_1", fullMetadata(), lines)

	order, _, err := svc.VerifySession(context.Background(), "cs_1", "")
	require.NoError(t, err)

	items, err := orders.GetOrderItems(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, entity.PlaceholderProductID, items[0].ProductID)
	assert.True(t, items[0].ProductPrice.Equal(price("5.00")))

	require.Len(t, queue.events, 1)
	assert.Equal(t, "cs_1", queue.events[0].SessionID)
	assert.Equal(t, "Discontinued thing", queue.events[0].Description)

	stored, err := orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, strings.Contains(stored.Notes, "manual reconciliation"), "notes = %q", stored.Notes)
}

func TestVerifySessionCachesResult(t *testing.T) {
	svc, gateway, _, _, _ := verifierFixture()
	c := newFakeCache()
	svc.cache = c
	paidSession(gateway, "cs_1", fullMetadata(), widgetLine())

	_, _, err := svc.VerifySession(context.Background(), "cs_1", "")
	require.NoError(t, err)
	assert.NotEmpty(t, c.values["test:verified-session:cs_1"])
}

func TestVerifySessionCacheHitSkipsProvider(t *testing.T) {
	svc, gateway, orders, _, _ := verifierFixture()
	c := newFakeCache()
	svc.cache = c

	id, err := orders.CreateOrder(context.Background(),
		&entity.Order{UserID: "u1", Status: entity.StatusPaid, Total: price("111.98"), ShippingMethod: entity.ShippingStandard}, nil)
	require.NoError(t, err)
	c.values["test:verified-session:cs_9"] = strconv.FormatInt(id, 10)

	// The gateway knows nothing about cs_9; a provider call would fail.
	gateway.getErr = entity.ErrPaymentProcessing

	order, created, err := svc.VerifySession(context.Background(), "cs_9", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, order.ID)
}

func TestVerifySessionStaleCacheFallsThrough(t *testing.T) {
	svc, gateway, orders, _, _ := verifierFixture()
	c := newFakeCache()
	svc.cache = c
	paidSession(gateway, "cs_1", fullMetadata(), widgetLine())

	// A cache entry pointing at a vanished order must not short-circuit
	// verification.
	c.values["test:verified-session:cs_1"] = "42"

	order, created, err := svc.VerifySession(context.Background(), "cs_1", "")
	require.NoError(t, err)
	assert.True(t, created)
	require.Len(t, orders.orders, 1)
	assert.Equal(t, "cs_1", order.PaymentIntentID)
}

func TestVerifySessionDefaultsEmailFromMetadata(t *testing.T) {
	svc, gateway, orders, _, _ := verifierFixture()
	paidSession(gateway, "cs_1", fullMetadata(), widgetLine())

	order, _, err := svc.VerifySession(context.Background(), "cs_1", "")
	require.NoError(t, err)

	stored, err := orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1@example.com", stored.ShippingAddress.Email,
		"session email backfills an address without one")
}
