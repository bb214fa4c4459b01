package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quanb-duy/custom-ecommerce-website/internal/core/domain/entity"
	"github.com/quanb-duy/custom-ecommerce-website/internal/core/ports"
)

// In-memory fakes for the repository and provider ports. They implement just
// enough semantics (conditional decrement, upsert, note appending) for the
// services to behave as they would against SQLite.

type fakeProducts struct {
	byID         map[int64]*entity.Product
	decrementErr error // forced failure for a specific product id
	decrementFor int64
}

func newFakeProducts(products ...*entity.Product) *fakeProducts {
	f := &fakeProducts{byID: make(map[int64]*entity.Product)}
	for _, p := range products {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakeProducts) GetProduct(_ context.Context, id int64) (*entity.Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) SearchProductByName(_ context.Context, name string) (*entity.Product, error) {
	for _, p := range f.byID {
		if strings.EqualFold(p.Name, name) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (f *fakeProducts) DecrementStock(_ context.Context, productID int64, quantity int) error {
	if f.decrementErr != nil && f.decrementFor == productID {
		return f.decrementErr
	}
	p, ok := f.byID[productID]
	if !ok {
		return entity.ErrNotFound
	}
	if p.Stock < quantity {
		return entity.ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}

func (f *fakeProducts) IncrementStock(_ context.Context, productID int64, quantity int) error {
	p, ok := f.byID[productID]
	if !ok {
		return entity.ErrNotFound
	}
	p.Stock += quantity
	return nil
}

type fakeCarts struct {
	items    map[int64]*entity.CartItem
	nextID   int64
	clearErr error
	cleared  []string
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{items: make(map[int64]*entity.CartItem)}
}

func (f *fakeCarts) seed(userID string, productID int64, quantity int) int64 {
	f.nextID++
	f.items[f.nextID] = &entity.CartItem{ID: f.nextID, UserID: userID, ProductID: productID, Quantity: quantity}
	return f.nextID
}

func (f *fakeCarts) ListItems(_ context.Context, userID string) ([]entity.CartItem, error) {
	var out []entity.CartItem
	for id := int64(1); id <= f.nextID; id++ {
		if it, ok := f.items[id]; ok && it.UserID == userID {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (f *fakeCarts) GetItem(_ context.Context, itemID int64) (*entity.CartItem, error) {
	it, ok := f.items[itemID]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (f *fakeCarts) GetItemByProduct(_ context.Context, userID string, productID int64) (*entity.CartItem, error) {
	for _, it := range f.items {
		if it.UserID == userID && it.ProductID == productID {
			cp := *it
			return &cp, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (f *fakeCarts) UpsertItem(_ context.Context, userID string, productID int64, quantity int) (int64, error) {
	for _, it := range f.items {
		if it.UserID == userID && it.ProductID == productID {
			it.Quantity = quantity
			return it.ID, nil
		}
	}
	return f.seed(userID, productID, quantity), nil
}

func (f *fakeCarts) UpdateQuantity(_ context.Context, itemID int64, quantity int) error {
	it, ok := f.items[itemID]
	if !ok {
		return entity.ErrNotFound
	}
	it.Quantity = quantity
	return nil
}

func (f *fakeCarts) DeleteItem(_ context.Context, itemID int64) error {
	delete(f.items, itemID)
	return nil
}

func (f *fakeCarts) Clear(_ context.Context, userID string) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared = append(f.cleared, userID)
	for id, it := range f.items {
		if it.UserID == userID {
			delete(f.items, id)
		}
	}
	return nil
}

type fakeOrders struct {
	orders    map[int64]*entity.Order
	items     map[int64][]entity.OrderItem
	nextID    int64
	createErr error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		orders: make(map[int64]*entity.Order),
		items:  make(map[int64][]entity.OrderItem),
	}
}

func (f *fakeOrders) CreateOrder(_ context.Context, order *entity.Order, items []entity.OrderItem) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	if order.PaymentIntentID != "" {
		for _, o := range f.orders {
			if o.PaymentIntentID == order.PaymentIntentID {
				return 0, fmt.Errorf("unique constraint: payment_intent_id %q", order.PaymentIntentID)
			}
		}
	}
	f.nextID++
	cp := *order
	cp.ID = f.nextID
	f.orders[f.nextID] = &cp
	f.items[f.nextID] = append([]entity.OrderItem(nil), items...)
	return f.nextID, nil
}

func (f *fakeOrders) GetOrder(_ context.Context, id int64) (*entity.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) GetOrderItems(_ context.Context, orderID int64) ([]entity.OrderItem, error) {
	return append([]entity.OrderItem(nil), f.items[orderID]...), nil
}

func (f *fakeOrders) FindByPaymentIntent(_ context.Context, paymentIntentID string) (*entity.Order, error) {
	for _, o := range f.orders {
		if o.PaymentIntentID != "" && o.PaymentIntentID == paymentIntentID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (f *fakeOrders) SetTracking(_ context.Context, orderID int64, trackingNumber string, status entity.OrderStatus, carrierData string) error {
	o, ok := f.orders[orderID]
	if !ok {
		return entity.ErrNotFound
	}
	if o.TrackingNumber != "" {
		return nil
	}
	o.TrackingNumber = trackingNumber
	o.Status = status
	o.CarrierData = carrierData
	return nil
}

func (f *fakeOrders) SetStatus(_ context.Context, orderID int64, status entity.OrderStatus) error {
	o, ok := f.orders[orderID]
	if !ok {
		return entity.ErrNotFound
	}
	o.Status = status
	return nil
}

func (f *fakeOrders) AppendNote(_ context.Context, orderID int64, note string) error {
	o, ok := f.orders[orderID]
	if !ok {
		return entity.ErrNotFound
	}
	if o.Notes == "" {
		o.Notes = note
	} else {
		o.Notes += "\n" + note
	}
	return nil
}

type fakeGateway struct {
	sessions  map[string]*ports.CheckoutSession
	lineItems map[string][]ports.SessionLineItem

	created     []ports.CreateSessionInput
	createErr   error
	getErr      error
	listErr     error
	nextSession string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		sessions:    make(map[string]*ports.CheckoutSession),
		lineItems:   make(map[string][]ports.SessionLineItem),
		nextSession: "cs_test_1",
	}
}

func (f *fakeGateway) CreateSession(_ context.Context, in ports.CreateSessionInput) (*ports.CheckoutSession, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, in)
	sess := &ports.CheckoutSession{
		ID:       f.nextSession,
		URL:      "https://pay.example.com/" + f.nextSession,
		Metadata: in.Metadata,
	}
	f.sessions[sess.ID] = sess
	return sess, nil
}

func (f *fakeGateway) GetSession(_ context.Context, sessionID string) (*ports.CheckoutSession, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	sess, ok := f.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: no such session %s", entity.ErrPaymentProcessing, sessionID)
	}
	return sess, nil
}

func (f *fakeGateway) ListLineItems(_ context.Context, sessionID string) ([]ports.SessionLineItem, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.lineItems[sessionID], nil
}

type fakeCarrier struct {
	createReqs []ports.PacketRequest
	createErr  error
	result     ports.PacketResult
	barcodes   map[string]string
	points     []entity.PickupPoint
	pointsErr  error
	pointCalls int
}

func (f *fakeCarrier) CreatePacket(_ context.Context, req ports.PacketRequest) (*ports.PacketResult, error) {
	f.createReqs = append(f.createReqs, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	cp := f.result
	return &cp, nil
}

func (f *fakeCarrier) PacketBarcode(_ context.Context, packetID string) (string, error) {
	b, ok := f.barcodes[packetID]
	if !ok {
		return "", fmt.Errorf("unknown packet %s", packetID)
	}
	return b, nil
}

func (f *fakeCarrier) PickupPoints(_ context.Context) ([]entity.PickupPoint, error) {
	f.pointCalls++
	if f.pointsErr != nil {
		return nil, f.pointsErr
	}
	return f.points, nil
}

type fakeQueue struct {
	events []ports.ReviewEvent
}

func (f *fakeQueue) Publish(_ context.Context, event ports.ReviewEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fakeCache struct {
	values map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (f *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.values[key] = value
	return nil
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	return f.values[key], nil
}

func (f *fakeCache) GenerateKey(operation, key string) string {
	return "test:" + operation + ":" + key
}

type fakeAddresses struct {
	byUser map[string]*entity.UserAddress
}

func (f *fakeAddresses) DefaultAddress(_ context.Context, userID string) (*entity.UserAddress, error) {
	a, ok := f.byUser[userID]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
