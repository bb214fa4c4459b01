package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quanb-duy/custom-ecommerce-website/internal/core/domain/entity"
	"github.com/quanb-duy/custom-ecommerce-website/internal/core/ports"
)

func dispatcherFixture() (*DispatcherService, *fakeOrders, *fakeCarrier) {
	orders := newFakeOrders()
	carrier := &fakeCarrier{result: ports.PacketResult{PacketID: "987654", Barcode: "Z123456789"}}
	svc := NewDispatcherService(orders, carrier, "CZK", 1.0)
	return svc, orders, carrier
}

func seedPacketaOrder(t *testing.T, orders *fakeOrders, mutate func(*entity.Order)) int64 {
	t.Helper()
	order := &entity.Order{
		UserID:    "u1",
		CreatedAt: time.Now().UTC(),
		Status:    entity.StatusPaid,
		Total:     price("111.98"),
		ShippingAddress: entity.ShippingAddress{
			Type:     entity.AddressPacketa,
			FullName: "Jana Novak",
			Phone:    "+420777123456",
			Email:    "jana@example.com",
			Packeta: &entity.PacketaAddress{
				PickupPointID: "1234",
				Billing:       entity.StandardAddress{Line1: "Main Street 1", City: "Prague", PostalCode: "11000", Country: "CZ"},
			},
		},
		ShippingMethod:  entity.ShippingPacketa,
		PaymentIntentID: "cs_test_1",
	}
	if mutate != nil {
		mutate(order)
	}
	id, err := orders.CreateOrder(context.Background(), order, []entity.OrderItem{
		{ProductID: 1, ProductName: "Widget", ProductPrice: price("49.99"), Quantity: 2},
	})
	require.NoError(t, err)
	return id
}

func TestDispatchUnknownOrder(t *testing.T) {
	svc, _, _ := dispatcherFixture()
	_, err := svc.Dispatch(context.Background(), 42)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestDispatchBuildsPacketRequest(t *testing.T) {
	svc, orders, carrier := dispatcherFixture()
	id := seedPacketaOrder(t, orders, nil)

	result, err := svc.Dispatch(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Z123456789", result.TrackingNumber, "barcode preferred over packet id")
	assert.Equal(t, "987654", result.PacketID)

	require.Len(t, carrier.createReqs, 1)
	req := carrier.createReqs[0]
	assert.Equal(t, PacketNumber(id), req.Number)
	assert.Equal(t, "Jana", req.Name)
	assert.Equal(t, "Novak", req.Surname)
	assert.Equal(t, "+420777123456", req.Phone)
	assert.Equal(t, int64(1234), req.AddressID)
	assert.True(t, req.Value.Equal(price("99.98")), "declared value is the item subtotal")
	assert.True(t, req.COD.IsZero(), "paid order collects nothing on delivery")
	assert.Equal(t, "CZK", req.Currency)
	assert.Equal(t, 1.0, req.WeightKG)

	stored, err := orders.GetOrder(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Z123456789", stored.TrackingNumber)
	assert.Equal(t, entity.StatusProcessing, stored.Status)
	assert.NotEmpty(t, stored.CarrierData)
}

func TestDispatchCashOnDeliveryCollectsTotal(t *testing.T) {
	svc, orders, carrier := dispatcherFixture()
	id := seedPacketaOrder(t, orders, func(o *entity.Order) {
		o.Status = entity.StatusPending
		o.PaymentIntentID = ""
	})

	_, err := svc.Dispatch(context.Background(), id)
	require.NoError(t, err)

	require.Len(t, carrier.createReqs, 1)
	assert.True(t, carrier.createReqs[0].COD.Equal(price("99.98")))
}

func TestDispatchIdempotent(t *testing.T) {
	svc, orders, carrier := dispatcherFixture()
	id := seedPacketaOrder(t, orders, nil)

	first, err := svc.Dispatch(context.Background(), id)
	require.NoError(t, err)

	second, err := svc.Dispatch(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, first.TrackingNumber, second.TrackingNumber)
	assert.Equal(t, first.PacketID, second.PacketID)
	assert.Len(t, carrier.createReqs, 1, "carrier called exactly once")
}

func TestDispatchSingleWordNameRejected(t *testing.T) {
	svc, orders, carrier := dispatcherFixture()
	id := seedPacketaOrder(t, orders, func(o *entity.Order) {
		o.ShippingAddress.FullName = "Prince"
	})

	_, err := svc.Dispatch(context.Background(), id)
	require.ErrorIs(t, err, entity.ErrInvalidShipping)
	assert.Empty(t, carrier.createReqs)

	stored, err := orders.GetOrder(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPaid, stored.Status, "status unchanged")
	assert.True(t, strings.Contains(stored.Notes, "dispatch rejected"), "notes = %q", stored.Notes)
}

func TestDispatchNonPacketaOrderRejected(t *testing.T) {
	svc, orders, _ := dispatcherFixture()
	id := seedPacketaOrder(t, orders, func(o *entity.Order) {
		o.ShippingAddress = entity.ShippingAddress{
			Type:     entity.AddressStandard,
			FullName: "Jana Novak",
			Phone:    "+420777123456",
			Standard: &entity.StandardAddress{Line1: "Main Street 1", City: "Prague", PostalCode: "11000"},
		}
	})

	_, err := svc.Dispatch(context.Background(), id)
	assert.ErrorIs(t, err, entity.ErrInvalidShipping)
}

func TestDispatchNonNumericPickupPoint(t *testing.T) {
	svc, orders, _ := dispatcherFixture()
	id := seedPacketaOrder(t, orders, func(o *entity.Order) {
		o.ShippingAddress.Packeta.PickupPointID = "zbox-praha"
	})

	_, err := svc.Dispatch(context.Background(), id)
	assert.ErrorIs(t, err, entity.ErrInvalidShipping)
}

func TestDispatchMissingPhone(t *testing.T) {
	svc, orders, _ := dispatcherFixture()
	id := seedPacketaOrder(t, orders, func(o *entity.Order) {
		o.ShippingAddress.Phone = ""
	})

	_, err := svc.Dispatch(context.Background(), id)
	assert.ErrorIs(t, err, entity.ErrInvalidShipping)
}

func TestDispatchCarrierFailureAnnotatesButKeepsStatus(t *testing.T) {
	svc, orders, carrier := dispatcherFixture()
	carrier.createErr = errors.New("carrier 500")
	id := seedPacketaOrder(t, orders, nil)

	_, err := svc.Dispatch(context.Background(), id)
	require.Error(t, err)

	stored, err := orders.GetOrder(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPaid, stored.Status, "a paid order never unwinds on dispatch failure")
	assert.Empty(t, stored.TrackingNumber)
	assert.True(t, strings.Contains(stored.Notes, "dispatch failed"), "notes = %q", stored.Notes)
}

func TestDispatchWithoutCarrier(t *testing.T) {
	svc, orders, _ := dispatcherFixture()
	svc.carrier = nil
	id := seedPacketaOrder(t, orders, nil)

	_, err := svc.Dispatch(context.Background(), id)
	assert.ErrorIs(t, err, entity.ErrServiceUnavailable)
}

func TestDispatchFallsBackToPacketIDWhenNoBarcode(t *testing.T) {
	svc, orders, carrier := dispatcherFixture()
	carrier.result = ports.PacketResult{PacketID: "987654"}
	id := seedPacketaOrder(t, orders, nil)

	result, err := svc.Dispatch(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "987654", result.TrackingNumber)
}
