package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quanb-duy/custom-ecommerce-website/internal/core/domain/entity"
)

func cartFixture() (*CartService, *fakeProducts, *fakeCarts) {
	products := newFakeProducts(
		&entity.Product{ID: 1, Name: "Widget", Price: price("49.99"), Stock: 5},
		&entity.Product{ID: 2, Name: "Gadget", Price: price("9.50"), Stock: 0},
	)
	carts := newFakeCarts()
	return NewCartService(carts, products), products, carts
}

func TestAddItemRequiresAuth(t *testing.T) {
	svc, _, _ := cartFixture()
	_, _, err := svc.AddItem(context.Background(), "", 1, 1)
	assert.ErrorIs(t, err, entity.ErrAuthRequired)
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	svc, _, _ := cartFixture()
	_, _, err := svc.AddItem(context.Background(), "u1", 1, 0)
	assert.ErrorIs(t, err, entity.ErrInvalidRequest)
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc, _, _ := cartFixture()
	_, _, err := svc.AddItem(context.Background(), "u1", 99, 1)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestAddItemClampsToStock(t *testing.T) {
	svc, _, _ := cartFixture()

	view, limited, err := svc.AddItem(context.Background(), "u1", 1, 8)
	require.NoError(t, err)
	assert.True(t, limited)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 5, view.Lines[0].Quantity)
}

func TestAddItemAccumulatesAndClamps(t *testing.T) {
	svc, _, _ := cartFixture()
	ctx := context.Background()

	_, limited, err := svc.AddItem(ctx, "u1", 1, 3)
	require.NoError(t, err)
	assert.False(t, limited)

	// 3 already carted + 3 more = 6 > stock 5: clamp, don't fail.
	view, limited, err := svc.AddItem(ctx, "u1", 1, 3)
	require.NoError(t, err)
	assert.True(t, limited)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 5, view.Lines[0].Quantity)
}

func TestAddItemOutOfStockIsConditionNotError(t *testing.T) {
	svc, _, _ := cartFixture()

	view, limited, err := svc.AddItem(context.Background(), "u1", 2, 1)
	require.NoError(t, err)
	assert.True(t, limited)
	assert.True(t, view.Empty())
}

func TestAddItemRemovesStaleRowWhenStockGone(t *testing.T) {
	svc, products, carts := cartFixture()
	ctx := context.Background()
	itemID := carts.seed("u1", 1, 3)

	// Stock sold out elsewhere after the item was carted; the next AddItem
	// must not leave the stale quantity 3 behind.
	products.byID[1].Stock = 0

	view, limited, err := svc.AddItem(ctx, "u1", 1, 1)
	require.NoError(t, err)
	assert.True(t, limited)
	assert.True(t, view.Empty())

	_, err = carts.GetItem(ctx, itemID)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestUpdateQuantityZeroRemoves(t *testing.T) {
	svc, _, carts := cartFixture()
	itemID := carts.seed("u1", 1, 2)

	view, limited, err := svc.UpdateQuantity(context.Background(), "u1", itemID, 0)
	require.NoError(t, err)
	assert.False(t, limited)
	assert.True(t, view.Empty())
}

func TestUpdateQuantityClamps(t *testing.T) {
	svc, _, carts := cartFixture()
	itemID := carts.seed("u1", 1, 2)

	view, limited, err := svc.UpdateQuantity(context.Background(), "u1", itemID, 100)
	require.NoError(t, err)
	assert.True(t, limited)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 5, view.Lines[0].Quantity)
}

func TestCartHidesOtherUsersItems(t *testing.T) {
	svc, _, carts := cartFixture()
	itemID := carts.seed("alice", 1, 2)

	// NotFound, not Forbidden: the item's existence must not leak.
	_, _, err := svc.UpdateQuantity(context.Background(), "bob", itemID, 3)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = svc.RemoveItem(context.Background(), "bob", itemID)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestViewDropsLinesForMissingProducts(t *testing.T) {
	svc, products, carts := cartFixture()
	carts.seed("u1", 1, 2)
	carts.seed("u1", 2, 1)
	delete(products.byID, 2)

	view, err := svc.View(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, int64(1), view.Lines[0].ProductID)
}

func TestViewDerivesTotals(t *testing.T) {
	svc, _, carts := cartFixture()
	carts.seed("u1", 1, 2)

	view, err := svc.View(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, view.Subtotal().Equal(price("99.98")))
	assert.Equal(t, 2, view.ItemCount())
}
