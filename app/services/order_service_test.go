package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketlane/storefront/app/models"
	"github.com/marketlane/storefront/app/services"
)

func orderInput() services.OrderInput {
	return services.OrderInput{
		UserID: "user-1",
		Items: []models.OrderItem{
			{ProductID: "prod-a", Quantity: 2},
			{ProductID: "prod-b", Quantity: 1},
		},
		Total:           119.97,
		PaymentIntentID: "pi_ok",
	}
}

func setupOrderTest() (*fakeStore, *fakeProvider, *services.OrderService) {
	store := newFakeStore()
	store.products["prod-a"] = &models.Product{ID: "prod-a", Stock: 10}
	store.products["prod-b"] = &models.Product{ID: "prod-b", Stock: 5}
	store.carts["user-1"] = []models.OrderItem{{ProductID: "prod-a", Quantity: 2}}

	provider := newFakeProvider()
	provider.intents["pi_ok"] = &services.PaymentIntent{ID: "pi_ok", Status: services.PaymentStatusSucceeded}
	provider.intents["pi_pending"] = &services.PaymentIntent{ID: "pi_pending", Status: "requires_payment_method"}

	return store, provider, services.NewOrderService(store, provider)
}

func TestProcessRejectsUnpaidIntentWithoutWrites(t *testing.T) {
	store, _, svc := setupOrderTest()

	in := orderInput()
	in.PaymentIntentID = "pi_pending"

	_, err := svc.Process(context.Background(), in)
	require.ErrorIs(t, err, services.ErrPaymentIncomplete)

	// No order, no stock change, cart untouched.
	assert.Empty(t, store.orders)
	assert.Equal(t, 10, store.products["prod-a"].Stock)
	assert.Equal(t, 5, store.products["prod-b"].Stock)
	assert.Contains(t, store.carts, "user-1")
}

func TestProcessConfirmedOrderEffects(t *testing.T) {
	store, _, svc := setupOrderTest()

	orderID, err := svc.Process(context.Background(), orderInput())
	require.NoError(t, err)
	assert.NotEmpty(t, orderID)

	require.Len(t, store.orders, 1)
	order := store.orders[0]
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	assert.Equal(t, "user-1", order.UserID)
	assert.Equal(t, "pi_ok", order.PaymentIntentID)
	assert.False(t, order.CreatedAt.IsZero())
	assert.False(t, order.UpdatedAt.IsZero())

	assert.Equal(t, 8, store.products["prod-a"].Stock)
	assert.Equal(t, 4, store.products["prod-b"].Stock)
	assert.NotContains(t, store.carts, "user-1")
}

func TestProcessUnknownIntentFails(t *testing.T) {
	store, _, svc := setupOrderTest()

	in := orderInput()
	in.PaymentIntentID = "pi_missing"

	_, err := svc.Process(context.Background(), in)
	require.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrPaymentIncomplete)
	assert.Empty(t, store.orders)
}

// Replaying the same paymentIntentId creates a second order and decrements
// stock again. This pins down the current behavior: there is no idempotency
// key, and a fix must update this test deliberately.
func TestProcessReplayDuplicatesOrder(t *testing.T) {
	store, _, svc := setupOrderTest()

	_, err := svc.Process(context.Background(), orderInput())
	require.NoError(t, err)
	_, err = svc.Process(context.Background(), orderInput())
	require.NoError(t, err)

	assert.Len(t, store.orders, 2)
	assert.Equal(t, 6, store.products["prod-a"].Stock) // decremented twice
	assert.Equal(t, 3, store.products["prod-b"].Stock)
}

// A stock-batch failure leaves the already-created order standing: the
// steps are sequential with no compensation.
func TestProcessStockFailureLeavesOrder(t *testing.T) {
	store, _, svc := setupOrderTest()
	store.failDecrement = true

	_, err := svc.Process(context.Background(), orderInput())
	require.Error(t, err)

	assert.Len(t, store.orders, 1)
	assert.Contains(t, store.carts, "user-1") // cart delete never ran
}
