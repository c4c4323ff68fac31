package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/marketlane/storefront/app/models"
	"github.com/marketlane/storefront/app/repositories"
	"github.com/marketlane/storefront/pkg/logger"
)

// ErrPaymentIncomplete is returned when the referenced payment intent has
// not succeeded. The HTTP layer maps it to a 400.
var ErrPaymentIncomplete = errors.New("payment not completed")

// OrderInput is the process-order request payload.
type OrderInput struct {
	UserID          string                 `json:"userId"`
	Items           []models.OrderItem     `json:"items"`
	Total           float64                `json:"total"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentIntentID string                 `json:"paymentIntentId"`
}

// OrderService turns a paid payment intent into a confirmed order.
type OrderService struct {
	store    repositories.Store
	payments PaymentProvider
}

func NewOrderService(store repositories.Store, payments PaymentProvider) *OrderService {
	return &OrderService{store: store, payments: payments}
}

// Process runs the order flow strictly in sequence with no compensation on
// partial failure: verify payment, insert the order, decrement stock as one
// atomic batch, delete the cart. The payment check happens before any
// write, so a rejected payment leaves the store untouched. There is no
// idempotency key: replaying the same paymentIntentId creates a second
// order and decrements stock again.
func (s *OrderService) Process(ctx context.Context, in OrderInput) (string, error) {
	intent, err := s.payments.RetrieveIntent(ctx, in.PaymentIntentID)
	if err != nil {
		return "", fmt.Errorf("orders: retrieve intent: %w", err)
	}
	if intent.Status != PaymentStatusSucceeded {
		return "", ErrPaymentIncomplete
	}

	order := &models.Order{
		UserID:          in.UserID,
		Items:           in.Items,
		Total:           in.Total,
		ShippingAddress: in.ShippingAddress,
		PaymentIntentID: in.PaymentIntentID,
		Status:          models.OrderStatusConfirmed,
	}

	orderID, err := s.store.CreateOrder(ctx, order)
	if err != nil {
		return "", fmt.Errorf("orders: create: %w", err)
	}

	// A failure past this point leaves the confirmed order standing with
	// no stock adjustment; reconciliation is out of scope here.
	if err := s.store.DecrementStock(ctx, in.Items); err != nil {
		return "", fmt.Errorf("orders: decrement stock: %w", err)
	}

	if err := s.store.DeleteCart(ctx, in.UserID); err != nil {
		return "", fmt.Errorf("orders: delete cart: %w", err)
	}

	logger.WithCtx(ctx).Info("order confirmed",
		"order_id", orderID,
		"user_id", in.UserID,
		"items", len(in.Items),
	)
	return orderID, nil
}
