// Package jobs contains the queue jobs behind the document-change
// triggers. Delivery is at-least-once, so every job tolerates replays.
package jobs

import (
	"context"
	"fmt"

	"github.com/marketlane/storefront/app/repositories"
	"github.com/marketlane/storefront/pkg/logger"
	"github.com/marketlane/storefront/pkg/mail"
)

// JobOrderConfirmation is the queue type name for order confirmations.
const JobOrderConfirmation = "order.confirmation"

// OrderConfirmation fires once per newly created order. It looks up the
// buyer and records the email-send intent. When SMTP is configured the
// confirmation is actually sent; otherwise the intent is only logged.
//
// A missing user record is an error so the queue retries: order creation
// and user provisioning can race.
type OrderConfirmation struct {
	OrderID string `json:"orderId"`
	UserID  string `json:"userId"`

	store repositories.Store
}

// NewOrderConfirmation returns a factory-constructed job bound to store.
// Payload fields are filled by the queue from the serialized envelope.
func NewOrderConfirmation(store repositories.Store) *OrderConfirmation {
	return &OrderConfirmation{store: store}
}

func (j *OrderConfirmation) Handle(ctx context.Context) error {
	user, err := j.store.GetUser(ctx, j.UserID)
	if err != nil {
		return fmt.Errorf("jobs: order confirmation %s: %w", j.OrderID, err)
	}

	logger.Info("order confirmation email queued",
		"order_id", j.OrderID,
		"email", user.Email,
	)

	if !mail.Configured() {
		return nil
	}

	err = mail.To(user.Email).
		Subject("Your order is confirmed").
		Body(fmt.Sprintf("<p>Thanks for your purchase! Order <b>%s</b> is confirmed.</p>", j.OrderID)).
		Send()
	if err != nil {
		return fmt.Errorf("jobs: send confirmation %s: %w", j.OrderID, err)
	}
	return nil
}
