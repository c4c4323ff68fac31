// Package services holds the orchestration logic between the HTTP layer,
// the payments provider, and the document store.
package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// PaymentStatusSucceeded is the provider status required before an order is
// accepted.
const PaymentStatusSucceeded = "succeeded"

// PaymentIntent is the provider-side record of a payment attempt.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
}

// PaymentProvider is the slice of the payments API this service consumes.
type PaymentProvider interface {
	// CreateIntent requests a new payment intent for amountMinor in the
	// given currency, tagging it with the order ID.
	CreateIntent(ctx context.Context, amountMinor int64, currency, orderID string) (*PaymentIntent, error)

	// RetrieveIntent fetches an intent by its provider ID.
	RetrieveIntent(ctx context.Context, id string) (*PaymentIntent, error)
}

// MinorUnits converts a decimal currency amount to provider minor units
// (cents), rounding half away from zero: 19.995 → 2000. Decimal arithmetic
// avoids the float64 representation drift that would round 19.995 down.
func MinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).
		Mul(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// StripeProvider implements PaymentProvider over the Stripe API.
type StripeProvider struct {
	api *client.API
}

// NewStripeProvider builds a provider with the given secret key.
func NewStripeProvider(secretKey string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProvider{api: api}
}

func (p *StripeProvider) CreateIntent(ctx context.Context, amountMinor int64, currency, orderID string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(currency),
	}
	params.Context = ctx
	params.AddMetadata("orderId", orderID)

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, err
	}
	return fromStripe(pi), nil
}

func (p *StripeProvider) RetrieveIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := p.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, err
	}
	return fromStripe(pi), nil
}

func fromStripe(pi *stripe.PaymentIntent) *PaymentIntent {
	return &PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}
}
