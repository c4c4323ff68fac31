// Package controllers holds the HTTP handlers. Controllers decode the
// request, delegate to a service, and write the response shape the
// storefront frontends expect.
package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/marketlane/storefront/app/services"
	"github.com/marketlane/storefront/pkg/logger"
	"github.com/marketlane/storefront/pkg/metrics"
	"github.com/marketlane/storefront/pkg/response"
)

type PaymentController struct {
	payments services.PaymentProvider
}

func NewPaymentController(payments services.PaymentProvider) *PaymentController {
	return &PaymentController{payments: payments}
}

// CreateIntent handles POST /create-payment-intent. The amount arrives in
// decimal currency units and is converted to minor units; currency defaults
// to "usd". Amounts are passed to the provider unvalidated; it rejects
// what it will not charge.
func (c *PaymentController) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
		OrderID  string  `json:"orderId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Internal(w, err)
		return
	}
	if body.Currency == "" {
		body.Currency = "usd"
	}

	intent, err := c.payments.CreateIntent(r.Context(), services.MinorUnits(body.Amount), body.Currency, body.OrderID)
	if err != nil {
		metrics.PaymentIntentsCreated.WithLabelValues("error").Inc()
		logger.WithCtx(r.Context()).Error("create payment intent", "error", err)
		response.Internal(w, err)
		return
	}

	metrics.PaymentIntentsCreated.WithLabelValues("ok").Inc()
	response.JSON(w, map[string]string{"clientSecret": intent.ClientSecret})
}
