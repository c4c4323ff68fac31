package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/marketlane/storefront/app/services"
	"github.com/marketlane/storefront/pkg/logger"
	"github.com/marketlane/storefront/pkg/metrics"
	"github.com/marketlane/storefront/pkg/response"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// Process handles POST /process-order.
func (c *OrderController) Process(w http.ResponseWriter, r *http.Request) {
	var in services.OrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Internal(w, err)
		return
	}

	orderID, err := c.orders.Process(r.Context(), in)
	switch {
	case errors.Is(err, services.ErrPaymentIncomplete):
		metrics.OrdersProcessed.WithLabelValues("payment_incomplete").Inc()
		response.BadRequest(w, services.ErrPaymentIncomplete.Error())
		return
	case err != nil:
		metrics.OrdersProcessed.WithLabelValues("error").Inc()
		logger.WithCtx(r.Context()).Error("process order", "error", err)
		response.Internal(w, err)
		return
	}

	metrics.OrdersProcessed.WithLabelValues("confirmed").Inc()
	response.JSON(w, map[string]string{
		"orderId": orderID,
		"status":  "success",
	})
}
