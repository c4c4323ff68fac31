package routes

import (
	"github.com/marketlane/storefront/app/controllers"
	"github.com/marketlane/storefront/app/services"
	"github.com/marketlane/storefront/pkg/middleware"
	"github.com/marketlane/storefront/pkg/rbac"
	"github.com/marketlane/storefront/pkg/router"
)

// Deps carries the constructed dependencies the handlers need. Everything
// is wired once at boot and passed in; handlers hold no ambient state.
type Deps struct {
	Payments  services.PaymentProvider
	Orders    *services.OrderService
	Analytics *services.AnalyticsService
	Auth      *rbac.Authorizer
}

// RegisterAPI mounts the storefront endpoints.
func RegisterAPI(r *router.Router, deps Deps) {
	payment := controllers.NewPaymentController(deps.Payments)
	order := controllers.NewOrderController(deps.Orders)
	analytics := controllers.NewAnalyticsController(deps.Analytics)

	r.Post("/create-payment-intent", "payments.intent", payment.CreateIntent)
	r.Post("/process-order", "orders.process", order.Process)

	r.Get("/analytics", "admin.analytics", analytics.Summary,
		middleware.Authenticate,
		deps.Auth.RequirePermission(rbac.PermAnalyticsRead),
	)
}
