package controllers

import (
	"net/http"

	"github.com/marketlane/storefront/app/services"
	"github.com/marketlane/storefront/pkg/logger"
	"github.com/marketlane/storefront/pkg/response"
)

type AnalyticsController struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsController(analytics *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analytics: analytics}
}

// Summary handles GET /analytics. Authentication and the analytics:read
// permission check run in middleware before this handler, so the collection
// scans never execute for unauthorized callers.
func (c *AnalyticsController) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := c.analytics.Summary(r.Context())
	if err != nil {
		logger.WithCtx(r.Context()).Error("analytics summary", "error", err)
		response.Internal(w, err)
		return
	}

	response.JSON(w, summary)
}
