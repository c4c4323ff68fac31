package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/marketlane/storefront/app/models"
	"github.com/marketlane/storefront/app/repositories"
	"github.com/marketlane/storefront/pkg/cache"
)

const recentOrderLimit = 10

const analyticsCacheKey = "storefront:analytics:summary"

// AnalyticsSummary is the admin dashboard payload.
type AnalyticsSummary struct {
	TotalOrders   int            `json:"totalOrders"`
	TotalProducts int64          `json:"totalProducts"`
	TotalUsers    int64          `json:"totalUsers"`
	TotalRevenue  float64        `json:"totalRevenue"`
	RecentOrders  []models.Order `json:"recentOrders"`
}

// AnalyticsService aggregates store-wide counts and revenue. The order scan
// is unbounded; the short-TTL cache in front of it is the only mitigation.
type AnalyticsService struct {
	store    repositories.Store
	cache    *cache.Cache
	cacheTTL time.Duration
}

// NewAnalyticsService builds the service. cache may be nil to disable
// caching (tests, degraded boot).
func NewAnalyticsService(store repositories.Store, c *cache.Cache, ttl time.Duration) *AnalyticsService {
	return &AnalyticsService{store: store, cache: c, cacheTTL: ttl}
}

// Summary computes total counts, the revenue sum, and the ten most recent
// orders sorted by creation time descending.
func (s *AnalyticsService) Summary(ctx context.Context) (*AnalyticsSummary, error) {
	var cached AnalyticsSummary
	if s.cacheTTL > 0 && s.cache.Get(ctx, analyticsCacheKey, &cached) {
		return &cached, nil
	}

	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: orders: %w", err)
	}

	products, err := s.store.CountProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: products: %w", err)
	}

	users, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: users: %w", err)
	}

	var revenue float64
	for _, o := range orders {
		revenue += o.Total
	}

	summary := &AnalyticsSummary{
		TotalOrders:   len(orders),
		TotalProducts: products,
		TotalUsers:    users,
		TotalRevenue:  revenue,
		RecentOrders:  recentOrders(orders, recentOrderLimit),
	}

	if s.cacheTTL > 0 {
		_ = s.cache.Set(ctx, analyticsCacheKey, summary, s.cacheTTL)
	}
	return summary, nil
}

// recentOrders returns up to limit orders sorted by createdAt descending.
func recentOrders(orders []models.Order, limit int) []models.Order {
	sorted := make([]models.Order, len(orders))
	copy(sorted, orders)

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
