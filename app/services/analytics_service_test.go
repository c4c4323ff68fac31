package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketlane/storefront/app/models"
	"github.com/marketlane/storefront/app/services"
)

func TestSummaryAggregates(t *testing.T) {
	store := newFakeStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		store.orders = append(store.orders, models.Order{
			Total:     100,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	store.products["p1"] = &models.Product{ID: "p1"}
	store.users["u1"] = &models.User{UID: "u1"}
	store.users["u2"] = &models.User{UID: "u2"}

	svc := services.NewAnalyticsService(store, nil, 0)
	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalOrders)
	assert.Equal(t, int64(1), summary.TotalProducts)
	assert.Equal(t, int64(2), summary.TotalUsers)
	assert.Equal(t, 300.0, summary.TotalRevenue)
	assert.Len(t, summary.RecentOrders, 3)
}

func TestSummaryRecentOrdersSortedAndTruncated(t *testing.T) {
	store := newFakeStore()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// Insert out of order so sorting is actually exercised.
	for _, offset := range []int{7, 2, 11, 0, 5, 13, 1, 9, 4, 12, 3, 8, 6, 10} {
		store.orders = append(store.orders, models.Order{
			UserID:    fmt.Sprintf("u-%d", offset),
			CreatedAt: base.Add(time.Duration(offset) * time.Minute),
		})
	}

	svc := services.NewAnalyticsService(store, nil, 0)
	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.RecentOrders, 10)
	for i := 1; i < len(summary.RecentOrders); i++ {
		prev := summary.RecentOrders[i-1].CreatedAt
		cur := summary.RecentOrders[i].CreatedAt
		assert.False(t, cur.After(prev), "orders must be newest-first")
	}
	assert.Equal(t, "u-13", summary.RecentOrders[0].UserID)
}

func TestSummaryFewerThanTenOrders(t *testing.T) {
	store := newFakeStore()
	store.orders = append(store.orders, models.Order{CreatedAt: time.Now()})

	svc := services.NewAnalyticsService(store, nil, 0)
	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Len(t, summary.RecentOrders, 1)
}
