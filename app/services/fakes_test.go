package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/marketlane/storefront/app/models"
	"github.com/marketlane/storefront/app/repositories"
	"github.com/marketlane/storefront/app/services"
)

// fakeStore is an in-memory repositories.Store recording every write.
type fakeStore struct {
	mu sync.Mutex

	orders   []models.Order
	products map[string]*models.Product
	carts    map[string][]models.OrderItem
	users    map[string]*models.User
	index    map[string]*models.SearchIndexEntry

	listOrderCalls int
	countCalls     int

	failDecrement bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: map[string]*models.Product{},
		carts:    map[string][]models.OrderItem{},
		users:    map[string]*models.User{},
		index:    map[string]*models.SearchIndexEntry{},
	}
}

func (f *fakeStore) CreateOrder(_ context.Context, order *models.Order) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	f.orders = append(f.orders, *order)
	return fmt.Sprintf("order-%d", len(f.orders)), nil
}

func (f *fakeStore) DecrementStock(_ context.Context, items []models.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDecrement {
		return errors.New("decrement failed")
	}
	for _, item := range items {
		if p, ok := f.products[item.ProductID]; ok {
			p.Stock -= item.Quantity
		}
	}
	return nil
}

func (f *fakeStore) DeleteCart(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts, userID)
	return nil
}

func (f *fakeStore) GetUser(_ context.Context, uid string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[uid]; ok {
		return u, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeStore) GetProduct(_ context.Context, id string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeStore) ListOrders(_ context.Context) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listOrderCalls++
	out := make([]models.Order, len(f.orders))
	copy(out, f.orders)
	return out, nil
}

func (f *fakeStore) CountProducts(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countCalls++
	return int64(len(f.products)), nil
}

func (f *fakeStore) CountUsers(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countCalls++
	return int64(len(f.users)), nil
}

func (f *fakeStore) UpsertSearchEntry(_ context.Context, entry *models.SearchIndexEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.index[entry.ProductID] = entry
	return nil
}

func (f *fakeStore) DeleteSearchEntry(_ context.Context, productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.index, productID)
	return nil
}

// fakeProvider returns canned payment intents by ID.
type fakeProvider struct {
	intents map[string]*services.PaymentIntent

	createErr error
	created   []int64
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{intents: map[string]*services.PaymentIntent{}}
}

func (f *fakeProvider) CreateIntent(_ context.Context, amountMinor int64, currency, orderID string) (*services.PaymentIntent, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, amountMinor)
	return &services.PaymentIntent{
		ID:           fmt.Sprintf("pi_%d", len(f.created)),
		ClientSecret: "cs_test_secret",
		Status:       "requires_payment_method",
	}, nil
}

func (f *fakeProvider) RetrieveIntent(_ context.Context, id string) (*services.PaymentIntent, error) {
	if pi, ok := f.intents[id]; ok {
		return pi, nil
	}
	return nil, errors.New("no such payment intent")
}
