// Package repositories owns all document-store access. Handlers and jobs
// depend on the Store interface; MongoStore is the production
// implementation.
package repositories

import (
	"context"
	"errors"

	"github.com/marketlane/storefront/app/models"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("repositories: not found")

// Store is the persistence surface the handlers and jobs are written
// against.
type Store interface {
	// CreateOrder inserts the order and returns its assigned ID.
	// CreatedAt/UpdatedAt are server-assigned by the implementation.
	CreateOrder(ctx context.Context, order *models.Order) (string, error)

	// DecrementStock applies one stock decrement per item as a single
	// atomic batch: either every product is adjusted or none is. It is
	// deliberately not coupled to CreateOrder.
	DecrementStock(ctx context.Context, items []models.OrderItem) error

	// DeleteCart removes the user's cart document. Deleting an absent
	// cart is not an error.
	DeleteCart(ctx context.Context, userID string) error

	GetUser(ctx context.Context, uid string) (*models.User, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)

	// ListOrders returns every order document. Unbounded; the analytics
	// handler is its only caller.
	ListOrders(ctx context.Context) ([]models.Order, error)
	CountProducts(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context) (int64, error)

	UpsertSearchEntry(ctx context.Context, entry *models.SearchIndexEntry) error
	DeleteSearchEntry(ctx context.Context, productID string) error
}
