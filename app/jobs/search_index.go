package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/marketlane/storefront/app/models"
	"github.com/marketlane/storefront/app/repositories"
	"github.com/marketlane/storefront/pkg/logger"
)

// JobSearchIndex is the queue type name for search-index maintenance.
const JobSearchIndex = "search.index"

// Search index operations.
const (
	SearchIndexUpsert = "upsert"
	SearchIndexDelete = "delete"
)

// SearchIndex keeps the denormalized search_index collection in step with
// the products collection. Upsert and delete are both idempotent, so
// at-least-once delivery is safe.
type SearchIndex struct {
	ProductID string `json:"productId"`
	Op        string `json:"op"`

	store repositories.Store
}

// NewSearchIndex returns a factory-constructed job bound to store.
func NewSearchIndex(store repositories.Store) *SearchIndex {
	return &SearchIndex{store: store}
}

func (j *SearchIndex) Handle(ctx context.Context) error {
	if j.Op == SearchIndexDelete {
		if err := j.store.DeleteSearchEntry(ctx, j.ProductID); err != nil {
			return fmt.Errorf("jobs: search index delete %s: %w", j.ProductID, err)
		}
		logger.Info("search index entry removed", "product_id", j.ProductID)
		return nil
	}

	product, err := j.store.GetProduct(ctx, j.ProductID)
	if errors.Is(err, repositories.ErrNotFound) {
		// Product deleted between the event and this job; treat as a
		// delete so the index does not keep a ghost entry.
		return j.store.DeleteSearchEntry(ctx, j.ProductID)
	}
	if err != nil {
		return fmt.Errorf("jobs: search index load %s: %w", j.ProductID, err)
	}

	entry := &models.SearchIndexEntry{
		ProductID:   product.ID,
		Name:        product.Name,
		Category:    product.Category,
		Price:       product.Price,
		SearchTerms: SearchTerms(product),
	}
	if len(product.Images) > 0 {
		entry.Image = product.Images[0]
	}

	if err := j.store.UpsertSearchEntry(ctx, entry); err != nil {
		return fmt.Errorf("jobs: search index upsert %s: %w", j.ProductID, err)
	}
	return nil
}

// SearchTerms derives the lower-cased keyword list from a product's name,
// category, description, and tags, dropping empty values.
func SearchTerms(product *models.Product) []string {
	raw := append([]string{product.Name, product.Category, product.Description}, product.Tags...)

	terms := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		terms = append(terms, t)
	}
	return terms
}
