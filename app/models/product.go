package models

import "time"

// Product is a catalogue entry. Stock is mutated by order processing;
// everything else is owned by external product-management flows.
type Product struct {
	ID          string   `bson:"_id" json:"id"`
	Name        string   `bson:"name" json:"name"`
	Category    string   `bson:"category,omitempty" json:"category,omitempty"`
	Description string   `bson:"description,omitempty" json:"description,omitempty"`
	Tags        []string `bson:"tags,omitempty" json:"tags,omitempty"`
	Price       float64  `bson:"price" json:"price"`
	Images      []string `bson:"images,omitempty" json:"images,omitempty"`
	Stock       int      `bson:"stock" json:"stock"`
}

// SearchIndexEntry is the denormalized search document derived from a
// product. Keyed by the product ID; deleted when the product is deleted.
type SearchIndexEntry struct {
	ProductID   string    `bson:"_id" json:"productId"`
	Name        string    `bson:"name" json:"name"`
	Category    string    `bson:"category,omitempty" json:"category,omitempty"`
	Price       float64   `bson:"price" json:"price"`
	Image       string    `bson:"image,omitempty" json:"image,omitempty"`
	SearchTerms []string  `bson:"searchTerms" json:"searchTerms"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}
