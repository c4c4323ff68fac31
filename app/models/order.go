package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. Orders are created confirmed and never transition
// inside this service; fulfilment states belong to downstream systems.
const (
	OrderStatusConfirmed = "confirmed"
)

// OrderItem is a single line of an order.
type OrderItem struct {
	ProductID string  `bson:"productId" json:"productId"`
	Name      string  `bson:"name,omitempty" json:"name,omitempty"`
	Price     float64 `bson:"price,omitempty" json:"price,omitempty"`
	Quantity  int     `bson:"quantity" json:"quantity"`
}

// ShippingAddress is stored verbatim on the order.
type ShippingAddress struct {
	Line1      string `bson:"line1,omitempty" json:"line1,omitempty"`
	Line2      string `bson:"line2,omitempty" json:"line2,omitempty"`
	City       string `bson:"city,omitempty" json:"city,omitempty"`
	State      string `bson:"state,omitempty" json:"state,omitempty"`
	PostalCode string `bson:"postalCode,omitempty" json:"postalCode,omitempty"`
	Country    string `bson:"country,omitempty" json:"country,omitempty"`
}

// Order is a confirmed purchase. Immutable after creation in this service.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          string             `bson:"userId" json:"userId"`
	Items           []OrderItem        `bson:"items" json:"items"`
	Total           float64            `bson:"total" json:"total"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	PaymentIntentID string             `bson:"paymentIntentId" json:"paymentIntentId"`
	Status          string             `bson:"status" json:"status"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Cart holds a user's pending items, keyed by the user's ID.
// It is deleted wholesale when an order is placed.
type Cart struct {
	UserID string      `bson:"_id" json:"userId"`
	Items  []OrderItem `bson:"items" json:"items"`
}
