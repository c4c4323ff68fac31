package models

// Roles known to the authorization layer.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// User mirrors the identity provider's record. Read-only in this service;
// the role gates access to the admin surface.
type User struct {
	UID   string `bson:"_id" json:"uid"`
	Email string `bson:"email" json:"email"`
	Role  string `bson:"role" json:"role"`
}
