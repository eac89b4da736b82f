package models

import (
	"time"
)

// Role defines the two account types in the marketplace.
type Role string

const (
	RoleViewer     Role = "viewer"     // Browses ads and creates bookings
	RoleAdvertiser Role = "advertiser" // Owns ads and approves/rejects bookings
)

// IsValid reports whether the role is one of the known account types.
func (r Role) IsValid() bool {
	return r == RoleViewer || r == RoleAdvertiser
}

// User represents an account in the system. The same collection holds both
// viewers and advertisers; the Role field is carried in the JWT and gates routes.
type User struct {
	Base         `bson:",inline"`
	FirstName    string    `bson:"first_name" json:"firstName"`
	LastName     string    `bson:"last_name" json:"lastName"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password" json:"-"` // Store hash, not plaintext
	Role         Role      `bson:"role" json:"role"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// ClientSummary is the reduced user projection joined onto booking views
// (name and contact only, never credentials).
type ClientSummary struct {
	ID        string `bson:"-" json:"id"`
	FirstName string `bson:"first_name" json:"firstName"`
	Email     string `bson:"email" json:"email"`
}
