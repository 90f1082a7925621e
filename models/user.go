package models

import "time"

// Role is the canonical role vocabulary used across the core. Any
// presentation-side relabeling (e.g. host -> "provider") is left to clients.
type Role string

const (
	RoleTourist Role = "tourist"
	RoleHost    Role = "host"
	RoleAdmin   Role = "admin"
)

// Principal is the authenticated caller attached to a request.
type Principal struct {
	ID   string
	Role Role
}

// User represents a tourist, host or admin account.
type User struct {
	ID           string    `bson:"id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	Role         Role      `bson:"role" json:"role"`
	FCMToken     string    `bson:"fcm_token,omitempty" json:"-"`
	// Gateway identities: customer id for tourists (charges), connected
	// account id for hosts (payouts).
	GatewayCustomerID string    `bson:"gateway_customer_id,omitempty" json:"-"`
	GatewayAccountID  string    `bson:"gateway_account_id,omitempty" json:"-"`
	CreatedAt         time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at" json:"updated_at"`
}
