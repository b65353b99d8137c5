package models

import (
	"time"

	"github.com/google/uuid"
)

// Tier is the product tier attached to a subscription row.
type Tier string

const (
	TierFree Tier = "Free"
	TierPlus Tier = "Plus"
	TierPro  Tier = "Pro"
)

// Status is the derived state returned to clients. It is computed from the
// newest subscription row at read time, never stored.
type Status string

const (
	StatusFree      Status = "free"
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// Subscription is one billing agreement for a user. PayPal is the only
// platform today; the column exists so a second processor does not need a
// migration.
type Subscription struct {
	ID       uuid.UUID  `json:"id"`
	UserID   uuid.UUID  `json:"user_id"`
	PayPalID *string    `json:"paypal_id,omitempty"`
	Tier     Tier       `json:"tier"`
	RenewAt  *time.Time `json:"renew_at,omitempty"`
	Platform string     `json:"platform"`
	IsActive bool       `json:"is_active"`
}

// StatusResponse is the wire form of a status lookup.
type StatusResponse struct {
	Status   Status     `json:"status"`
	Tier     Tier       `json:"tier"`
	IsActive bool       `json:"is_active"`
	RenewAt  *time.Time `json:"renew_at,omitempty"`
	Platform *string    `json:"platform,omitempty"`
}
