package models

import (
	"time"

	"github.com/google/uuid"

	predModels "moreminutes/internal/prediction/models"
	subModels "moreminutes/internal/subscription/models"
	vaultModels "moreminutes/internal/vault/models"
)

// User mirrors a Supabase auth user into the app database so profile data
// and foreign keys live next to the rest of the domain rows.
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName *string   `json:"display_name,omitempty"`
	DOB         *string   `json:"dob,omitempty"` // YYYY-MM-DD
	Sex         *string   `json:"sex,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}

// SyncRequest upserts a user row from the identity provider's record.
type SyncRequest struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	DisplayName *string `json:"display_name,omitempty"`
	DOB         *string `json:"dob,omitempty"`
	Sex         *string `json:"sex,omitempty"`
}

// UpdateProfileRequest carries a partial profile update. Nil fields are left
// untouched.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	DOB         *string `json:"dob,omitempty"`
	Sex         *string `json:"sex,omitempty"`
}

// Export is the full account takeout: everything the service stores about
// one user. Vault file contents are excluded; only metadata ships.
type Export struct {
	User          *User                          `json:"user"`
	Predictions   []*predModels.PredictionRecord `json:"predictions"`
	VaultItems    []*vaultModels.Item            `json:"vault_items"`
	Subscriptions []*subModels.Subscription      `json:"subscriptions"`
	ExportedAt    time.Time                      `json:"exported_at"`
	Version       string                         `json:"version"`
}
