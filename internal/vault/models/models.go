package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemType is the media type of a vault item.
type ItemType string

const (
	TypeAudio ItemType = "audio"
	TypeVideo ItemType = "video"
	TypeText  ItemType = "text"
)

func (t ItemType) Valid() bool {
	return t == TypeAudio || t == TypeVideo || t == TypeText
}

// Trigger decides when a vault item is released.
type Trigger string

const (
	// TriggerFixedDate releases the item on a chosen calendar date.
	TriggerFixedDate Trigger = "fixed_date"
	// TriggerInactivity releases the item after the owner stops signing in.
	TriggerInactivity Trigger = "inactivity"
)

func (t Trigger) Valid() bool {
	return t == TriggerFixedDate || t == TriggerInactivity
}

// Item is the metadata row for one vault entry. File contents live in
// object storage at StoragePath, encrypted client-side; the server never
// holds the PIN.
type Item struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	Type         ItemType   `json:"type"`
	StoragePath  string     `json:"storage_path"`
	Trigger      Trigger    `json:"trigger"`
	TriggerValue *time.Time `json:"trigger_value,omitempty"` // fixed_date only
	Delivered    bool       `json:"delivered"`
	CreatedAt    time.Time  `json:"created_at"`
}

// UploadRequest creates a vault item. Content is base64; when PIN is set the
// server encrypts before storing, otherwise the payload is stored as sent
// (already encrypted by the client).
type UploadRequest struct {
	Type         string `json:"type"`
	Trigger      string `json:"trigger"`
	TriggerValue string `json:"trigger_value,omitempty"` // YYYY-MM-DD
	FileName     string `json:"file_name"`
	Content      string `json:"content"`
	PIN          string `json:"pin,omitempty"`
}

// UploadResponse confirms a stored vault item.
type UploadResponse struct {
	VaultID     uuid.UUID `json:"vault_id"`
	StoragePath string    `json:"storage_path"`
	FileName    string    `json:"file_name"`
	FileSize    int       `json:"file_size"`
}

// DownloadResponse carries a time-limited signed link to the stored object.
type DownloadResponse struct {
	DownloadURL string   `json:"download_url"`
	FileName    string   `json:"file_name"`
	Type        ItemType `json:"type"`
}
