package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"moreminutes/internal/analytics"
	"moreminutes/internal/vault"
	"moreminutes/internal/vault/metrics"
	"moreminutes/internal/vault/models"
	"moreminutes/internal/vault/store"
	dErrors "moreminutes/pkg/domain-errors"
	"moreminutes/pkg/requestcontext"
)

// signedURLValidity bounds how long a download link works.
const signedURLValidity = time.Hour

// Store persists vault metadata.
type Store interface {
	Insert(ctx context.Context, item *models.Item) error
	Get(ctx context.Context, id, userID uuid.UUID) (*models.Item, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Item, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	CountByType(ctx context.Context) (map[models.ItemType]int64, error)
}

// ObjectStorage holds the encrypted payloads.
type ObjectStorage interface {
	Upload(ctx context.Context, storagePath string, content []byte, contentType string) error
	SignedURL(ctx context.Context, storagePath string, validity time.Duration) (string, error)
	Remove(ctx context.Context, storagePath string) error
}

// Service manages vault item metadata and payload placement.
type Service struct {
	store   Store
	storage ObjectStorage
	events  *analytics.Publisher
	metrics *metrics.Metrics
}

func New(store Store, storage ObjectStorage, events *analytics.Publisher, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		storage: storage,
		events:  events,
		metrics: m,
	}
}

// Upload stores a vault payload and its metadata row. When a PIN is sent
// the payload is encrypted server-side; otherwise it is stored as received,
// already sealed by the client.
func (s *Service) Upload(ctx context.Context, userID uuid.UUID, req models.UploadRequest) (*models.UploadResponse, error) {
	itemType := models.ItemType(req.Type)
	if !itemType.Valid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "type must be audio, video or text")
	}
	trigger := models.Trigger(req.Trigger)
	if !trigger.Valid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "trigger must be fixed_date or inactivity")
	}
	if req.FileName == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "file_name is required")
	}

	var triggerValue *time.Time
	if trigger == models.TriggerFixedDate {
		if req.TriggerValue == "" {
			return nil, dErrors.New(dErrors.CodeBadRequest, "trigger_value is required for fixed_date")
		}
		t, err := time.ParseInLocation("2006-01-02", req.TriggerValue, time.UTC)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeBadRequest, "trigger_value must be a YYYY-MM-DD date")
		}
		triggerValue = &t
	}

	content, err := base64.StdEncoding.DecodeString(req.Content)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "content must be base64")
	}
	if len(content) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "content is required")
	}

	if req.PIN != "" {
		if !vault.ValidPIN(req.PIN) {
			return nil, dErrors.New(dErrors.CodeBadRequest, "pin must be 4 to 6 digits")
		}
		content, err = vault.Encrypt(content, req.PIN, userID.String())
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encrypt payload")
		}
	}

	now := requestcontext.Now(ctx)
	fileName := sanitizeFileName(req.FileName)
	storagePath := fmt.Sprintf("vault/%s/%d-%s", userID, now.UnixMilli(), fileName)

	if err := s.storage.Upload(ctx, storagePath, content, contentTypeFor(itemType)); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "storage upload failed")
	}

	item := &models.Item{
		ID:           uuid.New(),
		UserID:       userID,
		Type:         itemType,
		StoragePath:  storagePath,
		Trigger:      trigger,
		TriggerValue: triggerValue,
		Delivered:    false,
		CreatedAt:    now,
	}
	if err := s.store.Insert(ctx, item); err != nil {
		// Best effort: the row failed, do not leave an orphan object.
		_ = s.storage.Remove(ctx, storagePath)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save vault item")
	}

	s.metrics.UploadsTotal.WithLabelValues(string(itemType)).Inc()
	s.events.Publish(ctx, analytics.Event{
		Name:   analytics.EventVaultItemCreated,
		UserID: userID.String(),
		Props:  map[string]any{"type": string(itemType), "trigger": string(trigger)},
	})

	return &models.UploadResponse{
		VaultID:     item.ID,
		StoragePath: storagePath,
		FileName:    fileName,
		FileSize:    len(content),
	}, nil
}

// List returns the user's vault items, metadata only.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*models.Item, error) {
	items, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list vault items")
	}
	return items, nil
}

// Download issues a time-limited signed link to the stored payload.
func (s *Service) Download(ctx context.Context, userID, itemID uuid.UUID) (*models.DownloadResponse, error) {
	item, err := s.store.Get(ctx, itemID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "vault item not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load vault item")
	}

	url, err := s.storage.SignedURL(ctx, item.StoragePath, signedURLValidity)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to generate download link")
	}
	return &models.DownloadResponse{
		DownloadURL: url,
		FileName:    path.Base(item.StoragePath),
		Type:        item.Type,
	}, nil
}

// Delete removes a vault item and its stored payload.
func (s *Service) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	item, err := s.store.Get(ctx, itemID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "vault item not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load vault item")
	}
	if err := s.store.Delete(ctx, itemID, userID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete vault item")
	}
	_ = s.storage.Remove(ctx, item.StoragePath)
	return nil
}

func sanitizeFileName(name string) string {
	name = path.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	if name == "." || name == "/" || name == "" {
		return "vault-file"
	}
	return name
}

func contentTypeFor(t models.ItemType) string {
	switch t {
	case models.TypeAudio:
		return "audio/webm"
	case models.TypeVideo:
		return "video/webm"
	default:
		return "text/plain"
	}
}
