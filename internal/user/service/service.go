package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"moreminutes/internal/lifecalc"
	predModels "moreminutes/internal/prediction/models"
	subModels "moreminutes/internal/subscription/models"
	"moreminutes/internal/user/models"
	"moreminutes/internal/user/store"
	vaultModels "moreminutes/internal/vault/models"
	dErrors "moreminutes/pkg/domain-errors"
	"moreminutes/pkg/requestcontext"
)

const exportVersion = "1.0"

// Store persists user rows.
type Store interface {
	Upsert(ctx context.Context, user *models.User) error
	Mirror(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, req models.UpdateProfileRequest) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	EnsureExists(ctx context.Context, id uuid.UUID, email string) error
	Contact(ctx context.Context, id uuid.UUID) (string, time.Time, error)
	Count(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

// PredictionData is the slice of the prediction store the user domain
// touches for export and account deletion.
type PredictionData interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*predModels.PredictionRecord, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

// VaultData is the slice of the vault store used for export and deletion.
type VaultData interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*vaultModels.Item, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

// SubscriptionData is the slice of the subscription store used for export
// and deletion.
type SubscriptionData interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*subModels.Subscription, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

// Service owns the local mirror of identity-provider users plus the
// account-wide operations that span domains.
type Service struct {
	store         Store
	predictions   PredictionData
	vault         VaultData
	subscriptions SubscriptionData
}

func New(store Store, predictions PredictionData, vault VaultData, subscriptions SubscriptionData) *Service {
	return &Service{
		store:         store,
		predictions:   predictions,
		vault:         vault,
		subscriptions: subscriptions,
	}
}

// Sync upserts a user from a user-initiated request and stamps the activity
// clock the vault inactivity trigger runs on.
func (s *Service) Sync(ctx context.Context, req models.SyncRequest) (*models.User, error) {
	user, err := userFromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.store.Upsert(ctx, user); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sync user")
	}
	return s.Profile(ctx, user.ID)
}

// Mirror applies an identity-provider record without touching the activity
// clock. Background sweeps go through here so mirrored rows never read as
// user activity; otherwise the inactivity trigger could not fire.
func (s *Service) Mirror(ctx context.Context, req models.SyncRequest) (*models.User, error) {
	user, err := userFromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.store.Mirror(ctx, user); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mirror user")
	}
	return s.Profile(ctx, user.ID)
}

func userFromRequest(ctx context.Context, req models.SyncRequest) (*models.User, error) {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "id must be a UUID")
	}
	if req.Email == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "email is required")
	}
	dob, err := normalizeDOB(req.DOB)
	if err != nil {
		return nil, err
	}
	if err := validateSex(req.Sex); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	return &models.User{
		ID:          id,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		DOB:         dob,
		Sex:         req.Sex,
		CreatedAt:   now,
		LastSeenAt:  now,
	}, nil
}

// Profile returns the user's row.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

// UpdateProfile applies a partial profile update.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.User, error) {
	dob, err := normalizeDOB(req.DOB)
	if err != nil {
		return nil, err
	}
	req.DOB = dob
	if err := validateSex(req.Sex); err != nil {
		return nil, err
	}

	user, err := s.store.Update(ctx, userID, req)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
	}
	return user, nil
}

// DeleteAccount removes the user and everything attached to them. Domain
// rows go first so a partial failure never leaves orphans behind a deleted
// user row.
func (s *Service) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.store.Get(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	if err := s.predictions.DeleteByUser(ctx, userID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete predictions")
	}
	if err := s.vault.DeleteByUser(ctx, userID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete vault items")
	}
	if err := s.subscriptions.DeleteByUser(ctx, userID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete subscriptions")
	}
	if err := s.store.Delete(ctx, userID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete user")
	}
	return nil
}

// Export assembles the full account takeout.
func (s *Service) Export(ctx context.Context, userID uuid.UUID) (*models.Export, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	predictions, err := s.predictions.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to export predictions")
	}
	vaultItems, err := s.vault.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to export vault items")
	}
	subscriptions, err := s.subscriptions.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to export subscriptions")
	}

	return &models.Export{
		User:          user,
		Predictions:   predictions,
		VaultItems:    vaultItems,
		Subscriptions: subscriptions,
		ExportedAt:    requestcontext.Now(ctx),
		Version:       exportVersion,
	}, nil
}

// normalizeDOB trims an ISO timestamp down to its date part and validates
// the result.
func normalizeDOB(dob *string) (*string, error) {
	if dob == nil {
		return nil, nil
	}
	day, _, _ := strings.Cut(*dob, "T")
	if _, err := time.ParseInLocation("2006-01-02", day, time.UTC); err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "dob must be a YYYY-MM-DD date")
	}
	return &day, nil
}

func validateSex(sex *string) error {
	if sex == nil {
		return nil
	}
	if !lifecalc.Sex(*sex).Valid() {
		return dErrors.New(dErrors.CodeBadRequest, "sex must be male or female")
	}
	return nil
}
