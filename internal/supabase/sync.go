package supabase

import (
	"context"
	"log/slog"
	"time"

	userModels "moreminutes/internal/user/models"
)

const syncPageSize = 100

// UserSyncer receives one identity-provider user at a time. Mirror, not
// Sync: the sweep must not stamp activity, or inactivity-triggered vault
// deliveries would never come due.
type UserSyncer interface {
	Mirror(ctx context.Context, req userModels.SyncRequest) (*userModels.User, error)
}

// Syncer mirrors Supabase auth users into the local user table on an
// interval, replacing the cron job the original deployment ran.
type Syncer struct {
	logger   *slog.Logger
	client   *Client
	users    UserSyncer
	interval time.Duration
}

func NewSyncer(client *Client, users UserSyncer, interval time.Duration, logger *slog.Logger) *Syncer {
	return &Syncer{
		logger:   logger,
		client:   client,
		users:    users,
		interval: interval,
	}
}

// Run syncs on the configured interval until the context is cancelled.
func (s *Syncer) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce walks every auth user page and mirrors each row. Individual
// failures are logged and skipped; one bad record never stops the sweep.
func (s *Syncer) RunOnce(ctx context.Context) {
	var synced, failed int
	for page := 1; ; page++ {
		users, err := s.client.ListUsers(ctx, page, syncPageSize)
		if err != nil {
			s.logger.ErrorContext(ctx, "list auth users", "page", page, "error", err.Error())
			return
		}
		if len(users) == 0 {
			break
		}
		for _, u := range users {
			if u.Email == "" {
				continue
			}
			_, err := s.users.Mirror(ctx, userModels.SyncRequest{
				ID:          u.ID,
				Email:       u.Email,
				DisplayName: u.MetadataString("display_name"),
				DOB:         u.MetadataString("dob"),
				Sex:         u.MetadataString("sex"),
			})
			if err != nil {
				failed++
				s.logger.WarnContext(ctx, "sync auth user",
					"auth_user_id", u.ID,
					"error", err.Error(),
				)
				continue
			}
			synced++
		}
		if len(users) < syncPageSize {
			break
		}
	}
	s.logger.InfoContext(ctx, "user sync complete", "synced", synced, "failed", failed)
}
