// Package delivery releases due vault items: fixed-date items past their
// date, and inactivity items whose owner has gone quiet.
package delivery

import (
	"context"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	"moreminutes/internal/analytics"
	"moreminutes/internal/vault/metrics"
	"moreminutes/internal/vault/models"
)

// downloadLinkValidity is deliberately long; the delivery email is the only
// copy of the link the recipient gets.
const downloadLinkValidity = 7 * 24 * time.Hour

// Store provides the due-item queries.
type Store interface {
	ListDueFixedDate(ctx context.Context, now time.Time) ([]*models.Item, error)
	ListUndeliveredInactivity(ctx context.Context) ([]*models.Item, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) error
}

// Contacts resolves where a delivery goes and when the owner was last seen.
type Contacts interface {
	Contact(ctx context.Context, userID uuid.UUID) (email string, lastSeen time.Time, err error)
}

// Storage issues signed links for stored payloads.
type Storage interface {
	SignedURL(ctx context.Context, storagePath string, validity time.Duration) (string, error)
}

// Mailer sends the delivery email.
type Mailer interface {
	SendVaultDelivery(ctx context.Context, to, fileName, downloadURL string) error
}

// Worker periodically sweeps for due vault items and delivers them.
type Worker struct {
	logger           *slog.Logger
	store            Store
	contacts         Contacts
	storage          Storage
	mailer           Mailer
	events           *analytics.Publisher
	metrics          *metrics.Metrics
	inactivityWindow time.Duration
	interval         time.Duration
}

func NewWorker(
	store Store,
	contacts Contacts,
	storage Storage,
	mailer Mailer,
	events *analytics.Publisher,
	m *metrics.Metrics,
	inactivityWindow time.Duration,
	interval time.Duration,
	logger *slog.Logger,
) *Worker {
	return &Worker{
		logger:           logger,
		store:            store,
		contacts:         contacts,
		storage:          storage,
		mailer:           mailer,
		events:           events,
		metrics:          m,
		inactivityWindow: inactivityWindow,
		interval:         interval,
	}
}

// Run sweeps on the configured interval until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs one delivery pass. Failures are logged per item; one broken
// item never blocks the rest of the queue.
func (w *Worker) Sweep(ctx context.Context) {
	start := time.Now()
	defer func() { w.metrics.SweepDuration.Observe(time.Since(start).Seconds()) }()

	now := time.Now().UTC()

	due, err := w.store.ListDueFixedDate(ctx, now)
	if err != nil {
		w.logger.ErrorContext(ctx, "list due vault items", "error", err.Error())
	}
	for _, item := range due {
		w.deliver(ctx, item)
	}

	inactive, err := w.store.ListUndeliveredInactivity(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "list inactivity vault items", "error", err.Error())
		return
	}
	for _, item := range inactive {
		_, lastSeen, err := w.contacts.Contact(ctx, item.UserID)
		if err != nil {
			w.logger.WarnContext(ctx, "resolve vault owner",
				"vault_id", item.ID.String(),
				"error", err.Error(),
			)
			continue
		}
		if now.Sub(lastSeen) >= w.inactivityWindow {
			w.deliver(ctx, item)
		}
	}
}

func (w *Worker) deliver(ctx context.Context, item *models.Item) {
	email, _, err := w.contacts.Contact(ctx, item.UserID)
	if err != nil {
		w.metrics.DeliveriesTotal.WithLabelValues(string(item.Trigger), "error").Inc()
		w.logger.WarnContext(ctx, "resolve delivery recipient",
			"vault_id", item.ID.String(),
			"error", err.Error(),
		)
		return
	}

	url, err := w.storage.SignedURL(ctx, item.StoragePath, downloadLinkValidity)
	if err != nil {
		w.metrics.DeliveriesTotal.WithLabelValues(string(item.Trigger), "error").Inc()
		w.logger.ErrorContext(ctx, "sign vault download link",
			"vault_id", item.ID.String(),
			"error", err.Error(),
		)
		return
	}

	fileName := path.Base(item.StoragePath)
	if err := w.mailer.SendVaultDelivery(ctx, email, fileName, url); err != nil {
		w.metrics.DeliveriesTotal.WithLabelValues(string(item.Trigger), "error").Inc()
		w.logger.ErrorContext(ctx, "send vault delivery email",
			"vault_id", item.ID.String(),
			"error", err.Error(),
		)
		return
	}

	if err := w.store.MarkDelivered(ctx, item.ID); err != nil {
		// The email went out; the flag will be retried next sweep, which can
		// resend. Acceptable over losing the delivery entirely.
		w.logger.ErrorContext(ctx, "mark vault item delivered",
			"vault_id", item.ID.String(),
			"error", err.Error(),
		)
	}

	w.metrics.DeliveriesTotal.WithLabelValues(string(item.Trigger), "ok").Inc()
	w.events.Publish(ctx, analytics.Event{
		Name:   analytics.EventVaultDelivered,
		UserID: item.UserID.String(),
		Props:  map[string]any{"type": string(item.Type), "trigger": string(item.Trigger)},
	})
	w.logger.InfoContext(ctx, "vault item delivered",
		"vault_id", item.ID.String(),
		"trigger", string(item.Trigger),
	)
}
