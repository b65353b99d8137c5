package admin

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"moreminutes/internal/transport/http/shared"
	dErrors "moreminutes/pkg/domain-errors"
	"moreminutes/pkg/requestcontext"
)

// SyncTrigger runs one user-sync pass on demand.
type SyncTrigger interface {
	RunOnce(ctx context.Context)
}

// Handler exposes the operator endpoints. Both are static-token gated;
// operators are not product users and have no JWT.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	adminToken string
	syncToken  string
	syncer     SyncTrigger
}

func NewHandler(service *Service, syncer SyncTrigger, adminToken, syncToken string, logger *slog.Logger) *Handler {
	return &Handler{
		logger:     logger,
		service:    service,
		adminToken: adminToken,
		syncToken:  syncToken,
		syncer:     syncer,
	}
}

// Register registers the operator routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/admin/stats", h.handleStats)
	r.Post("/internal/sync-users", h.handleSyncUsers)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.authorized(r, h.adminToken) {
		h.logger.WarnContext(ctx, "rejected admin stats request",
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid admin token"))
		return
	}

	stats, err := h.service.Stats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "stats aggregation failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleSyncUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.authorized(r, h.syncToken) {
		h.logger.WarnContext(ctx, "rejected sync trigger",
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid sync token"))
		return
	}
	if h.syncer == nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "user sync not configured"))
		return
	}

	h.syncer.RunOnce(ctx)
	shared.WriteJSON(w, http.StatusOK, map[string]bool{"synced": true})
}

// authorized checks the static bearer token in constant time. An empty
// configured token disables the endpoint rather than opening it.
func (h *Handler) authorized(r *http.Request, token string) bool {
	if token == "" {
		return false
	}
	presented, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(token)) == 1
}
