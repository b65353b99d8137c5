package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"moreminutes/internal/platform/middleware"
	"moreminutes/internal/transport/http/shared"
	"moreminutes/internal/user/models"
	dErrors "moreminutes/pkg/domain-errors"
	"moreminutes/pkg/requestcontext"
)

// Service defines the interface for user operations.
type Service interface {
	Sync(ctx context.Context, req models.SyncRequest) (*models.User, error)
	Profile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.User, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
	Export(ctx context.Context, userID uuid.UUID) (*models.Export, error)
}

// Handler handles user profile endpoints.
type Handler struct {
	logger       *slog.Logger
	users        Service
	jwtValidator middleware.JWTValidator
}

func New(users Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		users:        users,
		jwtValidator: jwtValidator,
	}
}

// Register registers the user routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/users/sync", h.handleSync)
		r.Get("/users/profile", h.handleGetProfile)
		r.Put("/users/profile", h.handleUpdateProfile)
		r.Delete("/users/profile", h.handleDeleteAccount)
		r.Get("/users/export", h.handleExport)
	})
}

func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.SyncRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	// The token decides whose row this is; the body cannot point elsewhere.
	req.ID = requestcontext.UserID(ctx)

	user, err := h.users.Sync(ctx, req)
	if err != nil {
		if !dErrors.Is(err, dErrors.CodeBadRequest) {
			h.logger.ErrorContext(ctx, "user sync failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := authedUserID(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	user, err := h.users.Profile(ctx, userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := authedUserID(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req models.UpdateProfileRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	user, err := h.users.UpdateProfile(ctx, userID, req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := authedUserID(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.users.DeleteAccount(ctx, userID); err != nil {
		if !dErrors.Is(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "account deletion failed",
				"request_id", requestcontext.RequestID(ctx),
				"user_id", userID.String(),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := authedUserID(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	export, err := h.users.Export(ctx, userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	filename := fmt.Sprintf("moreminutes-data-%s-%s.json",
		userID, export.ExportedAt.UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(export)
}

func authedUserID(ctx context.Context) (uuid.UUID, error) {
	raw := requestcontext.UserID(ctx)
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInternal, "authentication context error")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeUnauthorized, "invalid user id in token")
	}
	return userID, nil
}
