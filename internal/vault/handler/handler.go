package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"moreminutes/internal/platform/middleware"
	"moreminutes/internal/transport/http/shared"
	"moreminutes/internal/vault/models"
	dErrors "moreminutes/pkg/domain-errors"
	"moreminutes/pkg/requestcontext"
)

// Service defines the interface for vault operations.
type Service interface {
	Upload(ctx context.Context, userID uuid.UUID, req models.UploadRequest) (*models.UploadResponse, error)
	List(ctx context.Context, userID uuid.UUID) ([]*models.Item, error)
	Download(ctx context.Context, userID, itemID uuid.UUID) (*models.DownloadResponse, error)
	Delete(ctx context.Context, userID, itemID uuid.UUID) error
}

// Handler handles vault endpoints. Everything requires auth; vault items
// are strictly owner-scoped.
type Handler struct {
	logger       *slog.Logger
	vault        Service
	jwtValidator middleware.JWTValidator
}

func New(vault Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		vault:        vault,
		jwtValidator: jwtValidator,
	}
}

// Register registers the vault routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/vault/upload", h.handleUpload)
		r.Get("/vault", h.handleList)
		r.Get("/vault/{vaultID}/download", h.handleDownload)
		r.Delete("/vault/{vaultID}", h.handleDelete)
	})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := authedUserID(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req models.UploadRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	resp, err := h.vault.Upload(ctx, userID, req)
	if err != nil {
		if !dErrors.Is(err, dErrors.CodeBadRequest) {
			h.logger.ErrorContext(ctx, "vault upload failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := authedUserID(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	items, err := h.vault.List(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "vault list failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	if items == nil {
		items = []*models.Item{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"data": items})
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := authedUserID(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "vaultID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid vault id"))
		return
	}

	resp, err := h.vault.Download(ctx, userID, itemID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := authedUserID(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "vaultID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid vault id"))
		return
	}

	if err := h.vault.Delete(ctx, userID, itemID); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
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
