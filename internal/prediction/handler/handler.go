package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"moreminutes/internal/platform/middleware"
	"moreminutes/internal/prediction/models"
	"moreminutes/internal/transport/http/shared"
	dErrors "moreminutes/pkg/domain-errors"
	"moreminutes/pkg/requestcontext"
)

// Service defines the interface for prediction operations.
type Service interface {
	Estimate(ctx context.Context, req models.EstimateRequest) (*models.EstimateResponse, error)
	Nudge(ctx context.Context, req models.NudgeRequest) (*models.NudgeResponse, error)
	Save(ctx context.Context, userID uuid.UUID, req models.SaveRequest) (*models.PredictionRecord, error)
	Latest(ctx context.Context, userID uuid.UUID) (*models.PredictionRecord, error)
}

// Handler handles prediction endpoints.
type Handler struct {
	logger       *slog.Logger
	predictions  Service
	jwtValidator middleware.JWTValidator
}

// New creates a new prediction Handler.
func New(predictions Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		predictions:  predictions,
		jwtValidator: jwtValidator,
	}
}

// Register registers the prediction routes with the chi router. Estimation
// and nudges work for guests; history requires auth.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(h.jwtValidator))
		r.Post("/predictions/estimate", h.handleEstimate)
		r.Post("/predictions/nudge", h.handleNudge)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/predictions", h.handleSave)
		r.Get("/predictions/latest", h.handleLatest)
	})
}

func (h *Handler) handleEstimate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.EstimateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	resp, err := h.predictions.Estimate(ctx, req)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeBadRequest) {
			h.logger.WarnContext(ctx, "invalid estimate request",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "estimate failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "estimate failed"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleNudge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.NudgeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	resp, err := h.predictions.Nudge(ctx, req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := authedUserID(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req models.SaveRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	record, err := h.predictions.Save(ctx, userID, req)
	if err != nil {
		if !dErrors.Is(err, dErrors.CodeBadRequest) {
			h.logger.ErrorContext(ctx, "failed to save prediction",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) handleLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := authedUserID(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	record, err := h.predictions.Latest(ctx, userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, record)
}

// authedUserID parses the user ID the auth middleware put in context.
func authedUserID(ctx context.Context) (uuid.UUID, error) {
	raw := requestcontext.UserID(ctx)
	if raw == "" {
		// Should never happen behind RequireAuth.
		return uuid.Nil, dErrors.New(dErrors.CodeInternal, "authentication context error")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeUnauthorized, "invalid user id in token")
	}
	return userID, nil
}
