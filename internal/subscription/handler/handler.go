package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"moreminutes/internal/paypal"
	"moreminutes/internal/platform/middleware"
	"moreminutes/internal/subscription/models"
	"moreminutes/internal/transport/http/shared"
	dErrors "moreminutes/pkg/domain-errors"
	"moreminutes/pkg/requestcontext"
)

// Service defines the interface for subscription operations.
type Service interface {
	Status(ctx context.Context, userID uuid.UUID) (*models.StatusResponse, error)
	ProcessWebhook(ctx context.Context, event paypal.WebhookEvent) error
}

// SignatureVerifier checks PayPal webhook signatures.
type SignatureVerifier interface {
	VerificationEnabled() bool
	VerifyWebhookSignature(ctx context.Context, headers paypal.WebhookHeaders, rawEvent []byte) (bool, error)
}

// Handler handles subscription endpoints and the PayPal webhook.
type Handler struct {
	logger        *slog.Logger
	subscriptions Service
	verifier      SignatureVerifier
	jwtValidator  middleware.JWTValidator
}

func New(subscriptions Service, verifier SignatureVerifier, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:        logger,
		subscriptions: subscriptions,
		verifier:      verifier,
		jwtValidator:  jwtValidator,
	}
}

// Register registers the subscription routes. The webhook is unauthenticated;
// PayPal proves itself through the transmission signature.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/subscriptions/status", h.handleStatus)
	})
	r.Post("/paypal/webhook", h.handleWebhook)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := uuid.Parse(requestcontext.UserID(ctx))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid user id in token"))
		return
	}

	status, err := h.subscriptions.Status(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "subscription status lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, status)
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unreadable body"))
		return
	}

	if h.verifier != nil && h.verifier.VerificationEnabled() {
		valid, err := h.verifier.VerifyWebhookSignature(ctx, paypal.HeadersFromRequest(r), body)
		if err != nil {
			h.logger.ErrorContext(ctx, "webhook signature verification failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
			shared.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "signature verification unavailable"))
			return
		}
		if !valid {
			h.logger.WarnContext(ctx, "rejected webhook with invalid signature",
				"request_id", requestcontext.RequestID(ctx),
			)
			shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid signature"))
			return
		}
	} else {
		h.logger.WarnContext(ctx, "webhook signature verification skipped")
	}

	var event paypal.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid webhook payload"))
		return
	}

	if err := h.subscriptions.ProcessWebhook(ctx, event); err != nil {
		if !dErrors.Is(err, dErrors.CodeBadRequest) {
			h.logger.ErrorContext(ctx, "webhook processing failed",
				"request_id", requestcontext.RequestID(ctx),
				"event_type", event.EventType,
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
}
