package mailer

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"moreminutes/internal/transport/http/shared"
	dErrors "moreminutes/pkg/domain-errors"
	"moreminutes/pkg/requestcontext"
)

// Sender is the slice of the mailer the HTTP handler needs.
type Sender interface {
	SendMagicLink(ctx context.Context, to, magicLink string) (string, error)
}

// Handler exposes the magic-link email endpoint the sign-in flow calls.
type Handler struct {
	logger *slog.Logger
	sender Sender
}

func NewHandler(sender Sender, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, sender: sender}
}

// Register registers the email routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/email/send-magic-link", h.handleSendMagicLink)
}

type magicLinkRequest struct {
	Email     string `json:"email"`
	MagicLink string `json:"magic_link"`
}

func (h *Handler) handleSendMagicLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req magicLinkRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if req.Email == "" || req.MagicLink == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "email and magic_link are required"))
		return
	}

	messageID, err := h.sender.SendMagicLink(ctx, req.Email, req.MagicLink)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to send magic link",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "failed to send email"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "message_id": messageID})
}
