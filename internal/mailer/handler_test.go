package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moreminutes/pkg/testutil"
)

type fakeSender struct {
	to   string
	link string
	err  error
}

func (f *fakeSender) SendMagicLink(_ context.Context, to, magicLink string) (string, error) {
	f.to = to
	f.link = magicLink
	if f.err != nil {
		return "", f.err
	}
	return "msg-123", nil
}

func newMagicLinkHandler(sender *fakeSender) *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(sender, logger)
}

func TestHandleSendMagicLink(t *testing.T) {
	sender := &fakeSender{}
	handler := newMagicLinkHandler(sender)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/email/send-magic-link", map[string]string{
		"email":      "ada@example.com",
		"magic_link": "https://moreminutes.life/auth?token=abc",
	})
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleSendMagicLink), req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "msg-123", resp["message_id"])
	assert.Equal(t, "ada@example.com", sender.to)
	assert.Equal(t, "https://moreminutes.life/auth?token=abc", sender.link)
}

func TestHandleSendMagicLinkMissingFields(t *testing.T) {
	handler := newMagicLinkHandler(&fakeSender{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/email/send-magic-link", map[string]string{
		"email": "ada@example.com",
	})
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleSendMagicLink), req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleSendMagicLinkProviderDown(t *testing.T) {
	sender := &fakeSender{err: errors.New("resend timeout")}
	handler := newMagicLinkHandler(sender)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/email/send-magic-link", map[string]string{
		"email":      "ada@example.com",
		"magic_link": "https://moreminutes.life/auth?token=abc",
	})
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleSendMagicLink), req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
