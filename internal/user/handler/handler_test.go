package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"moreminutes/internal/user/handler/mocks"
	"moreminutes/internal/user/models"
	dErrors "moreminutes/pkg/domain-errors"
	"moreminutes/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/user-mocks.go -package=mocks Service
type UserHandlerSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *UserHandlerSuite) SetupSuite() {
	s.ctx = context.Background()
}

func TestUserHandlerSuite(t *testing.T) {
	suite.Run(t, new(UserHandlerSuite))
}

func newTestHandler(t *testing.T) (*Handler, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := New(mockService, logger, nil)
	r := chi.NewRouter()
	handler.Register(r)
	return handler, mockService
}

func (s *UserHandlerSuite) TestHandleSyncUsesTokenIdentity() {
	handler, mockService := newTestHandler(s.T())

	userID := uuid.New()
	mockService.EXPECT().Sync(gomock.Any(), models.SyncRequest{
		ID:    userID.String(),
		Email: "ada@example.com",
	}).Return(&models.User{ID: userID, Email: "ada@example.com"}, nil)

	// The body claims a different ID; the handler must overwrite it with
	// the token's identity.
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/users/sync", models.SyncRequest{
		ID:    uuid.NewString(),
		Email: "ada@example.com",
	})
	req = testutil.WithUserID(req, userID.String())
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleSync), req)

	assert.Equal(s.T(), http.StatusOK, rr.Code)
	var resp map[string]any
	require.NoError(s.T(), json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(s.T(), true, resp["success"])
	user := resp["user"].(map[string]any)
	assert.Equal(s.T(), userID.String(), user["id"])
}

func (s *UserHandlerSuite) TestHandleSyncValidationError() {
	handler, mockService := newTestHandler(s.T())

	mockService.EXPECT().Sync(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeBadRequest, "email is required"))

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/users/sync", models.SyncRequest{})
	req = testutil.WithUserID(req, uuid.NewString())
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleSync), req)

	assert.Equal(s.T(), http.StatusBadRequest, rr.Code)
	var resp map[string]string
	require.NoError(s.T(), json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(s.T(), "bad_request", resp["error"])
}

func (s *UserHandlerSuite) TestHandleGetProfile() {
	handler, mockService := newTestHandler(s.T())

	userID := uuid.New()
	dob := "1990-05-14"
	mockService.EXPECT().Profile(gomock.Any(), userID).Return(&models.User{
		ID:    userID,
		Email: "ada@example.com",
		DOB:   &dob,
	}, nil)

	req := testutil.NewRequest(s.T(), http.MethodGet, "/users/profile")
	req = testutil.WithUserID(req, userID.String())
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleGetProfile), req)

	assert.Equal(s.T(), http.StatusOK, rr.Code)
	var resp models.User
	require.NoError(s.T(), json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(s.T(), "ada@example.com", resp.Email)
	require.NotNil(s.T(), resp.DOB)
	assert.Equal(s.T(), "1990-05-14", *resp.DOB)
}

func (s *UserHandlerSuite) TestHandleGetProfileNotFound() {
	handler, mockService := newTestHandler(s.T())

	userID := uuid.New()
	mockService.EXPECT().Profile(gomock.Any(), userID).
		Return(nil, dErrors.New(dErrors.CodeNotFound, "user not found"))

	req := testutil.NewRequest(s.T(), http.MethodGet, "/users/profile")
	req = testutil.WithUserID(req, userID.String())
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleGetProfile), req)

	assert.Equal(s.T(), http.StatusNotFound, rr.Code)
}

func (s *UserHandlerSuite) TestHandleUpdateProfile() {
	handler, mockService := newTestHandler(s.T())

	userID := uuid.New()
	name := "Ada"
	mockService.EXPECT().UpdateProfile(gomock.Any(), userID, models.UpdateProfileRequest{
		DisplayName: &name,
	}).Return(&models.User{ID: userID, Email: "ada@example.com", DisplayName: &name}, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/users/profile", models.UpdateProfileRequest{
		DisplayName: &name,
	})
	req = testutil.WithUserID(req, userID.String())
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleUpdateProfile), req)

	assert.Equal(s.T(), http.StatusOK, rr.Code)
	var resp models.User
	require.NoError(s.T(), json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(s.T(), resp.DisplayName)
	assert.Equal(s.T(), "Ada", *resp.DisplayName)
}

func (s *UserHandlerSuite) TestHandleDeleteAccount() {
	handler, mockService := newTestHandler(s.T())

	userID := uuid.New()
	mockService.EXPECT().DeleteAccount(gomock.Any(), userID).Return(nil)

	req := testutil.NewRequest(s.T(), http.MethodDelete, "/users/profile")
	req = testutil.WithUserID(req, userID.String())
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleDeleteAccount), req)

	assert.Equal(s.T(), http.StatusOK, rr.Code)
	var resp map[string]bool
	require.NoError(s.T(), json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(s.T(), resp["deleted"])
}

func (s *UserHandlerSuite) TestHandleExportSetsAttachmentHeaders() {
	handler, mockService := newTestHandler(s.T())

	userID := uuid.New()
	exportedAt := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	mockService.EXPECT().Export(gomock.Any(), userID).Return(&models.Export{
		User:       &models.User{ID: userID, Email: "ada@example.com"},
		ExportedAt: exportedAt,
		Version:    "1.0",
	}, nil)

	req := testutil.NewRequest(s.T(), http.MethodGet, "/users/export")
	req = testutil.WithUserID(req, userID.String())
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleExport), req)

	assert.Equal(s.T(), http.StatusOK, rr.Code)
	disposition := rr.Header().Get("Content-Disposition")
	assert.Contains(s.T(), disposition, "attachment")
	assert.Contains(s.T(), disposition, "moreminutes-data-"+userID.String()+"-2026-09-01.json")

	var resp models.Export
	require.NoError(s.T(), json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(s.T(), "1.0", resp.Version)
}

func (s *UserHandlerSuite) TestHandleExportWithoutUser() {
	handler, _ := newTestHandler(s.T())

	req := testutil.NewRequest(s.T(), http.MethodGet, "/users/export")
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleExport), req)

	assert.Equal(s.T(), http.StatusInternalServerError, rr.Code)
}
