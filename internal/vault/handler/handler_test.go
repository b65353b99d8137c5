package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"moreminutes/internal/vault/handler/mocks"
	"moreminutes/internal/vault/models"
	dErrors "moreminutes/pkg/domain-errors"
	"moreminutes/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/vault-mocks.go -package=mocks Service
type VaultHandlerSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *VaultHandlerSuite) SetupSuite() {
	s.ctx = context.Background()
}

func TestVaultHandlerSuite(t *testing.T) {
	suite.Run(t, new(VaultHandlerSuite))
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

func withVaultID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("vaultID", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func (s *VaultHandlerSuite) TestHandleUpload() {
	handler, mockService := newTestHandler(s.T())

	userID := uuid.New()
	vaultID := uuid.New()
	uploadReq := models.UploadRequest{
		Type:     "text",
		Trigger:  "inactivity",
		FileName: "letter.txt",
		Content:  "aGVsbG8=",
	}
	mockService.EXPECT().Upload(gomock.Any(), userID, uploadReq).Return(&models.UploadResponse{
		VaultID:     vaultID,
		StoragePath: "vault/" + userID.String() + "/1-letter.txt",
		FileName:    "letter.txt",
		FileSize:    5,
	}, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/vault/upload", uploadReq)
	req = testutil.WithUserID(req, userID.String())
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleUpload), req)

	assert.Equal(s.T(), http.StatusCreated, rr.Code)
	var resp map[string]any
	require.NoError(s.T(), json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(s.T(), vaultID.String(), resp["vault_id"])
	assert.Equal(s.T(), "letter.txt", resp["file_name"])
}

func (s *VaultHandlerSuite) TestHandleUploadValidationError() {
	handler, mockService := newTestHandler(s.T())

	userID := uuid.New()
	mockService.EXPECT().Upload(gomock.Any(), userID, gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeBadRequest, "type must be audio, video, or text"))

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/vault/upload", models.UploadRequest{Type: "hologram"})
	req = testutil.WithUserID(req, userID.String())
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleUpload), req)

	assert.Equal(s.T(), http.StatusBadRequest, rr.Code)
	var resp map[string]string
	require.NoError(s.T(), json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(s.T(), "bad_request", resp["error"])
}

func (s *VaultHandlerSuite) TestHandleUploadWithoutUser() {
	handler, _ := newTestHandler(s.T())

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/vault/upload", models.UploadRequest{})
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleUpload), req)

	assert.Equal(s.T(), http.StatusInternalServerError, rr.Code)
}

func (s *VaultHandlerSuite) TestHandleListEmpty() {
	handler, mockService := newTestHandler(s.T())

	userID := uuid.New()
	mockService.EXPECT().List(gomock.Any(), userID).Return(nil, nil)

	req := testutil.NewRequest(s.T(), http.MethodGet, "/vault")
	req = testutil.WithUserID(req, userID.String())
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleList), req)

	assert.Equal(s.T(), http.StatusOK, rr.Code)
	var resp map[string][]models.Item
	require.NoError(s.T(), json.Unmarshal(rr.Body.Bytes(), &resp))
	data, ok := resp["data"]
	require.True(s.T(), ok)
	assert.Empty(s.T(), data)
}

func (s *VaultHandlerSuite) TestHandleDownload() {
	handler, mockService := newTestHandler(s.T())

	userID := uuid.New()
	itemID := uuid.New()
	mockService.EXPECT().Download(gomock.Any(), userID, itemID).Return(&models.DownloadResponse{
		DownloadURL: "https://storage.example.com/signed/abc",
		FileName:    "letter.txt",
		Type:        models.TypeText,
	}, nil)

	req := testutil.NewRequest(s.T(), http.MethodGet, "/vault/"+itemID.String()+"/download")
	req = testutil.WithUserID(req, userID.String())
	req = withVaultID(req, itemID.String())
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleDownload), req)

	assert.Equal(s.T(), http.StatusOK, rr.Code)
	var resp models.DownloadResponse
	require.NoError(s.T(), json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(s.T(), "https://storage.example.com/signed/abc", resp.DownloadURL)
}

func (s *VaultHandlerSuite) TestHandleDownloadInvalidID() {
	handler, _ := newTestHandler(s.T())

	req := testutil.NewRequest(s.T(), http.MethodGet, "/vault/not-a-uuid/download")
	req = testutil.WithUserID(req, uuid.NewString())
	req = withVaultID(req, "not-a-uuid")
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleDownload), req)

	assert.Equal(s.T(), http.StatusBadRequest, rr.Code)
}

func (s *VaultHandlerSuite) TestHandleDownloadNotFound() {
	handler, mockService := newTestHandler(s.T())

	userID := uuid.New()
	itemID := uuid.New()
	mockService.EXPECT().Download(gomock.Any(), userID, itemID).
		Return(nil, dErrors.New(dErrors.CodeNotFound, "vault item not found"))

	req := testutil.NewRequest(s.T(), http.MethodGet, "/vault/"+itemID.String()+"/download")
	req = testutil.WithUserID(req, userID.String())
	req = withVaultID(req, itemID.String())
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleDownload), req)

	assert.Equal(s.T(), http.StatusNotFound, rr.Code)
}

func (s *VaultHandlerSuite) TestHandleDelete() {
	handler, mockService := newTestHandler(s.T())

	userID := uuid.New()
	itemID := uuid.New()
	mockService.EXPECT().Delete(gomock.Any(), userID, itemID).Return(nil)

	req := testutil.NewRequest(s.T(), http.MethodDelete, "/vault/"+itemID.String())
	req = testutil.WithUserID(req, userID.String())
	req = withVaultID(req, itemID.String())
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleDelete), req)

	assert.Equal(s.T(), http.StatusOK, rr.Code)
	var resp map[string]bool
	require.NoError(s.T(), json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(s.T(), resp["deleted"])
}
