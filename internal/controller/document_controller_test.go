package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-summary-be/internal/constant"
	"ai-summary-be/internal/dto"
	"ai-summary-be/internal/entity"
	"ai-summary-be/internal/pkg/serverutils"
	"ai-summary-be/internal/service"
)

type stubDocumentService struct {
	uploadRes   *dto.UploadResponse
	uploadErr   error
	statusRes   *dto.IndexStatusResponse
	statusFound bool
	deleted     []string
}

func (s *stubDocumentService) Upload(ctx context.Context, filename, contentType string, data []byte) (*dto.UploadResponse, error) {
	return s.uploadRes, s.uploadErr
}

func (s *stubDocumentService) Delete(ctx context.Context, sessionID string) (*dto.DeleteSessionResponse, error) {
	s.deleted = append(s.deleted, sessionID)
	return &dto.DeleteSessionResponse{Removed: true}, nil
}

func (s *stubDocumentService) IndexStatus(sessionID string) (*dto.IndexStatusResponse, bool) {
	return s.statusRes, s.statusFound
}

func (s *stubDocumentService) ListSessions(limit int) (*dto.ListSessionsResponse, error) {
	return &dto.ListSessionsResponse{Sessions: []entity.SessionHistory{}}, nil
}

func (s *stubDocumentService) Models() *dto.ModelsResponse {
	return &dto.ModelsResponse{Default: "gemma:2b", Models: []string{"gemma:2b"}}
}

func (s *stubDocumentService) Health() *dto.HealthResponse {
	return &dto.HealthResponse{Status: "ok", Sessions: 2}
}

func newTestApp(stub *stubDocumentService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewDocumentController(stub).RegisterRoutes(app.Group("/api"))
	return app
}

func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="` + field + `"; filename="` + filename + `"`}
	h["Content-Type"] = []string{contentType}
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func TestUploadEndpoint(t *testing.T) {
	stub := &stubDocumentService{
		uploadRes: &dto.UploadResponse{SessionID: "abc", FileSize: 4},
	}
	app := newTestApp(stub)

	body, contentType := multipartBody(t, "file", "doc.txt", "text/plain", []byte("text"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out serverutils.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Success)
}

func TestUploadEndpointMissingFile(t *testing.T) {
	app := newTestApp(&stubDocumentService{})

	req := httptest.NewRequest(http.MethodPost, "/api/upload", bytes.NewReader(nil))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadEndpointMapsServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"too large", service.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{"unsupported type", service.ErrUnsupportedType, http.StatusUnsupportedMediaType},
		{"empty file", service.ErrEmptyFile, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&stubDocumentService{uploadErr: tt.err})

			body, contentType := multipartBody(t, "file", "doc.txt", "text/plain", []byte("x"))
			req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
			req.Header.Set("Content-Type", contentType)

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestIndexStatusEndpoint(t *testing.T) {
	stub := &stubDocumentService{
		statusRes:   &dto.IndexStatusResponse{Status: constant.IndexStatusReady, Chunks: 7},
		statusFound: true,
	}
	app := newTestApp(stub)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/index-status/abc", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), `"status":"ready"`)
	assert.Contains(t, string(raw), `"chunks":7`)
}

func TestIndexStatusEndpointNotFound(t *testing.T) {
	stub := &stubDocumentService{
		statusRes: &dto.IndexStatusResponse{Status: constant.IndexStatusNotFound},
	}
	app := newTestApp(stub)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/index-status/nope", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var out serverutils.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.False(t, out.Success, "envelope must agree with the 404")
}

func TestDeleteSessionEndpoint(t *testing.T) {
	stub := &stubDocumentService{}
	app := newTestApp(stub)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/session/abc", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"abc"}, stub.deleted)
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(&stubDocumentService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "ok", out.Status)
	assert.Equal(t, 2, out.Sessions)
}
