package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diplocheck/internal/models"
	"diplocheck/internal/services"
)

func newUploadTestApp(t *testing.T, docRepo *fakeDocRepo, maxFileSize int64) (*fiber.App, services.StorageService) {
	t.Helper()

	base := t.TempDir()
	storage := services.NewStorageService(filepath.Join(base, "uploads"), filepath.Join(base, "artifacts"))
	require.NoError(t, storage.EnsureDirs())

	app := fiber.New()
	handler := NewUploadHandler(docRepo, storage, maxFileSize)
	app.Post("/api/v1/upload", handler.HandleUpload)
	app.Delete("/api/v1/document/:id", handler.HandleDelete)
	return app, storage
}

func newUploadRequest(t *testing.T, filename, contentType string, data []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="diploma"; filename=%q`, filename))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}

	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHandleUpload_AcceptsImage(t *testing.T) {
	docRepo := &fakeDocRepo{}
	app, _ := newUploadTestApp(t, docRepo, 10485760)

	resp, err := app.Test(newUploadRequest(t, "scan.png", "image/png", []byte("fake png bytes")))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body models.UploadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "image/png", body.MediaType)
	assert.Equal(t, "scan.png", body.OriginalName)

	require.NotNil(t, docRepo.created)
	assert.Equal(t, "image/png", docRepo.created.MediaType)

	saved, err := os.ReadFile(docRepo.created.FilePath)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake png bytes"), saved)
}

func TestHandleUpload_RejectsOversizedFile(t *testing.T) {
	docRepo := &fakeDocRepo{}
	app, _ := newUploadTestApp(t, docRepo, 16)

	resp, err := app.Test(newUploadRequest(t, "scan.png", "image/png", bytes.Repeat([]byte("x"), 64)))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Nil(t, docRepo.created)
}

func TestHandleUpload_RejectsUnsupportedFormat(t *testing.T) {
	docRepo := &fakeDocRepo{}
	app, _ := newUploadTestApp(t, docRepo, 10485760)

	resp, err := app.Test(newUploadRequest(t, "diploma.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", []byte("doc")))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Nil(t, docRepo.created)

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(payload), "Format de fichier non pris en charge")
}

func TestHandleUpload_MissingFile(t *testing.T) {
	app, _ := newUploadTestApp(t, &fakeDocRepo{}, 10485760)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleDelete_RemovesDocumentAndFile(t *testing.T) {
	docID := uuid.New()
	docRepo := &fakeDocRepo{docs: map[uuid.UUID]*models.Document{}}
	app, storage := newUploadTestApp(t, docRepo, 10485760)

	filename := "diploma_test.png"
	filePath := storage.GetFilePath(filename)
	require.NoError(t, os.WriteFile(filePath, []byte("stored scan"), 0644))
	docRepo.docs[docID] = &models.Document{ID: docID, Filename: filename, FilePath: filePath}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/document/"+docID.String(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []uuid.UUID{docID}, docRepo.deleted)

	_, err = os.Stat(filePath)
	assert.True(t, os.IsNotExist(err))
}

func TestHandleDelete_UnknownDocument(t *testing.T) {
	app, _ := newUploadTestApp(t, &fakeDocRepo{}, 10485760)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/document/"+uuid.New().String(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDetectMediaType(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		filename string
		want     string
	}{
		{"declared pdf", "application/pdf", "scan.bin", "application/pdf"},
		{"declared with params", "image/jpeg; charset=utf-8", "photo", "image/jpeg"},
		{"octet-stream falls back to extension", "application/octet-stream", "diploma.pdf", "application/pdf"},
		{"no declaration, png", "", "scan.PNG", "image/png"},
		{"no declaration, jpeg", "", "photo.jpg", "image/jpeg"},
		{"unknown extension", "", "document.docx", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectMediaType(tt.declared, tt.filename))
		})
	}
}

func TestIsSupportedMediaType(t *testing.T) {
	assert.True(t, isSupportedMediaType("application/pdf"))
	assert.True(t, isSupportedMediaType("image/png"))
	assert.True(t, isSupportedMediaType("image/jpeg"))
	assert.False(t, isSupportedMediaType("application/msword"))
	assert.False(t, isSupportedMediaType("text/plain"))
	assert.False(t, isSupportedMediaType(""))
}
