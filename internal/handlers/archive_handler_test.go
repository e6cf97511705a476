package handlers

import (
	"context"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diplocheck/internal/services"
)

type fakeArchive struct {
	gotText  string
	gotLimit int
	matches  []services.SimilarDocument
	err      error
}

func (f *fakeArchive) InitCollection() error { return nil }

func (f *fakeArchive) IndexDocument(ctx context.Context, docID string, text string) error {
	return nil
}

func (f *fakeArchive) FindSimilar(ctx context.Context, text string, limit int) ([]services.SimilarDocument, error) {
	f.gotText = text
	f.gotLimit = limit
	return f.matches, f.err
}

func newArchiveTestApp(archive *fakeArchive) *fiber.App {
	app := fiber.New()
	handler := NewArchiveHandler(archive)
	app.Post("/api/v1/archive/search", handler.HandleSearchSimilar)
	return app
}

func TestHandleSearchSimilar(t *testing.T) {
	archive := &fakeArchive{matches: []services.SimilarDocument{
		{DocumentID: "doc-1", Score: 0.97, Excerpt: "UNIVERSITÉ DE BERTOUA"},
	}}
	app := newArchiveTestApp(archive)

	resp := postJSON(t, app, "/api/v1/archive/search", map[string]interface{}{
		"text":  "recognized diploma text",
		"limit": 3,
	})
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "recognized diploma text", archive.gotText)
	assert.Equal(t, 3, archive.gotLimit)
}

func TestHandleSearchSimilar_EmptyText(t *testing.T) {
	app := newArchiveTestApp(&fakeArchive{})

	resp := postJSON(t, app, "/api/v1/archive/search", map[string]interface{}{
		"text": "   ",
	})
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleSearchSimilar_LimitClamped(t *testing.T) {
	archive := &fakeArchive{}
	app := newArchiveTestApp(archive)

	resp := postJSON(t, app, "/api/v1/archive/search", map[string]interface{}{
		"text":  "text",
		"limit": 500,
	})
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, archive.gotLimit)
}
