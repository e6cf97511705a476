package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"diplocheck/internal/services"
)

type ArchiveHandler struct {
	archive services.ArchiveService
}

func NewArchiveHandler(archive services.ArchiveService) *ArchiveHandler {
	return &ArchiveHandler{archive: archive}
}

type similarSearchRequest struct {
	Text  string `json:"text"`
	Limit int    `json:"limit"`
}

type similarDocumentResponse struct {
	DocumentID string  `json:"document_id"`
	Score      float32 `json:"score"`
	Excerpt    string  `json:"excerpt"`
}

// HandleSearchSimilar handles POST /archive/search. It flags previously
// processed documents whose recognized text is close to the given text,
// surfacing likely resubmissions of the same diploma.
func (h *ArchiveHandler) HandleSearchSimilar(c *fiber.Ctx) error {
	var req similarSearchRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if strings.TrimSpace(req.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "text is required",
		})
	}

	limit := req.Limit
	if limit <= 0 || limit > 20 {
		limit = 5
	}

	matches, err := h.archive.FindSimilar(c.Context(), req.Text, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to search the archive",
		})
	}

	results := make([]similarDocumentResponse, 0, len(matches))
	for _, m := range matches {
		results = append(results, similarDocumentResponse{
			DocumentID: m.DocumentID,
			Score:      m.Score,
			Excerpt:    m.Excerpt,
		})
	}

	return c.JSON(fiber.Map{
		"results": results,
	})
}
