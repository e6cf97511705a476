package handlers

import (
	"fmt"
	"log"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"diplocheck/internal/models"
	"diplocheck/internal/repositories"
	"diplocheck/internal/services"
)

type UploadHandler struct {
	docRepo        repositories.DocumentRepository
	storageService services.StorageService
	maxFileSize    int64
}

func NewUploadHandler(
	docRepo repositories.DocumentRepository,
	storageService services.StorageService,
	maxFileSize int64,
) *UploadHandler {
	return &UploadHandler{
		docRepo:        docRepo,
		storageService: storageService,
		maxFileSize:    maxFileSize,
	}
}

// HandleUpload handles POST /upload. It accepts a single diploma scan as an
// image or a PDF; anything else is rejected before it reaches the pipeline.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("diploma")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded. Please upload a 'diploma' file (image or PDF).",
		})
	}

	if file.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("File too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	mediaType := detectMediaType(file.Header.Get("Content-Type"), file.Filename)
	if !isSupportedMediaType(mediaType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Format de fichier non pris en charge. Veuillez téléverser une image ou un PDF.",
		})
	}

	// Save file
	filename, filePath, err := h.storageService.SaveFile(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to save file: %v", err),
		})
	}

	// Create document record
	doc := models.Document{
		ID:               uuid.New(),
		Filename:         filename,
		OriginalFileName: file.Filename,
		MediaType:        mediaType,
		SizeBytes:        file.Size,
		FilePath:         filePath,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := h.docRepo.Create(&doc); err != nil {
		// Cleanup uploaded file if database insert fails
		h.storageService.DeleteFile(filename)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save document record",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.UploadResponse{
		ID:           doc.ID.String(),
		Filename:     doc.Filename,
		OriginalName: doc.OriginalFileName,
		MediaType:    doc.MediaType,
		SizeBytes:    doc.SizeBytes,
	})
}

// HandleDelete handles DELETE /document/:id. It removes the stored file and
// the document row. A job still referencing the document fails its file read
// and surfaces as a failed verification.
func (h *UploadHandler) HandleDelete(c *fiber.Ctx) error {
	idParam := c.Params("id")
	docID, err := uuid.Parse(idParam)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid document ID format",
		})
	}

	doc, err := h.docRepo.FindByID(docID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Document not found",
		})
	}

	if err := h.storageService.DeleteFile(doc.Filename); err != nil {
		log.Printf("⚠️  Failed to remove stored file %s: %v\n", doc.Filename, err)
	}

	if err := h.docRepo.Delete(docID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete document record",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// detectMediaType trusts the declared content type when present, otherwise
// falls back to the file extension.
func detectMediaType(declared, filename string) string {
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
			return mt
		}
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	default:
		return ""
	}
}

func isSupportedMediaType(mediaType string) bool {
	return mediaType == "application/pdf" || strings.HasPrefix(mediaType, "image/")
}
