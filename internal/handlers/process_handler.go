package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"diplocheck/internal/models"
	"diplocheck/internal/repositories"
	"diplocheck/internal/services"
)

type ProcessHandler struct {
	verificationRepo repositories.VerificationRepository
	docRepo          repositories.DocumentRepository
	worker           services.Worker
}

func NewProcessHandler(
	verificationRepo repositories.VerificationRepository,
	docRepo repositories.DocumentRepository,
	worker services.Worker,
) *ProcessHandler {
	return &ProcessHandler{
		verificationRepo: verificationRepo,
		docRepo:          docRepo,
		worker:           worker,
	}
}

// HandleProcess handles POST /process
func (h *ProcessHandler) HandleProcess(c *fiber.Ctx) error {
	var req models.ProcessRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.DocumentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "document_id is required",
		})
	}

	intent := models.Intent(req.Intent)
	if intent != models.IntentVerify && intent != models.IntentCertify {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "intent must be 'verify' or 'certify'",
		})
	}

	// Parse UUID
	docID, err := uuid.Parse(req.DocumentID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid document_id format",
		})
	}

	// Verify document exists
	if _, err := h.docRepo.FindByID(docID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Document not found",
		})
	}

	// Create verification record
	verification := &models.Verification{
		ID:         uuid.New(),
		DocumentID: docID,
		Intent:     intent,
		Status:     models.StatusQueued,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := h.verificationRepo.Create(verification); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create verification job",
		})
	}

	// Enqueue job to worker
	h.worker.EnqueueJob(verification.ID)

	// Return job ID immediately
	return c.Status(fiber.StatusAccepted).JSON(models.ProcessResponse{
		ID:     verification.ID.String(),
		Status: string(models.StatusQueued),
	})
}
