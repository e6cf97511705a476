package handlers

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"diplocheck/internal/models"
	"diplocheck/internal/repositories"
)

type ResultHandler struct {
	verificationRepo repositories.VerificationRepository
}

func NewResultHandler(verificationRepo repositories.VerificationRepository) *ResultHandler {
	return &ResultHandler{
		verificationRepo: verificationRepo,
	}
}

func (h *ResultHandler) HandleGetResult(c *fiber.Ctx) error {
	// Parse ID from params
	idParam := c.Params("id")
	verificationID, err := uuid.Parse(idParam)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid verification ID format",
		})
	}

	// Get verification
	verification, err := h.verificationRepo.FindByID(verificationID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Verification not found",
		})
	}

	// Build response based on status
	response := models.ResultResponse{
		ID:     verification.ID.String(),
		Status: string(verification.Status),
	}

	// If completed, include results
	if verification.Status == models.StatusCompleted {
		if verification.ExtractedRecord != nil {
			var record models.DiplomaRecord
			if err := json.Unmarshal([]byte(*verification.ExtractedRecord), &record); err == nil {
				response.Record = &record
			}
		}

		if verification.ArtifactPath != nil {
			artifactURL := fmt.Sprintf("/api/v1/result/%s/artifact", verification.ID)
			response.ArtifactURL = &artifactURL
		} else {
			response.Verdict = buildVerdict(verification)
		}
	}

	// If failed, include error message
	if verification.Status == models.StatusFailed && verification.ErrorMessage != "" {
		response.ErrorMessage = &verification.ErrorMessage
	}

	return c.JSON(response)
}

// HandleGetArtifact streams the certified PDF produced by a completed
// certification job.
func (h *ResultHandler) HandleGetArtifact(c *fiber.Ctx) error {
	idParam := c.Params("id")
	verificationID, err := uuid.Parse(idParam)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid verification ID format",
		})
	}

	verification, err := h.verificationRepo.FindByID(verificationID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Verification not found",
		})
	}

	if verification.Status != models.StatusCompleted || verification.ArtifactPath == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No artifact available for this verification",
		})
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filepath.Base(*verification.ArtifactPath)))

	return c.SendFile(*verification.ArtifactPath)
}

func buildVerdict(verification *models.Verification) *models.VerdictData {
	verdict := &models.VerdictData{}

	if verification.Valid != nil {
		verdict.Valid = *verification.Valid
	}
	if verification.Message != nil {
		verdict.Message = *verification.Message
	}
	if verification.Confidence != nil {
		verdict.Confidence = *verification.Confidence
	}
	if verification.Mismatches != nil {
		json.Unmarshal([]byte(*verification.Mismatches), &verdict.Mismatches)
	}

	return verdict
}
