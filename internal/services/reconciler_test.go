package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"diplocheck/internal/models"
)

func TestReconcile_QRIdentifierWins(t *testing.T) {
	record := models.DiplomaRecord{DiplomaNumber: "DIP-2023-ABC123-001"}
	payload := "https://verify.example.cm/diplomas/DIP-2023-XYZ999-042"

	merged := Reconcile(record, payload)

	assert.Equal(t, "DIP-2023-XYZ999-042", merged.DiplomaNumber)
	assert.Equal(t, payload, merged.QRCode)
}

func TestReconcile_MatchingIdentifierUnchanged(t *testing.T) {
	record := models.DiplomaRecord{DiplomaNumber: "DIP-2023-ABC123-001"}
	payload := "https://verify.example.cm/diplomas/DIP-2023-ABC123-001"

	merged := Reconcile(record, payload)

	assert.Equal(t, "DIP-2023-ABC123-001", merged.DiplomaNumber)
}

func TestReconcile_SentinelIsNoOp(t *testing.T) {
	record := models.DiplomaRecord{DiplomaNumber: "DIP-2023-ABC123-001"}

	merged := Reconcile(record, QRNotFound)

	// The sentinel is still attached as the raw payload, but the OCR
	// identifier stays.
	assert.Equal(t, "DIP-2023-ABC123-001", merged.DiplomaNumber)
	assert.Equal(t, QRNotFound, merged.QRCode)
}

func TestReconcile_EmptyPayload(t *testing.T) {
	record := models.DiplomaRecord{DiplomaNumber: "DIP-2023-ABC123-001"}

	merged := Reconcile(record, "")

	assert.Equal(t, "DIP-2023-ABC123-001", merged.DiplomaNumber)
	assert.Empty(t, merged.QRCode)
}

func TestReconcile_TrailingSlashKeepsOCRValue(t *testing.T) {
	record := models.DiplomaRecord{DiplomaNumber: "DIP-2023-ABC123-001"}

	// A payload ending in "/" has an empty last segment, which never
	// overrides the extracted value.
	merged := Reconcile(record, "https://verify.example.cm/diplomas/")

	assert.Equal(t, "DIP-2023-ABC123-001", merged.DiplomaNumber)
}

func TestReconcile_OtherFieldsUntouched(t *testing.T) {
	record := models.DiplomaRecord{
		DiplomaNumber: "DIP-A",
		Name:          "NGONO MARIE CLAIRE",
		BirthDate:     "12/04/1998",
	}

	merged := Reconcile(record, "https://verify.example.cm/diplomas/DIP-B")

	assert.Equal(t, "DIP-B", merged.DiplomaNumber)
	assert.Equal(t, "NGONO MARIE CLAIRE", merged.Name)
	assert.Equal(t, "12/04/1998", merged.BirthDate)
}
