package services

import (
	"strings"

	"diplocheck/internal/models"
)

// Reconcile merges the OCR-derived record with the independently decoded QR
// payload. The raw payload is attached unconditionally, sentinel included.
// When the payload's final path segment yields a diploma identifier that
// differs from the OCR value, the QR identifier wins: QR payloads are
// machine-generated while OCR is lossy. Only the diploma number is
// cross-checked; all other fields keep their extracted values.
func Reconcile(record models.DiplomaRecord, qrPayload string) models.DiplomaRecord {
	record.QRCode = qrPayload

	if qrPayload == "" || qrPayload == QRNotFound {
		return record
	}

	segments := strings.Split(qrPayload, "/")
	candidate := segments[len(segments)-1]
	if candidate != "" && candidate != record.DiplomaNumber {
		record.DiplomaNumber = candidate
	}

	return record
}
