package models

import (
	"time"

	"github.com/google/uuid"
)

type VerificationStatus string

const (
	StatusQueued     VerificationStatus = "queued"
	StatusProcessing VerificationStatus = "processing"
	StatusCompleted  VerificationStatus = "completed"
	StatusFailed     VerificationStatus = "failed"
)

type Intent string

const (
	IntentVerify  Intent = "verify"
	IntentCertify Intent = "certify"
)

type Verification struct {
	ID         uuid.UUID          `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	DocumentID uuid.UUID          `gorm:"type:uuid;not null" json:"document_id"`
	Intent     Intent             `gorm:"type:text;not null" json:"intent"`
	Status     VerificationStatus `gorm:"not null;default:'queued'" json:"status"`

	// ExtractedRecord holds the merged DiplomaRecord as JSON once the
	// pipeline completes.
	ExtractedRecord *string `gorm:"type:jsonb" json:"extracted_record,omitempty"`
	Valid           *bool   `gorm:"type:boolean" json:"valid,omitempty"`
	Message         *string `gorm:"type:text" json:"message,omitempty"`
	Mismatches      *string `gorm:"type:jsonb" json:"mismatches,omitempty"`
	Confidence      *string `gorm:"type:text" json:"confidence,omitempty"`
	ArtifactPath    *string `gorm:"type:text" json:"artifact_path,omitempty"`
	ErrorMessage    string  `gorm:"type:text" json:"error_message,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Document Document `gorm:"foreignKey:DocumentID" json:"-"`
}

func (Verification) TableName() string {
	return "verifications"
}
