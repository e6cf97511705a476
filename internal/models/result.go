package models

type UploadResponse struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	MediaType    string `json:"media_type"`
	SizeBytes    int64  `json:"size_bytes"`
}

type ProcessRequest struct {
	DocumentID string `json:"document_id" validate:"required,uuid"`
	Intent     string `json:"intent" validate:"required,oneof=verify certify"`
}

type ProcessResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type ResultResponse struct {
	ID           string         `json:"id"`
	Status       string         `json:"status"`
	Record       *DiplomaRecord `json:"record,omitempty"`
	Verdict      *VerdictData   `json:"verdict,omitempty"`
	ArtifactURL  *string        `json:"artifact_url,omitempty"`
	ErrorMessage *string        `json:"error_message,omitempty"`
}

type VerdictData struct {
	Valid      bool     `json:"valid"`
	Message    string   `json:"message,omitempty"`
	Mismatches []string `json:"mismatches,omitempty"`
	Confidence string   `json:"confidence,omitempty"`
}
