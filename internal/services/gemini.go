package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"diplocheck/internal/models"
)

// GeminiService is the model-assisted extraction strategy plus the embedding
// endpoint used by the archive index. It is the primary extractor: robust
// against template drift at the price of a remote call.
type GeminiService interface {
	FieldExtractor
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
	timeout    time.Duration
}

func NewGeminiService(apiKey string, timeout time.Duration) (GeminiService, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &geminiService{
		client:     client,
		modelName:  "gemini-2.5-flash",
		embedModel: "text-embedding-004",
		timeout:    timeout,
	}, nil
}

const extractionInstruction = `You are an expert assistant specialized in extracting information from text and structuring it into a JSON object according to the provided schema. Analyze the text below and extract the diploma details. If a specific piece of information is not found in the text, use an empty string "" as the value for the corresponding field. Never guess or invent values.

TEXT:
`

// Extract implements FieldExtractor.
func (g *geminiService) Extract(ctx context.Context, text string) (models.DiplomaRecord, error) {
	var record models.DiplomaRecord

	if strings.TrimSpace(text) == "" {
		return record, ErrEmptyInput
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	temperature := float32(0)
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
		ResponseSchema:   diplomaRecordSchema(),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(extractionInstruction+text), config)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return record, fmt.Errorf("%w: extraction call timed out: %v", ErrNetworkTimeout, err)
		}
		return record, fmt.Errorf("%w: %v", ErrExtractionService, err)
	}
	if resp == nil {
		return record, fmt.Errorf("%w: nil response", ErrExtractionService)
	}

	payload := resp.Text()
	if payload == "" {
		return record, fmt.Errorf("%w: empty response", ErrExtractionService)
	}

	// A successful call that violates the schema is still a failure, so the
	// payload is checked for every required field before decoding.
	if err := validateRecordPayload(payload); err != nil {
		return record, fmt.Errorf("%w: %v", ErrExtractionService, err)
	}

	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return record, fmt.Errorf("%w: failed to decode response: %v", ErrExtractionService, err)
	}

	return record, nil
}

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

func validateRecordPayload(payload string) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return fmt.Errorf("response is not a JSON object: %v", err)
	}

	required := append(models.DiplomaRecord{}.FieldNames(), "certificateType", "institution")
	for _, field := range required {
		if _, ok := raw[field]; !ok {
			return fmt.Errorf("response is missing field %q", field)
		}
	}
	return nil
}

func bilingualSchema(desc string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeObject,
		Description: desc,
		Properties: map[string]*genai.Schema{
			"french":  {Type: genai.TypeString},
			"english": {Type: genai.TypeString},
		},
		Required: []string{"french", "english"},
	}
}

func diplomaRecordSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"diplomaNumber":      {Type: genai.TypeString, Description: "The unique number of the diploma."},
			"name":               {Type: genai.TypeString, Description: "The full name of the diploma holder."},
			"birthDate":          {Type: genai.TypeString, Description: "The birth date of the diploma holder."},
			"birthPlace":         {Type: genai.TypeString, Description: "The place of birth of the diploma holder."},
			"gender":             {Type: genai.TypeString, Description: "The gender of the diploma holder."},
			"registrationNumber": {Type: genai.TypeString, Description: "The registration number associated with the diploma."},
			"specialization":     {Type: genai.TypeString, Description: "The field of specialization."},
			"series":             {Type: genai.TypeString, Description: "The series identifier of the diploma."},
			"grade":              {Type: genai.TypeString, Description: "The grade or honors received."},
			"issueDate":          {Type: genai.TypeString, Description: "The date the diploma was issued."},
			"sessionDate":        {Type: genai.TypeString, Description: "The date of the examination session."},
			"certificateType":    bilingualSchema("The type of certificate, in French and English."),
			"institution": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":     bilingualSchema("The name of the institution."),
					"school":   bilingualSchema("The name of the school or faculty."),
					"ministry": bilingualSchema("The supervising ministry."),
				},
				Required: []string{"name", "school", "ministry"},
			},
		},
		Required: []string{
			"diplomaNumber", "name", "birthDate", "birthPlace", "gender",
			"registrationNumber", "specialization", "series", "grade",
			"issueDate", "sessionDate", "certificateType", "institution",
		},
	}
}
