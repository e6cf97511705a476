package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"diplocheck/internal/models"
)

// Artifact is the binary certified-PDF returned by the backend on a
// successful certification.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ActionResult is discriminated by the backend's response content type:
// exactly one of Verdict or Artifact is set.
type ActionResult struct {
	Verdict  *models.VerdictData
	Artifact *Artifact
}

type DispatcherService interface {
	Dispatch(ctx context.Context, record models.DiplomaRecord, intent models.Intent) (*ActionResult, error)
}

type dispatcherService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewDispatcherService(baseURL, apiKey string, timeout time.Duration) DispatcherService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &dispatcherService{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// wireField maps one DiplomaRecord field to the backend's flat snake_case
// schema. The table is fixed and total: every flat record field appears
// exactly once.
type wireField struct {
	Local string
	Wire  string
	Get   func(models.DiplomaRecord) string
}

var wireMapping = []wireField{
	{"diplomaNumber", "diploma_number", func(r models.DiplomaRecord) string { return r.DiplomaNumber }},
	{"name", "student_name", func(r models.DiplomaRecord) string { return r.Name }},
	{"birthDate", "birth_date", func(r models.DiplomaRecord) string { return r.BirthDate }},
	{"birthPlace", "birth_place", func(r models.DiplomaRecord) string { return r.BirthPlace }},
	{"gender", "gender", func(r models.DiplomaRecord) string { return r.Gender }},
	{"registrationNumber", "registration_number", func(r models.DiplomaRecord) string { return r.RegistrationNumber }},
	{"specialization", "domain", func(r models.DiplomaRecord) string { return r.Specialization }},
	{"series", "series", func(r models.DiplomaRecord) string { return r.Series }},
	{"grade", "mention", func(r models.DiplomaRecord) string { return r.Grade }},
	{"sessionDate", "exam_session", func(r models.DiplomaRecord) string { return r.SessionDate }},
	{"issueDate", "issued_date", func(r models.DiplomaRecord) string { return r.IssueDate }},
}

type dispatchPayload struct {
	Action    string            `json:"action"`
	Extracted map[string]string `json:"extracted"`
}

type backendVerdict struct {
	Valid      bool     `json:"valid"`
	Message    string   `json:"message"`
	Mismatches []string `json:"mismatches"`
	Confidence string   `json:"confidence"`
	Error      string   `json:"error"`
}

func actionForIntent(intent models.Intent) (string, error) {
	switch intent {
	case models.IntentVerify:
		return "authenticate", nil
	case models.IntentCertify:
		return "certify", nil
	default:
		return "", fmt.Errorf("invalid intent: %s", intent)
	}
}

func (d *dispatcherService) Dispatch(ctx context.Context, record models.DiplomaRecord, intent models.Intent) (*ActionResult, error) {
	action, err := actionForIntent(intent)
	if err != nil {
		return nil, err
	}

	extracted := make(map[string]string, len(wireMapping))
	for _, f := range wireMapping {
		extracted[f.Wire] = f.Get(record)
	}

	body, err := json.Marshal(dispatchPayload{Action: action, Extracted: extracted})
	if err != nil {
		return nil, fmt.Errorf("failed to encode dispatch payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/diplomas/verify/", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build dispatch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if d.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+d.apiKey)
	}

	// Single blocking call, no retries: a failed dispatch surfaces to the
	// caller with the most specific error available.
	resp, err := d.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: dispatch call timed out: %v", ErrNetworkTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedBackendResponse, err)
	}
	defer resp.Body.Close()

	return interpretResponse(resp, intent)
}

// interpretResponse classifies the backend response by declared content type,
// not by status code alone.
func interpretResponse(resp *http.Response, intent models.Intent) (*ActionResult, error) {
	contentType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrMalformedBackendResponse, err)
	}

	switch {
	case contentType == "application/pdf" && intent == models.IntentCertify:
		return &ActionResult{Artifact: &Artifact{
			Filename:    artifactFilename(resp.Header.Get("Content-Disposition")),
			ContentType: contentType,
			Data:        data,
		}}, nil

	case contentType == "application/json":
		var verdict backendVerdict
		if err := json.Unmarshal(data, &verdict); err != nil {
			return nil, fmt.Errorf("%w: invalid JSON verdict: %v", ErrMalformedBackendResponse, err)
		}

		message := verdict.Message
		if message == "" {
			message = verdict.Error
		}

		return &ActionResult{Verdict: &models.VerdictData{
			Valid:      verdict.Valid,
			Message:    message,
			Mismatches: verdict.Mismatches,
			Confidence: verdict.Confidence,
		}}, nil

	default:
		return nil, fmt.Errorf("%w: unexpected content type %q (status %d)", ErrMalformedBackendResponse, contentType, resp.StatusCode)
	}
}

func artifactFilename(disposition string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := params["filename"]; name != "" {
				return name
			}
		}
	}
	return "certified-diploma.pdf"
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
