package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diplocheck/internal/models"
)

func newResultTestApp(repo *fakeVerificationRepo) *fiber.App {
	app := fiber.New()
	handler := NewResultHandler(repo)
	app.Get("/api/v1/result/:id", handler.HandleGetResult)
	app.Get("/api/v1/result/:id/artifact", handler.HandleGetArtifact)
	return app
}

func getResult(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	return resp
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestHandleGetResult_Queued(t *testing.T) {
	id := uuid.New()
	repo := &fakeVerificationRepo{verification: &models.Verification{
		ID:     id,
		Status: models.StatusQueued,
	}}

	resp := getResult(t, newResultTestApp(repo), "/api/v1/result/"+id.String())
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body models.ResultResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "queued", body.Status)
	assert.Nil(t, body.Record)
	assert.Nil(t, body.Verdict)
}

func TestHandleGetResult_CompletedWithVerdict(t *testing.T) {
	id := uuid.New()
	record := models.DiplomaRecord{DiplomaNumber: "DIP-2023-ABC123-001"}
	recordJSON, err := json.Marshal(record)
	require.NoError(t, err)

	repo := &fakeVerificationRepo{verification: &models.Verification{
		ID:              id,
		Status:          models.StatusCompleted,
		ExtractedRecord: strPtr(string(recordJSON)),
		Valid:           boolPtr(true),
		Message:         strPtr("Diplôme authentique"),
		Mismatches:      strPtr(`["grade"]`),
	}}

	resp := getResult(t, newResultTestApp(repo), "/api/v1/result/"+id.String())
	defer resp.Body.Close()

	var body models.ResultResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, "completed", body.Status)
	require.NotNil(t, body.Record)
	assert.Equal(t, "DIP-2023-ABC123-001", body.Record.DiplomaNumber)
	require.NotNil(t, body.Verdict)
	assert.True(t, body.Verdict.Valid)
	assert.Equal(t, "Diplôme authentique", body.Verdict.Message)
	assert.Equal(t, []string{"grade"}, body.Verdict.Mismatches)
	assert.Nil(t, body.ArtifactURL)
}

func TestHandleGetResult_CompletedWithArtifact(t *testing.T) {
	id := uuid.New()
	repo := &fakeVerificationRepo{verification: &models.Verification{
		ID:           id,
		Status:       models.StatusCompleted,
		ArtifactPath: strPtr("/artifacts/" + id.String() + "_certified-diploma.pdf"),
	}}

	resp := getResult(t, newResultTestApp(repo), "/api/v1/result/"+id.String())
	defer resp.Body.Close()

	var body models.ResultResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	require.NotNil(t, body.ArtifactURL)
	assert.Equal(t, "/api/v1/result/"+id.String()+"/artifact", *body.ArtifactURL)
	assert.Nil(t, body.Verdict)
}

func TestHandleGetResult_Failed(t *testing.T) {
	id := uuid.New()
	repo := &fakeVerificationRepo{verification: &models.Verification{
		ID:           id,
		Status:       models.StatusFailed,
		ErrorMessage: "Aucun texte n'a pu être lu sur le document.",
	}}

	resp := getResult(t, newResultTestApp(repo), "/api/v1/result/"+id.String())
	defer resp.Body.Close()

	var body models.ResultResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, "failed", body.Status)
	require.NotNil(t, body.ErrorMessage)
	assert.Equal(t, "Aucun texte n'a pu être lu sur le document.", *body.ErrorMessage)
}

func TestHandleGetResult_NotFound(t *testing.T) {
	resp := getResult(t, newResultTestApp(&fakeVerificationRepo{}), "/api/v1/result/"+uuid.New().String())
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleGetArtifact_NoneAvailable(t *testing.T) {
	id := uuid.New()
	repo := &fakeVerificationRepo{verification: &models.Verification{
		ID:     id,
		Status: models.StatusCompleted,
	}}

	resp := getResult(t, newResultTestApp(repo), "/api/v1/result/"+id.String()+"/artifact")
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
