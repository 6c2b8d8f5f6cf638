package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkellner/talent-match/internal/db"
	"github.com/mkellner/talent-match/internal/matching"
)

func multipartBody(t *testing.T, fields map[string]string, resumeName, resumeContent string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if resumeName != "" {
		part, err := w.CreateFormFile("resume", resumeName)
		require.NoError(t, err)
		_, err = part.Write([]byte(resumeContent))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func candidateFields() map[string]string {
	return map[string]string{
		"name":       "Ada Lovelace",
		"email":      "ada@example.com",
		"skills":     "Go, SQL",
		"experience": "10 years of backend work",
		"education":  "BSc Mathematics",
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateCandidate(t *testing.T) {
	env := newTestEnv(Config{})
	body, contentType := multipartBody(t, candidateFields(), "resume.txt",
		"SKILLS\nGo, SQL\nEXPERIENCE\nBuilt services\nEDUCATION\nMathematics")

	req := httptest.NewRequest(http.MethodPost, "/candidates", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.server.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decodeBody(t, rec)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "a summary", resp["summary"])

	id, err := uuid.Parse(resp["candidateId"].(string))
	require.NoError(t, err)

	stored := env.store.candidates[id]
	require.NotNil(t, stored)
	assert.Equal(t, "Ada Lovelace", stored.Name)
	assert.Equal(t, []string{"Go", "SQL"}, stored.Skills)
	assert.Contains(t, stored.ResumeText, "Built services")

	_, indexed := env.index.indexedCandidate[id]
	assert.True(t, indexed, "candidate vector upserted")
	assert.Equal(t, stored.ResumeText, env.assistant.summaryInput)
}

func TestCreateCandidate_MissingRequiredField(t *testing.T) {
	for _, field := range []string{"name", "email", "skills", "experience", "education"} {
		t.Run(field, func(t *testing.T) {
			env := newTestEnv(Config{})
			fields := candidateFields()
			delete(fields, field)
			body, contentType := multipartBody(t, fields, "", "")

			req := httptest.NewRequest(http.MethodPost, "/candidates", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			env.server.Routes().ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Missing required fields", decodeBody(t, rec)["error"])
			assert.Empty(t, env.store.candidates, "no record written")
			assert.Empty(t, env.index.indexedCandidate, "no vector written")
		})
	}
}

func TestCreateCandidate_NoResumeFile(t *testing.T) {
	env := newTestEnv(Config{})
	body, contentType := multipartBody(t, candidateFields(), "", "")

	req := httptest.NewRequest(http.MethodPost, "/candidates", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.server.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decodeBody(t, rec)
	assert.Equal(t, "a summary", resp["summary"])

	id, err := uuid.Parse(resp["candidateId"].(string))
	require.NoError(t, err)
	assert.Equal(t, "", env.store.candidates[id].ResumeText)

	// Summary input falls back to the structured fields.
	assert.Contains(t, env.assistant.summaryInput, "Skills: Go, SQL")
	assert.Contains(t, env.assistant.summaryInput, "Experience: 10 years of backend work")
}

func TestCreateCandidate_IndexFailure(t *testing.T) {
	env := newTestEnv(Config{})
	env.index.indexErr = errBoom
	body, contentType := multipartBody(t, candidateFields(), "", "")

	req := httptest.NewRequest(http.MethodPost, "/candidates", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.server.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetCandidate(t *testing.T) {
	env := newTestEnv(Config{})
	c := &db.Candidate{ID: uuid.New(), Name: "Ada", Email: "ada@example.com", Skills: []string{"Go"}}
	env.store.candidates[c.ID] = c

	req := httptest.NewRequest(http.MethodGet, "/candidates/"+c.ID.String(), nil)
	rec := httptest.NewRecorder()
	env.server.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	candidate := resp["candidate"].(map[string]any)
	assert.Equal(t, "Ada", candidate["name"])
}

func TestGetCandidate_NotFound(t *testing.T) {
	env := newTestEnv(Config{})
	req := httptest.NewRequest(http.MethodGet, "/candidates/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	env.server.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Candidate not found", decodeBody(t, rec)["error"])
}

func TestGetCandidate_InvalidID(t *testing.T) {
	env := newTestEnv(Config{})
	req := httptest.NewRequest(http.MethodGet, "/candidates/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	env.server.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateCandidate_ReindexesProfile(t *testing.T) {
	env := newTestEnv(Config{})
	c := &db.Candidate{ID: uuid.New(), Name: "Ada", Email: "ada@example.com", Skills: []string{"Go"}}
	env.store.candidates[c.ID] = c

	payload := `{"skills":["Go","Rust"],"experience":"12 years"}`
	req := httptest.NewRequest(http.MethodPut, "/candidates/"+c.ID.String(), strings.NewReader(payload))
	rec := httptest.NewRecorder()
	env.server.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody(t, rec)
	assert.Equal(t, true, resp["success"])

	stored := env.store.candidates[c.ID]
	assert.Equal(t, []string{"Go", "Rust"}, stored.Skills)
	assert.Equal(t, "12 years", stored.Experience)
	assert.Equal(t, "Ada", stored.Name, "unset fields unchanged")

	reindexed := env.index.indexedCandidate[c.ID]
	require.NotNil(t, reindexed, "updated profile re-upserted")
	assert.Equal(t, []string{"Go", "Rust"}, reindexed.Skills)
}

func TestUpdateCandidate_NotFound(t *testing.T) {
	env := newTestEnv(Config{})
	req := httptest.NewRequest(http.MethodPut, "/candidates/"+uuid.NewString(), strings.NewReader(`{"name":"X"}`))
	rec := httptest.NewRecorder()
	env.server.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteCandidate(t *testing.T) {
	env := newTestEnv(Config{})
	c := &db.Candidate{ID: uuid.New(), Name: "Ada"}
	env.store.candidates[c.ID] = c

	req := httptest.NewRequest(http.MethodDelete, "/candidates/"+c.ID.String(), nil)
	rec := httptest.NewRecorder()
	env.server.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Candidate deleted successfully", resp["message"])
	assert.Empty(t, env.store.candidates)
	assert.Equal(t, []string{"candidate-" + c.ID.String()}, env.index.removed)
}

func TestDeleteCandidate_NotFound(t *testing.T) {
	env := newTestEnv(Config{})
	req := httptest.NewRequest(http.MethodDelete, "/candidates/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	env.server.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCandidateJobs(t *testing.T) {
	env := newTestEnv(Config{})
	c := &db.Candidate{ID: uuid.New(), Name: "Ada"}
	env.index.indexedCandidate[c.ID] = c
	env.index.jobMatches = []matching.JobMatch{
		{JobID: uuid.NewString(), Title: "Backend Engineer", Company: "Acme", Score: 88},
	}

	req := httptest.NewRequest(http.MethodGet, "/candidates/"+c.ID.String()+"/jobs?limit=5", nil)
	rec := httptest.NewRecorder()
	env.server.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	jobs := resp["matchingJobs"].([]any)
	require.Len(t, jobs, 1)
	job := jobs[0].(map[string]any)
	assert.Equal(t, "Backend Engineer", job["title"])
	assert.Equal(t, float64(88), job["score"])
}

func TestCandidateJobs_NotIndexed(t *testing.T) {
	env := newTestEnv(Config{})
	req := httptest.NewRequest(http.MethodGet, "/candidates/"+uuid.NewString()+"/jobs", nil)
	rec := httptest.NewRecorder()
	env.server.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Candidate not found", decodeBody(t, rec)["error"])
}

func TestListCandidates(t *testing.T) {
	env := newTestEnv(Config{})
	env.store.candidates[uuid.New()] = &db.Candidate{Name: "Ada"}
	env.store.candidates[uuid.New()] = &db.Candidate{Name: "Grace"}

	req := httptest.NewRequest(http.MethodGet, "/candidates", nil)
	rec := httptest.NewRecorder()
	env.server.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, float64(2), resp["total"])
	assert.Len(t, resp["candidates"].([]any), 2)
}
