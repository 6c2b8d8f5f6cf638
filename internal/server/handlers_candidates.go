package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkellner/talent-match/internal/db"
	"github.com/mkellner/talent-match/internal/resume"
	"github.com/mkellner/talent-match/internal/types"
	"github.com/mkellner/talent-match/internal/vectorstore"
)

const maxResumeUploadBytes = 10 << 20

// handleCreateCandidate accepts a multipart candidate application. The
// resume file is optional; all structured fields are required and are
// checked before any database or upstream call.
func (s *Server) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxResumeUploadBytes); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	skillsField := strings.TrimSpace(r.FormValue("skills"))
	experience := strings.TrimSpace(r.FormValue("experience"))
	education := strings.TrimSpace(r.FormValue("education"))
	if name == "" || email == "" || skillsField == "" || experience == "" || education == "" {
		s.errorResponse(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	resumeText := ""
	if file, header, err := r.FormFile("resume"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxResumeUploadBytes))
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Could not read resume file")
			return
		}
		parsed, err := resume.Extract(data, header.Header.Get("Content-Type"))
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Could not parse resume file")
			return
		}
		resumeText = parsed.FullText
	}

	candidate := &db.Candidate{
		ID:          uuid.New(),
		Name:        name,
		Email:       email,
		LinkedinURL: strings.TrimSpace(r.FormValue("linkedinUrl")),
		ResumeText:  resumeText,
		Skills:      splitSkillsField(skillsField),
		Experience:  experience,
		Education:   education,
	}

	if err := s.store.CreateCandidate(r.Context(), candidate); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	if err := s.index.IndexCandidate(r.Context(), candidate); err != nil {
		s.logger.Error("indexing candidate", zap.String("candidate_id", candidate.ID.String()), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Failed to index candidate profile")
		return
	}

	// Without an uploaded resume the summary is derived from the
	// structured fields alone.
	summaryInput := resumeText
	if summaryInput == "" {
		summaryInput = fmt.Sprintf("Name: %s\nSkills: %s\nExperience: %s\nEducation: %s",
			candidate.Name, strings.Join(candidate.Skills, ", "), candidate.Experience, candidate.Education)
	}
	summary := s.assistant.SummarizeResume(r.Context(), summaryInput)

	s.jsonResponse(w, http.StatusCreated, map[string]any{
		"success":     true,
		"candidateId": candidate.ID.String(),
		"summary":     summary,
	})
}

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 50, 100)
	offset := parseQueryInt(r, "offset", 0, 0)

	candidates, total, err := s.store.ListCandidates(r.Context(), limit, offset)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"candidates": candidates,
		"total":      total,
	})
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid candidate ID")
		return
	}

	candidate, err := s.store.GetCandidate(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if candidate == nil {
		s.errorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"candidate": candidate})
}

// handleUpdateCandidate applies non-empty fields to the stored candidate
// and re-indexes the updated profile so subsequent matches see it.
func (s *Server) handleUpdateCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid candidate ID")
		return
	}

	var req types.UpdateCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	candidate, err := s.store.GetCandidate(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if candidate == nil {
		s.errorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}

	if req.Name != "" {
		candidate.Name = req.Name
	}
	if req.Email != "" {
		candidate.Email = req.Email
	}
	if req.LinkedinURL != "" {
		candidate.LinkedinURL = req.LinkedinURL
	}
	if req.Skills != nil {
		candidate.Skills = req.Skills
	}
	if req.Experience != "" {
		candidate.Experience = req.Experience
	}
	if req.Education != "" {
		candidate.Education = req.Education
	}

	updated, err := s.store.UpdateCandidate(r.Context(), candidate)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if updated == nil {
		s.errorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}

	if err := s.index.IndexCandidate(r.Context(), updated); err != nil {
		s.logger.Error("re-indexing candidate", zap.String("candidate_id", id.String()), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Failed to index candidate profile")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":   true,
		"candidate": updated,
	})
}

func (s *Server) handleDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid candidate ID")
		return
	}

	deleted, err := s.store.DeleteCandidate(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if !deleted {
		s.errorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}

	if err := s.index.RemoveCandidate(r.Context(), id); err != nil {
		s.logger.Warn("removing candidate vector", zap.String("candidate_id", id.String()), zap.Error(err))
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Candidate deleted successfully",
	})
}

func (s *Server) handleCandidateJobs(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid candidate ID")
		return
	}
	limit := parseQueryInt(r, "limit", 10, 50)

	matches, err := s.index.JobsForCandidate(r.Context(), id, limit)
	if err != nil {
		var notFound *vectorstore.NotFoundError
		if errors.As(err, &notFound) {
			s.errorResponse(w, http.StatusNotFound, "Candidate not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Failed to find matching jobs")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"matchingJobs": matches})
}

// splitSkillsField splits a comma-separated form field into trimmed,
// non-empty skill names.
func splitSkillsField(field string) []string {
	parts := strings.Split(field, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			skills = append(skills, trimmed)
		}
	}
	return skills
}
