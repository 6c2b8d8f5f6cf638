package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkellner/talent-match/internal/db"
	"github.com/mkellner/talent-match/internal/matching"
	"github.com/mkellner/talent-match/internal/types"
	"github.com/mkellner/talent-match/internal/vectorstore"
)

const defaultMatchLimit = 10

// handleCreateJob validates and stores a job posting, indexes it, and
// returns the candidates nearest to it. Validation failures reject the
// request before any record or vector is written.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req types.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	job := &db.Job{
		ID:               uuid.New(),
		Title:            req.Title,
		Company:          req.Company,
		Location:         req.Location,
		Type:             req.Type,
		Description:      req.Description,
		Requirements:     req.Requirements,
		Responsibilities: req.Responsibilities,
	}

	s.createAndMatchJob(w, r, job)
}

// handleImportJob scrapes a posting page and runs it through the normal
// job creation flow. The page text becomes the description; requirements
// and responsibilities stay empty until a recruiter edits the record.
func (s *Server) handleImportJob(w http.ResponseWriter, r *http.Request) {
	var req types.ImportJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	text, err := s.fetcher.FetchPostingText(r.Context(), req.URL)
	if err != nil {
		s.logger.Error("fetching job posting", zap.String("url", req.URL), zap.Error(err))
		s.errorResponse(w, http.StatusBadGateway, "Failed to fetch job posting")
		return
	}
	if text == "" {
		s.errorResponse(w, http.StatusUnprocessableEntity, "No readable text found at URL")
		return
	}

	job := &db.Job{
		ID:          uuid.New(),
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		Type:        req.Type,
		Description: text,
	}

	s.createAndMatchJob(w, r, job)
}

func (s *Server) createAndMatchJob(w http.ResponseWriter, r *http.Request, job *db.Job) {
	if err := s.store.CreateJob(r.Context(), job); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	if err := s.index.IndexJob(r.Context(), job); err != nil {
		s.logger.Error("indexing job", zap.String("job_id", job.ID.String()), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Failed to index job posting")
		return
	}

	// The match list is advisory; a query failure does not undo the
	// creation that already succeeded.
	candidates, err := s.index.CandidatesForJob(r.Context(), job.ID, defaultMatchLimit)
	if err != nil {
		s.logger.Warn("matching candidates for new job", zap.String("job_id", job.ID.String()), zap.Error(err))
		candidates = []matching.CandidateMatch{}
	}

	s.jsonResponse(w, http.StatusCreated, map[string]any{
		"success":            true,
		"jobId":              job.ID.String(),
		"matchingCandidates": candidates,
	})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 50, 100)
	offset := parseQueryInt(r, "offset", 0, 0)

	jobs, total, err := s.store.ListJobs(r.Context(), limit, offset)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"total": total,
	})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, "Job not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"job": job})
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	var req types.UpdateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, "Job not found")
		return
	}

	if req.Title != "" {
		job.Title = req.Title
	}
	if req.Company != "" {
		job.Company = req.Company
	}
	if req.Location != "" {
		job.Location = req.Location
	}
	if req.Type != "" {
		job.Type = req.Type
	}
	if req.Description != "" {
		job.Description = req.Description
	}
	if req.Requirements != "" {
		job.Requirements = req.Requirements
	}
	if req.Responsibilities != "" {
		job.Responsibilities = req.Responsibilities
	}

	updated, err := s.store.UpdateJob(r.Context(), job)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if updated == nil {
		s.errorResponse(w, http.StatusNotFound, "Job not found")
		return
	}

	if err := s.index.IndexJob(r.Context(), updated); err != nil {
		s.logger.Error("re-indexing job", zap.String("job_id", id.String()), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Failed to index job posting")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"job":     updated,
	})
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	deleted, err := s.store.DeleteJob(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if !deleted {
		s.errorResponse(w, http.StatusNotFound, "Job not found")
		return
	}

	if err := s.index.RemoveJob(r.Context(), id); err != nil {
		s.logger.Warn("removing job vector", zap.String("job_id", id.String()), zap.Error(err))
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Job deleted successfully",
	})
}

func (s *Server) handleJobCandidates(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job ID")
		return
	}
	limit := parseQueryInt(r, "limit", 10, 50)

	matches, err := s.index.CandidatesForJob(r.Context(), id, limit)
	if err != nil {
		var notFound *vectorstore.NotFoundError
		if errors.As(err, &notFound) {
			s.errorResponse(w, http.StatusNotFound, "Job not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Failed to find matching candidates")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"matchingCandidates": matches})
}
