package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/mkellner/talent-match/internal/types"
	"github.com/mkellner/talent-match/internal/vectorstore"
)

// handleMatchJobs returns the jobs nearest to a candidate's stored vector.
func (s *Server) handleMatchJobs(w http.ResponseWriter, r *http.Request) {
	idStr := r.URL.Query().Get("candidateId")
	if idStr == "" {
		s.errorResponse(w, http.StatusBadRequest, "candidateId is required")
		return
	}
	id, err := uuid.Parse(idStr)
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

// handleEvaluateMatch runs the LLM evaluation of one candidate against one
// job. The two generations run one after the other; the assistant
// substitutes neutral fallback content when the upstream call degrades, so
// this endpoint only fails on bad input.
func (s *Server) handleEvaluateMatch(w http.ResponseWriter, r *http.Request) {
	var req types.EvaluateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	evaluation := s.assistant.EvaluateMatch(r.Context(), req.ResumeText, req.JobDescription)
	feedback := s.assistant.CandidateFeedback(r.Context(), req.ResumeText, req.JobDescription)

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"candidateId": req.CandidateID,
		"jobId":       req.JobID,
		"matchScore":  evaluation.Score,
		"evaluation":  evaluation.Feedback,
		"feedback":    feedback,
	})
}
