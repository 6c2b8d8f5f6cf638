// Package server provides the HTTP REST API for the talent matcher.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mkellner/talent-match/internal/ai"
	"github.com/mkellner/talent-match/internal/db"
	"github.com/mkellner/talent-match/internal/matching"
)

// RecordStore is the database surface the handlers use.
type RecordStore interface {
	CreateCandidate(ctx context.Context, c *db.Candidate) error
	GetCandidate(ctx context.Context, id uuid.UUID) (*db.Candidate, error)
	ListCandidates(ctx context.Context, limit, offset int) ([]db.Candidate, int, error)
	UpdateCandidate(ctx context.Context, c *db.Candidate) (*db.Candidate, error)
	DeleteCandidate(ctx context.Context, id uuid.UUID) (bool, error)

	CreateJob(ctx context.Context, j *db.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*db.Job, error)
	ListJobs(ctx context.Context, limit, offset int) ([]db.Job, int, error)
	UpdateJob(ctx context.Context, j *db.Job) (*db.Job, error)
	DeleteJob(ctx context.Context, id uuid.UUID) (bool, error)

	CreateAccount(ctx context.Context, a *db.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*db.Account, error)
}

// MatchIndex is the vector matching surface the handlers use.
type MatchIndex interface {
	IndexCandidate(ctx context.Context, c *db.Candidate) error
	IndexJob(ctx context.Context, j *db.Job) error
	RemoveCandidate(ctx context.Context, id uuid.UUID) error
	RemoveJob(ctx context.Context, id uuid.UUID) error
	JobsForCandidate(ctx context.Context, candidateID uuid.UUID, limit int) ([]matching.JobMatch, error)
	CandidatesForJob(ctx context.Context, jobID uuid.UUID, limit int) ([]matching.CandidateMatch, error)
}

// Assistant is the LLM surface the handlers use. Its methods never fail;
// degraded upstream calls come back as fallback content.
type Assistant interface {
	EvaluateMatch(ctx context.Context, resumeText, jobDescription string) ai.Evaluation
	SummarizeResume(ctx context.Context, resumeText string) string
	CandidateFeedback(ctx context.Context, resumeText, jobDescription string) string
}

// PostingFetcher retrieves readable job posting text from a URL.
type PostingFetcher interface {
	FetchPostingText(ctx context.Context, rawURL string) (string, error)
}

// Config holds server configuration.
type Config struct {
	Port        int
	RequireAuth bool
	JWTSecret   string
}

// Server represents the HTTP server.
type Server struct {
	httpServer  *http.Server
	store       RecordStore
	index       MatchIndex
	assistant   Assistant
	fetcher     PostingFetcher
	jwtService  *JWTService
	requireAuth bool
	logger      *zap.Logger
}

// New creates a new server instance. All collaborators are injected.
func New(cfg Config, store RecordStore, index MatchIndex, assistant Assistant, fetcher PostingFetcher, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		store:       store,
		index:       index,
		assistant:   assistant,
		fetcher:     fetcher,
		jwtService:  NewJWTService(cfg.JWTSecret),
		requireAuth: cfg.RequireAuth,
		logger:      log,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	return s
}

// Routes builds the route table.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	// Candidate endpoints
	mux.HandleFunc("POST /candidates", s.protected(s.handleCreateCandidate))
	mux.HandleFunc("GET /candidates", s.handleListCandidates)
	mux.HandleFunc("GET /candidates/{id}", s.handleGetCandidate)
	mux.HandleFunc("PUT /candidates/{id}", s.protected(s.handleUpdateCandidate))
	mux.HandleFunc("DELETE /candidates/{id}", s.protected(s.handleDeleteCandidate))
	mux.HandleFunc("GET /candidates/{id}/jobs", s.handleCandidateJobs)

	// Job endpoints
	mux.HandleFunc("POST /jobs", s.protected(s.handleCreateJob))
	mux.HandleFunc("POST /jobs/import", s.protected(s.handleImportJob))
	mux.HandleFunc("GET /jobs", s.handleListJobs)
	mux.HandleFunc("GET /jobs/{id}", s.handleGetJob)
	mux.HandleFunc("PUT /jobs/{id}", s.protected(s.handleUpdateJob))
	mux.HandleFunc("DELETE /jobs/{id}", s.protected(s.handleDeleteJob))
	mux.HandleFunc("GET /jobs/{id}/candidates", s.handleJobCandidates)

	// Match endpoints
	mux.HandleFunc("GET /match", s.handleMatchJobs)
	mux.HandleFunc("POST /match", s.handleEvaluateMatch)

	// Auth endpoints
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)

	return s.withLogging(s.withCORS(mux))
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
