// Package matching orchestrates embedding generation and vector index
// operations for candidates and jobs: the write path (embed then upsert)
// and the similarity query path (fetch then query the opposite type).
package matching

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkellner/talent-match/internal/db"
	"github.com/mkellner/talent-match/internal/embedding"
	"github.com/mkellner/talent-match/internal/vectorstore"
)

// Record type discriminators stored in vector metadata. Queries are always
// scoped to the opposite type; without the discriminator, a candidate
// lookup could return other candidates.
const (
	TypeCandidate = "candidate"
	TypeJob       = "job"
)

// VectorIndex is the slice of the vector store client this service needs.
type VectorIndex interface {
	Upsert(ctx context.Context, id string, values []float32, metadata vectorstore.Metadata) error
	Fetch(ctx context.Context, id string) ([]float32, error)
	Query(ctx context.Context, vector []float32, typeFilter string, topK int) ([]vectorstore.Match, error)
	Delete(ctx context.Context, id string) error
}

// JobMatch is one job result for a candidate similarity query. Score is on
// the canonical 0-100 scale.
type JobMatch struct {
	JobID   string `json:"jobId"`
	Title   string `json:"title"`
	Company string `json:"company"`
	Score   int    `json:"score"`
}

// CandidateMatch is one candidate result for a job similarity query.
type CandidateMatch struct {
	CandidateID string   `json:"candidateId"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	LinkedinURL string   `json:"linkedinUrl,omitempty"`
	Skills      []string `json:"skills"`
	Score       int      `json:"score"`
}

// Service composes the embedding provider and the vector index.
type Service struct {
	embedder embedding.Provider
	index    VectorIndex
	logger   *zap.Logger
}

// NewService creates a matching service. Dependencies are injected; there
// are no package-level client singletons.
func NewService(embedder embedding.Provider, index VectorIndex, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{embedder: embedder, index: index, logger: log}
}

// VectorID builds the composite key a record is stored under.
func VectorID(recordType string, id uuid.UUID) string {
	return recordType + "-" + id.String()
}

// IndexCandidate embeds a candidate profile and upserts it into the index.
// Re-indexing the same candidate overwrites the prior vector and metadata.
func (s *Service) IndexCandidate(ctx context.Context, c *db.Candidate) error {
	text := candidateProfileText(c)

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed candidate profile: %w", err)
	}

	metadata := vectorstore.Metadata{
		"type":   TypeCandidate,
		"id":     c.ID.String(),
		"name":   c.Name,
		"email":  c.Email,
		"skills": c.Skills,
	}
	if c.LinkedinURL != "" {
		metadata["linkedinUrl"] = c.LinkedinURL
	}

	if err := s.index.Upsert(ctx, VectorID(TypeCandidate, c.ID), vector, metadata); err != nil {
		return fmt.Errorf("upsert candidate vector: %w", err)
	}

	s.logger.Info("indexed candidate profile",
		zap.String("candidate_id", c.ID.String()),
		zap.Int("dimensions", len(vector)),
	)
	return nil
}

// IndexJob embeds a job description and upserts it into the index.
func (s *Service) IndexJob(ctx context.Context, j *db.Job) error {
	text := jobDescriptionText(j)

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed job description: %w", err)
	}

	metadata := vectorstore.Metadata{
		"type":    TypeJob,
		"id":      j.ID.String(),
		"title":   j.Title,
		"company": j.Company,
	}

	if err := s.index.Upsert(ctx, VectorID(TypeJob, j.ID), vector, metadata); err != nil {
		return fmt.Errorf("upsert job vector: %w", err)
	}

	s.logger.Info("indexed job description",
		zap.String("job_id", j.ID.String()),
		zap.Int("dimensions", len(vector)),
	)
	return nil
}

// RemoveCandidate deletes a candidate's vector from the index.
func (s *Service) RemoveCandidate(ctx context.Context, id uuid.UUID) error {
	return s.index.Delete(ctx, VectorID(TypeCandidate, id))
}

// RemoveJob deletes a job's vector from the index.
func (s *Service) RemoveJob(ctx context.Context, id uuid.UUID) error {
	return s.index.Delete(ctx, VectorID(TypeJob, id))
}

// JobsForCandidate returns up to limit jobs nearest to the stored
// candidate vector, sorted by descending score. Fails with the index's
// not-found error when the candidate has no stored vector.
func (s *Service) JobsForCandidate(ctx context.Context, candidateID uuid.UUID, limit int) ([]JobMatch, error) {
	vector, err := s.index.Fetch(ctx, VectorID(TypeCandidate, candidateID))
	if err != nil {
		return nil, err
	}

	matches, err := s.index.Query(ctx, vector, TypeJob, limit)
	if err != nil {
		return nil, fmt.Errorf("query jobs for candidate: %w", err)
	}

	results := make([]JobMatch, 0, len(matches))
	for _, m := range matches {
		results = append(results, JobMatch{
			JobID:   metadataString(m.Metadata, "id"),
			Title:   metadataString(m.Metadata, "title"),
			Company: metadataString(m.Metadata, "company"),
			Score:   similarityToScore(m.Score),
		})
	}
	return results, nil
}

// CandidatesForJob returns up to limit candidates nearest to the stored
// job vector, sorted by descending score.
func (s *Service) CandidatesForJob(ctx context.Context, jobID uuid.UUID, limit int) ([]CandidateMatch, error) {
	vector, err := s.index.Fetch(ctx, VectorID(TypeJob, jobID))
	if err != nil {
		return nil, err
	}

	matches, err := s.index.Query(ctx, vector, TypeCandidate, limit)
	if err != nil {
		return nil, fmt.Errorf("query candidates for job: %w", err)
	}

	results := make([]CandidateMatch, 0, len(matches))
	for _, m := range matches {
		results = append(results, CandidateMatch{
			CandidateID: metadataString(m.Metadata, "id"),
			Name:        metadataString(m.Metadata, "name"),
			Email:       metadataString(m.Metadata, "email"),
			LinkedinURL: metadataString(m.Metadata, "linkedinUrl"),
			Skills:      metadataStrings(m.Metadata, "skills"),
			Score:       similarityToScore(m.Score),
		})
	}
	return results, nil
}

// candidateProfileText concatenates the fields a candidate's embedding is
// derived from. Deterministic: re-indexing an unchanged profile embeds the
// same text.
func candidateProfileText(c *db.Candidate) string {
	return fmt.Sprintf("Name: %s\nSkills: %s\nExperience: %s\nEducation: %s\nResume: %s",
		c.Name, strings.Join(c.Skills, ", "), c.Experience, c.Education, c.ResumeText)
}

func jobDescriptionText(j *db.Job) string {
	return fmt.Sprintf("Title: %s\nCompany: %s\nDescription: %s\nRequirements: %s\nResponsibilities: %s",
		j.Title, j.Company, j.Description, j.Requirements, j.Responsibilities)
}

// similarityToScore converts cosine similarity in [0,1] to the canonical
// 0-100 scale used at every API boundary.
func similarityToScore(similarity float64) int {
	score := int(math.Round(similarity * 100))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func metadataString(md vectorstore.Metadata, key string) string {
	if md == nil {
		return ""
	}
	v, _ := md[key].(string)
	return v
}

// metadataStrings handles both []string (written locally) and []any
// (round-tripped through JSON).
func metadataStrings(md vectorstore.Metadata, key string) []string {
	if md == nil {
		return []string{}
	}
	switch v := md[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}
