package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateCandidate inserts a new candidate record.
func (db *DB) CreateCandidate(ctx context.Context, c *Candidate) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO candidates (id, name, email, linkedin_url, resume_text, skills, experience, education)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		c.ID, c.Name, c.Email, c.LinkedinURL, c.ResumeText, c.Skills, c.Experience, c.Education,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

// GetCandidate retrieves a candidate by ID. Returns (nil, nil) when absent.
func (db *DB) GetCandidate(ctx context.Context, id uuid.UUID) (*Candidate, error) {
	var c Candidate
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, email, linkedin_url, resume_text, skills, experience, education, created_at, updated_at
		 FROM candidates WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.Email, &c.LinkedinURL, &c.ResumeText, &c.Skills,
		&c.Experience, &c.Education, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return &c, nil
}

// ListCandidates returns candidates ordered by creation time, newest
// first, plus the total count.
func (db *DB) ListCandidates(ctx context.Context, limit, offset int) ([]Candidate, int, error) {
	var total int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM candidates`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count candidates: %w", err)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, name, email, linkedin_url, resume_text, skills, experience, education, created_at, updated_at
		 FROM candidates ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	candidates := make([]Candidate, 0)
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.LinkedinURL, &c.ResumeText,
			&c.Skills, &c.Experience, &c.Education, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list candidates: %w", err)
	}

	return candidates, total, nil
}

// UpdateCandidate overwrites the mutable fields of a candidate record.
// Returns (nil, nil) when the candidate does not exist.
func (db *DB) UpdateCandidate(ctx context.Context, c *Candidate) (*Candidate, error) {
	err := db.pool.QueryRow(ctx,
		`UPDATE candidates
		 SET name = $2, email = $3, linkedin_url = $4, resume_text = $5,
		     skills = $6, experience = $7, education = $8, updated_at = NOW()
		 WHERE id = $1
		 RETURNING created_at, updated_at`,
		c.ID, c.Name, c.Email, c.LinkedinURL, c.ResumeText, c.Skills, c.Experience, c.Education,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update candidate: %w", err)
	}
	return c, nil
}

// DeleteCandidate removes a candidate record. Reports whether a row was
// deleted.
func (db *DB) DeleteCandidate(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete candidate: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
