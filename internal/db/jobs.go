package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateJob inserts a new job posting record.
func (db *DB) CreateJob(ctx context.Context, j *Job) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO jobs (id, title, company, location, type, description, requirements, responsibilities)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING posted_at, updated_at`,
		j.ID, j.Title, j.Company, j.Location, j.Type, j.Description, j.Requirements, j.Responsibilities,
	).Scan(&j.PostedAt, &j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by ID. Returns (nil, nil) when absent.
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	var j Job
	err := db.pool.QueryRow(ctx,
		`SELECT id, title, company, location, type, description, requirements, responsibilities, posted_at, updated_at
		 FROM jobs WHERE id = $1`,
		id,
	).Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.Type, &j.Description,
		&j.Requirements, &j.Responsibilities, &j.PostedAt, &j.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &j, nil
}

// ListJobs returns job postings ordered by posting time, newest first,
// plus the total count.
func (db *DB) ListJobs(ctx context.Context, limit, offset int) ([]Job, int, error) {
	var total int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, title, company, location, type, description, requirements, responsibilities, posted_at, updated_at
		 FROM jobs ORDER BY posted_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]Job, 0)
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.Type, &j.Description,
			&j.Requirements, &j.Responsibilities, &j.PostedAt, &j.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, total, nil
}

// UpdateJob overwrites the mutable fields of a job record. Returns
// (nil, nil) when the job does not exist.
func (db *DB) UpdateJob(ctx context.Context, j *Job) (*Job, error) {
	err := db.pool.QueryRow(ctx,
		`UPDATE jobs
		 SET title = $2, company = $3, location = $4, type = $5,
		     description = $6, requirements = $7, responsibilities = $8, updated_at = NOW()
		 WHERE id = $1
		 RETURNING posted_at, updated_at`,
		j.ID, j.Title, j.Company, j.Location, j.Type, j.Description, j.Requirements, j.Responsibilities,
	).Scan(&j.PostedAt, &j.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	return j, nil
}

// DeleteJob removes a job record. Reports whether a row was deleted.
func (db *DB) DeleteJob(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete job: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
