package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bolx/internal/domain"
	"bolx/internal/port"
)

type jobRepo struct {
	db *sqlx.DB
}

// NewJobRepo creates a new PostgreSQL-backed JobRepository.
func NewJobRepo(db *sqlx.DB) port.JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) Create(ctx context.Context, job *domain.ExtractionJob) error {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = domain.JobStatusQueued
	}

	query := `INSERT INTO extraction_jobs (id, source_key, status, attempts, last_error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.SourceKey, job.Status, job.Attempts, job.LastError, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("jobRepo.Create: %w", err)
	}
	return nil
}

func (r *jobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ExtractionJob, error) {
	var job domain.ExtractionJob
	err := r.db.GetContext(ctx, &job, "SELECT * FROM extraction_jobs WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("jobRepo.GetByID: %w", err)
	}
	return &job, nil
}

// ClaimQueued moves up to limit of the oldest queued jobs to processing and
// increments their attempt counter. Concurrent workers never claim the same
// job.
func (r *jobRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.ExtractionJob, error) {
	query := `UPDATE extraction_jobs SET
			status = $1,
			attempts = attempts + 1,
			updated_at = NOW()
		WHERE id IN (
			SELECT id FROM extraction_jobs
			WHERE status = $2
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`

	var jobs []domain.ExtractionJob
	err := r.db.SelectContext(ctx, &jobs, query, domain.JobStatusProcessing, domain.JobStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("jobRepo.ClaimQueued: %w", err)
	}
	return jobs, nil
}

func (r *jobRepo) MarkCompleted(ctx context.Context, id, resultID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE extraction_jobs SET status = $1, result_id = $2, last_error = '', updated_at = $3 WHERE id = $4`,
		domain.JobStatusCompleted, resultID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("jobRepo.MarkCompleted: %w", err)
	}
	return nil
}

// MarkFailed records the failure reason. With requeue set the job goes back
// to the queue for another attempt.
func (r *jobRepo) MarkFailed(ctx context.Context, id uuid.UUID, reason string, requeue bool) error {
	status := domain.JobStatusFailed
	if requeue {
		status = domain.JobStatusQueued
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE extraction_jobs SET status = $1, last_error = $2, updated_at = $3 WHERE id = $4`,
		status, reason, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("jobRepo.MarkFailed: %w", err)
	}
	return nil
}
