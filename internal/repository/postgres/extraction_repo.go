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

type extractionRepo struct {
	db *sqlx.DB
}

// NewExtractionRepo creates a new PostgreSQL-backed ExtractionRepository.
func NewExtractionRepo(db *sqlx.DB) port.ExtractionRepository {
	return &extractionRepo{db: db}
}

func (r *extractionRepo) Create(ctx context.Context, rec *domain.ExtractionRecord) error {
	rec.CreatedAt = time.Now().UTC()

	query := `INSERT INTO extraction_results
		(id, job_id, document_name, template_id, outcome, match_confidence, degraded, result, markdown, output_key, created_at)
		VALUES (:id, :job_id, :document_name, :template_id, :outcome, :match_confidence, :degraded, :result, :markdown, :output_key, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("extractionRepo.Create: %w", err)
	}
	return nil
}

func (r *extractionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ExtractionRecord, error) {
	var rec domain.ExtractionRecord
	err := r.db.GetContext(ctx, &rec, "SELECT * FROM extraction_results WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrResultNotFound
		}
		return nil, fmt.Errorf("extractionRepo.GetByID: %w", err)
	}
	return &rec, nil
}

// List returns results newest first without the heavy result payload.
func (r *extractionRepo) List(ctx context.Context, offset, limit int) ([]domain.ExtractionRecord, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM extraction_results"); err != nil {
		return nil, 0, fmt.Errorf("extractionRepo.List count: %w", err)
	}

	var recs []domain.ExtractionRecord
	err := r.db.SelectContext(ctx, &recs,
		`SELECT id, job_id, document_name, template_id, outcome, match_confidence, degraded,
			'null'::jsonb AS result, '' AS markdown, output_key, created_at
		 FROM extraction_results
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("extractionRepo.List: %w", err)
	}
	return recs, total, nil
}

func (r *extractionRepo) SetOutputKey(ctx context.Context, id uuid.UUID, key string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE extraction_results SET output_key = $1 WHERE id = $2", key, id)
	if err != nil {
		return fmt.Errorf("extractionRepo.SetOutputKey: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrResultNotFound
	}
	return nil
}
