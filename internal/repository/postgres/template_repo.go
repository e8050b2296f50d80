package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"bolx/internal/domain"
	"bolx/internal/port"
)

type templateRepo struct {
	db *sqlx.DB
}

// NewTemplateRepo creates a new PostgreSQL-backed TemplateRepository.
func NewTemplateRepo(db *sqlx.DB) port.TemplateRepository {
	return &templateRepo{db: db}
}

// Upsert inserts a template or replaces the stored definition. Saving an
// unchanged version bumps updated_at only.
func (r *templateRepo) Upsert(ctx context.Context, rec *domain.TemplateRecord) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	query := `INSERT INTO templates (id, name, version, definition, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			version = EXCLUDED.version,
			definition = EXCLUDED.definition,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Name, rec.Version, rec.Definition, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("templateRepo.Upsert: %w", err)
	}
	return nil
}

func (r *templateRepo) GetByID(ctx context.Context, id string) (*domain.TemplateRecord, error) {
	var rec domain.TemplateRecord
	err := r.db.GetContext(ctx, &rec,
		"SELECT id, name, version, definition, created_at, updated_at FROM templates WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("templateRepo.GetByID: %w", err)
	}
	return &rec, nil
}

func (r *templateRepo) List(ctx context.Context) ([]domain.TemplateRecord, error) {
	var recs []domain.TemplateRecord
	err := r.db.SelectContext(ctx, &recs,
		"SELECT id, name, version, definition, created_at, updated_at FROM templates ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("templateRepo.List: %w", err)
	}
	return recs, nil
}

func (r *templateRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM templates WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("templateRepo.Delete: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("templateRepo.Delete rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}
