package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	apperrors "github.com/hospitalms/hospital-api/pkg/errors"

	"github.com/hospitalms/hospital-api/internal/model"
	"github.com/hospitalms/hospital-api/internal/repository"
)

type diseaseRepository struct {
	db *sqlx.DB
}

func NewDiseaseRepository(db *sqlx.DB) repository.DiseaseRepository {
	return &diseaseRepository{db: db}
}

func (r *diseaseRepository) Get(ctx context.Context, id uuid.UUID) (*model.Disease, error) {
	query := `SELECT * FROM diseases WHERE id = $1`
	var disease model.Disease
	err := r.db.GetContext(ctx, &disease, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("disease", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get disease: %w", err)
	}
	return &disease, nil
}

func (r *diseaseRepository) List(ctx context.Context) ([]*model.Disease, error) {
	query := `SELECT * FROM diseases ORDER BY name`
	var diseases []*model.Disease
	if err := r.db.SelectContext(ctx, &diseases, query); err != nil {
		return nil, fmt.Errorf("failed to list diseases: %w", err)
	}
	return diseases, nil
}

func (r *diseaseRepository) CreateIfMissing(ctx context.Context, disease *model.Disease) error {
	query := `
		INSERT INTO diseases (id, name, is_terminal, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO NOTHING
	`
	now := time.Now()
	_, err := r.db.ExecContext(ctx, query, disease.ID, disease.Name, disease.IsTerminal, now, now)
	if err != nil {
		return fmt.Errorf("failed to seed disease: %w", err)
	}
	return nil
}
