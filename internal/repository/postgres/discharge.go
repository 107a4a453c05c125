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

type dischargeRepository struct {
	db *sqlx.DB
}

func NewDischargeRepository(db *sqlx.DB) repository.DischargeRepository {
	return &dischargeRepository{db: db}
}

func (r *dischargeRepository) Create(ctx context.Context, discharge *model.Discharge) error {
	query := `
		INSERT INTO discharges (id, patient_id, discharged, discharge_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	discharge.CreatedAt = time.Now()
	discharge.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		discharge.ID,
		discharge.PatientID,
		discharge.Discharged,
		discharge.DischargeDate,
		discharge.CreatedAt,
		discharge.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create discharge: %w", err)
	}
	return nil
}

func (r *dischargeRepository) List(ctx context.Context) ([]*model.Discharge, error) {
	query := `SELECT * FROM discharges ORDER BY discharge_date DESC`
	var discharges []*model.Discharge
	if err := r.db.SelectContext(ctx, &discharges, query); err != nil {
		return nil, fmt.Errorf("failed to list discharges: %w", err)
	}
	return discharges, nil
}

func (r *dischargeRepository) GetByPatient(ctx context.Context, patientID uuid.UUID) (*model.Discharge, error) {
	query := `SELECT * FROM discharges WHERE patient_id = $1`
	var discharge model.Discharge
	err := r.db.GetContext(ctx, &discharge, query, patientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("discharge", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get discharge: %w", err)
	}
	return &discharge, nil
}

func (r *dischargeRepository) ExistsForPatient(ctx context.Context, patientID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM discharges WHERE patient_id = $1 AND discharged = TRUE)`
	if err := r.db.GetContext(ctx, &exists, query, patientID); err != nil {
		return false, fmt.Errorf("failed to check discharge: %w", err)
	}
	return exists, nil
}
