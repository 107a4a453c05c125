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

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (id, name, doctor_id, time_admitted, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.Name,
		patient.DoctorID,
		patient.TimeAdmitted,
		patient.Active,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE id = $1`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `UPDATE patients SET name = $1, is_active = $2, updated_at = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, patient.Name, patient.Active, time.Now(), patient.ID)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Treatments and join rows cascade at the schema level.
	query := `DELETE FROM patients WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	query := `SELECT * FROM patients ORDER BY time_admitted`
	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Patient, error) {
	query := `SELECT * FROM patients WHERE doctor_id = $1 ORDER BY time_admitted`
	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list patients by doctor: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM patients`); err != nil {
		return 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return count, nil
}

func (r *patientRepository) CountByDoctor(ctx context.Context, doctorID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM patients WHERE doctor_id = $1`
	if err := r.db.GetContext(ctx, &count, query, doctorID); err != nil {
		return 0, fmt.Errorf("failed to count patients by doctor: %w", err)
	}
	return count, nil
}

func (r *patientRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE patients SET is_active = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set patient active flag: %w", err)
	}
	return nil
}

func (r *patientRepository) ReplaceDiseases(ctx context.Context, patientID uuid.UUID, diseaseIDs []uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM patient_diseases WHERE patient_id = $1`, patientID); err != nil {
		return fmt.Errorf("failed to clear patient diseases: %w", err)
	}

	for _, diseaseID := range diseaseIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO patient_diseases (patient_id, disease_id) VALUES ($1, $2)`,
			patientID, diseaseID,
		)
		if err != nil {
			return fmt.Errorf("failed to attach disease: %w", err)
		}
	}

	return tx.Commit()
}

func (r *patientRepository) GetDiseases(ctx context.Context, patientID uuid.UUID) ([]*model.Disease, error) {
	query := `
		SELECT d.* FROM diseases d
		JOIN patient_diseases pd ON pd.disease_id = d.id
		WHERE pd.patient_id = $1
		ORDER BY d.name
	`
	var diseases []*model.Disease
	if err := r.db.SelectContext(ctx, &diseases, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to get patient diseases: %w", err)
	}
	return diseases, nil
}

func (r *patientRepository) DeleteDischarged(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM patients
		WHERE id IN (SELECT patient_id FROM discharges WHERE discharged = TRUE)
	`
	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to purge discharged patients: %w", err)
	}
	return res.RowsAffected()
}
