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

type treatmentRepository struct {
	db *sqlx.DB
}

func NewTreatmentRepository(db *sqlx.DB) repository.TreatmentRepository {
	return &treatmentRepository{db: db}
}

func (r *treatmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Treatment, error) {
	query := `SELECT * FROM treatments WHERE id = $1`
	var treatment model.Treatment
	err := r.db.GetContext(ctx, &treatment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("treatment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get treatment: %w", err)
	}
	return &treatment, nil
}

func (r *treatmentRepository) List(ctx context.Context) ([]*model.Treatment, error) {
	query := `SELECT * FROM treatments ORDER BY created_at`
	var treatments []*model.Treatment
	if err := r.db.SelectContext(ctx, &treatments, query); err != nil {
		return nil, fmt.Errorf("failed to list treatments: %w", err)
	}
	return treatments, nil
}

func (r *treatmentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Treatment, error) {
	query := `SELECT * FROM treatments WHERE doctor_id = $1 ORDER BY created_at`
	var treatments []*model.Treatment
	if err := r.db.SelectContext(ctx, &treatments, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list treatments by doctor: %w", err)
	}
	return treatments, nil
}

func (r *treatmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM treatments WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete treatment: %w", err)
	}
	return nil
}

func (r *treatmentRepository) InTx(ctx context.Context, fn func(tx repository.TreatmentTx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&treatmentTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type treatmentTx struct {
	tx *sqlx.Tx
}

// DoctorForUpdate locks the doctor row for the remainder of the
// transaction, serializing counter updates per doctor.
func (t *treatmentTx) DoctorForUpdate(ctx context.Context, doctorID uuid.UUID) (*model.Doctor, error) {
	query := `SELECT * FROM doctors WHERE id = $1 FOR UPDATE`
	var doctor model.Doctor
	err := t.tx.GetContext(ctx, &doctor, query, doctorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("doctor", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock doctor row: %w", err)
	}
	return &doctor, nil
}

func (t *treatmentTx) GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	query := `SELECT * FROM users WHERE id = $1`
	var user model.User
	err := t.tx.GetContext(ctx, &user, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("user", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (t *treatmentTx) GetTreatment(ctx context.Context, id uuid.UUID) (*model.Treatment, error) {
	query := `SELECT * FROM treatments WHERE id = $1 FOR UPDATE`
	var treatment model.Treatment
	err := t.tx.GetContext(ctx, &treatment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("treatment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get treatment: %w", err)
	}
	return &treatment, nil
}

func (t *treatmentTx) InsertTreatment(ctx context.Context, treatment *model.Treatment) error {
	query := `
		INSERT INTO treatments (id, patient_id, doctor_id, treatment_options, success, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	treatment.CreatedAt = time.Now()
	treatment.UpdatedAt = time.Now()

	_, err := t.tx.ExecContext(ctx, query,
		treatment.ID,
		treatment.PatientID,
		treatment.DoctorID,
		treatment.TreatmentOptions,
		treatment.Success,
		treatment.CreatedAt,
		treatment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert treatment: %w", err)
	}
	return nil
}

func (t *treatmentTx) UpdateTreatment(ctx context.Context, treatment *model.Treatment) error {
	query := `UPDATE treatments SET treatment_options = $1, success = $2, updated_at = $3 WHERE id = $4`
	_, err := t.tx.ExecContext(ctx, query,
		treatment.TreatmentOptions,
		treatment.Success,
		time.Now(),
		treatment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update treatment: %w", err)
	}
	return nil
}

func (t *treatmentTx) SetDoctorIncorrectCount(ctx context.Context, doctorID uuid.UUID, count int) error {
	query := `UPDATE doctors SET incorrect_treatments = $1, updated_at = $2 WHERE id = $3`
	_, err := t.tx.ExecContext(ctx, query, count, time.Now(), doctorID)
	if err != nil {
		return fmt.Errorf("failed to update doctor counter: %w", err)
	}
	return nil
}

func (t *treatmentTx) DeactivateUser(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE users SET is_active = FALSE, updated_at = $1 WHERE id = $2`
	_, err := t.tx.ExecContext(ctx, query, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	return nil
}
