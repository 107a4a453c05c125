package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hospitalms/hospital-api/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*model.User, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, doctor *model.Doctor) error
	Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error)
	Update(ctx context.Context, doctor *model.Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*model.Doctor, error)
	Count(ctx context.Context) (int, error)
}

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	Update(ctx context.Context, patient *model.Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*model.Patient, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Patient, error)
	Count(ctx context.Context) (int, error)
	CountByDoctor(ctx context.Context, doctorID uuid.UUID) (int, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	ReplaceDiseases(ctx context.Context, patientID uuid.UUID, diseaseIDs []uuid.UUID) error
	GetDiseases(ctx context.Context, patientID uuid.UUID) ([]*model.Disease, error)
	DeleteDischarged(ctx context.Context) (int64, error)
}

type DiseaseRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Disease, error)
	List(ctx context.Context) ([]*model.Disease, error)
	CreateIfMissing(ctx context.Context, disease *model.Disease) error
}

// TreatmentTx is the unit of work for the treatment write path. All
// operations run inside one transaction with the doctor row locked, so
// counter mutations are serialized per doctor.
type TreatmentTx interface {
	DoctorForUpdate(ctx context.Context, doctorID uuid.UUID) (*model.Doctor, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error)
	GetTreatment(ctx context.Context, id uuid.UUID) (*model.Treatment, error)
	InsertTreatment(ctx context.Context, treatment *model.Treatment) error
	UpdateTreatment(ctx context.Context, treatment *model.Treatment) error
	SetDoctorIncorrectCount(ctx context.Context, doctorID uuid.UUID, count int) error
	DeactivateUser(ctx context.Context, userID uuid.UUID) error
}

type TreatmentRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Treatment, error)
	List(ctx context.Context) ([]*model.Treatment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Treatment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// InTx runs fn inside a single transaction; a non-nil error rolls
	// back everything fn did.
	InTx(ctx context.Context, fn func(tx TreatmentTx) error) error
}

type DischargeRepository interface {
	Create(ctx context.Context, discharge *model.Discharge) error
	List(ctx context.Context) ([]*model.Discharge, error)
	GetByPatient(ctx context.Context, patientID uuid.UUID) (*model.Discharge, error)
	ExistsForPatient(ctx context.Context, patientID uuid.UUID) (bool, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}
