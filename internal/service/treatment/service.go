package treatment

import (
	"context"

	"github.com/google/uuid"

	"github.com/hospitalms/hospital-api/internal/catalog"
	"github.com/hospitalms/hospital-api/internal/model"
	"github.com/hospitalms/hospital-api/internal/repository"
	apperrors "github.com/hospitalms/hospital-api/pkg/errors"
	"github.com/hospitalms/hospital-api/pkg/metrics"
)

// DeactivationNotifier is told when a doctor crosses the
// incorrect-treatment threshold. Notification failures are not
// allowed to fail the treatment write.
type DeactivationNotifier interface {
	NotifyDoctorDeactivated(ctx context.Context, doctor *model.Doctor)
}

// Service is the treatment validation and doctor accountability
// engine. Every treatment write runs inside one transaction that
// locks the doctor row, so the counter is serialized per doctor.
type Service struct {
	repo        repository.TreatmentRepository
	patientRepo repository.PatientRepository
	mode        catalog.ValidationMode
	notifier    DeactivationNotifier
	metrics     *metrics.Metrics
}

func NewService(
	repo repository.TreatmentRepository,
	patientRepo repository.PatientRepository,
	mode catalog.ValidationMode,
	notifier DeactivationNotifier,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		mode:        mode,
		notifier:    notifier,
		metrics:     m,
	}
}

// Record creates a treatment for the doctor's patient. Success is
// taken from the request when present, otherwise derived from the
// configured validation mode. A failed treatment increments the
// doctor's counter; at the threshold the doctor's account is
// deactivated and further writes are rejected.
func (s *Service) Record(ctx context.Context, doctorID uuid.UUID, req *model.CreateTreatmentRequest) (*model.Treatment, error) {
	if doctorID == uuid.Nil {
		return nil, apperrors.Validation("treatment requires a doctor", nil)
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, apperrors.Validation("invalid patient ID", err)
	}

	patient, err := s.patientRepo.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient.DoctorID != doctorID {
		return nil, apperrors.Forbidden("patient is assigned to another doctor", nil)
	}

	success, err := s.resolveSuccess(ctx, patientID, req.TreatmentOptions, req.Success)
	if err != nil {
		return nil, err
	}

	treatment := &model.Treatment{
		Base:             model.Base{ID: uuid.New()},
		PatientID:        patientID,
		DoctorID:         doctorID,
		TreatmentOptions: req.TreatmentOptions,
		Success:          success,
	}

	var deactivated *model.Doctor
	err = s.repo.InTx(ctx, func(tx repository.TreatmentTx) error {
		doctor, err := tx.DoctorForUpdate(ctx, doctorID)
		if err != nil {
			return err
		}
		user, err := tx.GetUser(ctx, doctor.UserID)
		if err != nil {
			return err
		}
		if !user.Active {
			return apperrors.Forbidden("doctor account is deactivated", nil)
		}

		if err := tx.InsertTreatment(ctx, treatment); err != nil {
			return err
		}

		if !success {
			doctor.IncorrectTreatments++
			if err := tx.SetDoctorIncorrectCount(ctx, doctorID, doctor.IncorrectTreatments); err != nil {
				return err
			}
		}

		if doctor.IncorrectTreatments >= model.IncorrectTreatmentThreshold {
			if err := tx.DeactivateUser(ctx, doctor.UserID); err != nil {
				return err
			}
			deactivated = doctor
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.observe(success, deactivated)
	if deactivated != nil && s.notifier != nil {
		s.notifier.NotifyDoctorDeactivated(ctx, deactivated)
	}
	return treatment, nil
}

// Update edits an existing treatment. The counter delta is re-derived
// from the success transition, never double-counted: false→true
// decrements once (clamped at zero), true→false increments once, and
// no-change transitions leave the counter untouched.
func (s *Service) Update(ctx context.Context, doctorID, treatmentID uuid.UUID, req *model.UpdateTreatmentRequest) (*model.Treatment, error) {
	var updated *model.Treatment
	var deactivated *model.Doctor

	err := s.repo.InTx(ctx, func(tx repository.TreatmentTx) error {
		existing, err := tx.GetTreatment(ctx, treatmentID)
		if err != nil {
			return err
		}
		if existing.DoctorID != doctorID {
			return apperrors.Forbidden("treatment belongs to another doctor", nil)
		}

		doctor, err := tx.DoctorForUpdate(ctx, existing.DoctorID)
		if err != nil {
			return err
		}
		user, err := tx.GetUser(ctx, doctor.UserID)
		if err != nil {
			return err
		}
		if !user.Active {
			return apperrors.Forbidden("doctor account is deactivated", nil)
		}

		options := existing.TreatmentOptions
		if req.TreatmentOptions != nil {
			options = *req.TreatmentOptions
		}

		newSuccess := existing.Success
		if req.Success != nil {
			newSuccess = *req.Success
		} else if req.TreatmentOptions != nil {
			newSuccess, err = s.resolveSuccess(ctx, existing.PatientID, options, nil)
			if err != nil {
				return err
			}
		}

		switch {
		case existing.Success && !newSuccess:
			doctor.IncorrectTreatments++
		case !existing.Success && newSuccess:
			if doctor.IncorrectTreatments > 0 {
				doctor.IncorrectTreatments--
			}
		}

		existing.TreatmentOptions = options
		existing.Success = newSuccess
		if err := tx.UpdateTreatment(ctx, existing); err != nil {
			return err
		}
		if err := tx.SetDoctorIncorrectCount(ctx, doctor.ID, doctor.IncorrectTreatments); err != nil {
			return err
		}

		if doctor.IncorrectTreatments >= model.IncorrectTreatmentThreshold {
			if err := tx.DeactivateUser(ctx, doctor.UserID); err != nil {
				return err
			}
			deactivated = doctor
		}

		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.observe(updated.Success, deactivated)
	if deactivated != nil && s.notifier != nil {
		s.notifier.NotifyDoctorDeactivated(ctx, deactivated)
	}
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Treatment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*model.Treatment, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Treatment, error) {
	return s.repo.ListByDoctor(ctx, doctorID)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Options returns the canonical treatment catalog.
func (s *Service) Options() []string {
	return catalog.TreatmentOptions
}

func (s *Service) resolveSuccess(ctx context.Context, patientID uuid.UUID, options string, explicit *bool) (bool, error) {
	if explicit != nil {
		return *explicit, nil
	}
	if s.mode == catalog.ModeDisease {
		diseases, err := s.patientRepo.GetDiseases(ctx, patientID)
		if err != nil {
			return false, err
		}
		names := make([]string, len(diseases))
		for i, d := range diseases {
			names[i] = d.Name
		}
		return catalog.ValidForDiseases(options, names), nil
	}
	return catalog.ValidAgainstCatalog(options), nil
}

func (s *Service) observe(success bool, deactivated *model.Doctor) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "incorrect"
		s.metrics.IncorrectTreatments.Inc()
	}
	s.metrics.TreatmentsRecorded.WithLabelValues(outcome).Inc()
	if deactivated != nil {
		s.metrics.DoctorsDeactivated.Inc()
	}
}
