package patient

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hospitalms/hospital-api/internal/model"
	"github.com/hospitalms/hospital-api/internal/repository"
	apperrors "github.com/hospitalms/hospital-api/pkg/errors"
	"github.com/hospitalms/hospital-api/pkg/metrics"
)

type Service struct {
	repo          repository.PatientRepository
	dischargeRepo repository.DischargeRepository
	diseaseRepo   repository.DiseaseRepository
	metrics       *metrics.Metrics
}

func NewService(
	repo repository.PatientRepository,
	dischargeRepo repository.DischargeRepository,
	diseaseRepo repository.DiseaseRepository,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:          repo,
		dischargeRepo: dischargeRepo,
		diseaseRepo:   diseaseRepo,
		metrics:       m,
	}
}

// Admit creates a patient under the given doctor.
func (s *Service) Admit(ctx context.Context, doctorID uuid.UUID, req *model.CreatePatientRequest) (*model.Patient, error) {
	if doctorID == uuid.Nil {
		return nil, apperrors.Validation("patient requires a doctor", nil)
	}

	diseaseIDs, err := s.parseDiseaseIDs(ctx, req.DiseaseIDs)
	if err != nil {
		return nil, err
	}

	patient := &model.Patient{
		Base:         model.Base{ID: uuid.New()},
		Name:         req.Name,
		DoctorID:     doctorID,
		TimeAdmitted: time.Now(),
		Active:       true,
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, err
	}

	if len(diseaseIDs) > 0 {
		if err := s.repo.ReplaceDiseases(ctx, patient.ID, diseaseIDs); err != nil {
			return nil, err
		}
	}

	return s.withDiseases(ctx, patient)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withDiseases(ctx, patient)
}

func (s *Service) List(ctx context.Context) ([]*model.Patient, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Patient, error) {
	return s.repo.ListByDoctor(ctx, doctorID)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, err
	}

	if req.DiseaseIDs != nil {
		diseaseIDs, err := s.parseDiseaseIDs(ctx, req.DiseaseIDs)
		if err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceDiseases(ctx, id, diseaseIDs); err != nil {
			return nil, err
		}
	}

	return s.withDiseases(ctx, patient)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Discharge marks the patient discharged and inactive. Discharging an
// already-discharged patient is a conflict, not an idempotent success.
func (s *Service) Discharge(ctx context.Context, patientID uuid.UUID) (*model.Discharge, error) {
	if _, err := s.repo.Get(ctx, patientID); err != nil {
		return nil, err
	}

	already, err := s.dischargeRepo.ExistsForPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, apperrors.Conflict("patient is already discharged", nil)
	}

	discharge := &model.Discharge{
		Base:          model.Base{ID: uuid.New()},
		PatientID:     patientID,
		Discharged:    true,
		DischargeDate: time.Now(),
	}
	if err := s.dischargeRepo.Create(ctx, discharge); err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, patientID, false); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.PatientsDischarged.Inc()
	}
	return discharge, nil
}

// PurgeDischarged irreversibly removes all discharged patients.
// Restricted to admin callers at the handler boundary.
func (s *Service) PurgeDischarged(ctx context.Context) (int64, error) {
	purged, err := s.repo.DeleteDischarged(ctx)
	if err != nil {
		return 0, err
	}
	if s.metrics != nil {
		s.metrics.PatientsPurged.Add(float64(purged))
	}
	return purged, nil
}

func (s *Service) ListDischarges(ctx context.Context) ([]*model.Discharge, error) {
	return s.dischargeRepo.List(ctx)
}

func (s *Service) parseDiseaseIDs(ctx context.Context, raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, apperrors.Validation("invalid disease ID", err)
		}
		if _, err := s.diseaseRepo.Get(ctx, id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Service) withDiseases(ctx context.Context, patient *model.Patient) (*model.Patient, error) {
	diseases, err := s.repo.GetDiseases(ctx, patient.ID)
	if err != nil {
		return nil, err
	}
	patient.Diseases = diseases
	return patient, nil
}
