package doctor

import (
	"context"

	"github.com/google/uuid"

	"github.com/hospitalms/hospital-api/internal/model"
	"github.com/hospitalms/hospital-api/internal/repository"
	apperrors "github.com/hospitalms/hospital-api/pkg/errors"
)

type Service struct {
	doctorRepo  repository.DoctorRepository
	userRepo    repository.UserRepository
	patientRepo repository.PatientRepository
}

func NewService(
	doctorRepo repository.DoctorRepository,
	userRepo repository.UserRepository,
	patientRepo repository.PatientRepository,
) *Service {
	return &Service{
		doctorRepo:  doctorRepo,
		userRepo:    userRepo,
		patientRepo: patientRepo,
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	return s.doctorRepo.Get(ctx, id)
}

func (s *Service) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error) {
	return s.doctorRepo.GetByUserID(ctx, userID)
}

func (s *Service) List(ctx context.Context) ([]*model.Doctor, error) {
	return s.doctorRepo.List(ctx)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	doctor, err := s.doctorRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		doctor.Name = *req.Name
	}
	if err := s.doctorRepo.Update(ctx, doctor); err != nil {
		return nil, err
	}
	return doctor, nil
}

// Delete removes a doctor profile. Blocked while the doctor still has
// assigned patients.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.doctorRepo.Get(ctx, id); err != nil {
		return err
	}

	assigned, err := s.patientRepo.CountByDoctor(ctx, id)
	if err != nil {
		return err
	}
	if assigned > 0 {
		return apperrors.Conflict("cannot delete a doctor with assigned patients", nil)
	}

	return s.doctorRepo.Delete(ctx, id)
}

// Fire deactivates the doctor's user account. Firing is only valid
// once the incorrect-treatment counter has reached the threshold; the
// profile is never hard-deleted.
func (s *Service) Fire(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.doctorRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if doctor.IncorrectTreatments < model.IncorrectTreatmentThreshold {
		return nil, apperrors.Conflict("doctor has not reached the incorrect-treatment threshold", nil)
	}

	user, err := s.userRepo.Get(ctx, doctor.UserID)
	if err != nil {
		return nil, err
	}
	if user.Active {
		user.Active = false
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	return doctor, nil
}
