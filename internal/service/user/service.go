package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hospitalms/hospital-api/internal/model"
	"github.com/hospitalms/hospital-api/internal/repository"
	apperrors "github.com/hospitalms/hospital-api/pkg/errors"
	"github.com/hospitalms/hospital-api/pkg/security"
)

// Service owns user lifecycle and the deletion invariants that guard
// referential integrity independent of the persistence backend.
type Service struct {
	userRepo    repository.UserRepository
	doctorRepo  repository.DoctorRepository
	patientRepo repository.PatientRepository
	hasher      security.PasswordHasher
}

func NewService(
	userRepo repository.UserRepository,
	doctorRepo repository.DoctorRepository,
	patientRepo repository.PatientRepository,
	hasher security.PasswordHasher,
) *Service {
	return &Service{
		userRepo:    userRepo,
		doctorRepo:  doctorRepo,
		patientRepo: patientRepo,
		hasher:      hasher,
	}
}

// Create registers a user. Doctor-role users get a Doctor profile as
// an explicit post-creation step; see EnsureDoctor.
func (s *Service) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	if existing, _ := s.userRepo.GetByUsername(ctx, req.Username); existing != nil {
		return nil, apperrors.Conflict("username already taken", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Validation("invalid password", err)
	}

	user := &model.User{
		Base:         model.Base{ID: uuid.New()},
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Active:       true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if user.IsDoctor() {
		name := req.Name
		if name == "" {
			name = req.Username
		}
		if _, err := s.EnsureDoctor(ctx, user, name); err != nil {
			return nil, err
		}
	}

	return user, nil
}

// RegisterAdmin registers an admin account via the public endpoint.
func (s *Service) RegisterAdmin(ctx context.Context, req *model.RegisterAdminRequest) (*model.User, error) {
	return s.Create(ctx, &model.CreateUserRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     model.RoleAdmin,
	})
}

// EnsureDoctor guarantees exactly one Doctor profile for a doctor-role
// user. Idempotent: an existing profile is returned untouched.
func (s *Service) EnsureDoctor(ctx context.Context, user *model.User, name string) (*model.Doctor, error) {
	if !user.IsDoctor() {
		return nil, apperrors.Validation("user does not hold the doctor role", nil)
	}

	if existing, err := s.doctorRepo.GetByUserID(ctx, user.ID); err == nil {
		return existing, nil
	} else if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	doctor := &model.Doctor{
		Base:   model.Base{ID: uuid.New()},
		UserID: user.ID,
		Name:   name,
	}
	if err := s.doctorRepo.Create(ctx, doctor); err != nil {
		return nil, fmt.Errorf("failed to create doctor profile: %w", err)
	}
	return doctor, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.userRepo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	return s.userRepo.List(ctx)
}

// Delete removes a user. Deleting an admin is forbidden while any
// doctor or patient exists system-wide.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	if user.IsAdmin() {
		doctors, err := s.doctorRepo.Count(ctx)
		if err != nil {
			return err
		}
		patients, err := s.patientRepo.Count(ctx)
		if err != nil {
			return err
		}
		if doctors > 0 || patients > 0 {
			return apperrors.Conflict("cannot delete admin while doctors or patients exist", nil)
		}
	}

	return s.userRepo.Delete(ctx, id)
}

// Reactivate restores a deactivated account. Manual admin action is
// the only path back after a threshold deactivation.
func (s *Service) Reactivate(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Active {
		return user, nil
	}
	user.Active = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
