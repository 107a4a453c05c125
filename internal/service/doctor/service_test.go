package doctor

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospitalms/hospital-api/internal/model"
	apperrors "github.com/hospitalms/hospital-api/pkg/errors"
)

type fakeUsers struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUsers) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	return u, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user", nil)
}

func (f *fakeUsers) Update(_ context.Context, u *model.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.users, id)
	return nil
}

func (f *fakeUsers) List(_ context.Context) ([]*model.User, error) {
	out := make([]*model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

type fakeDoctors struct {
	doctors map[uuid.UUID]*model.Doctor
}

func (f *fakeDoctors) Create(_ context.Context, d *model.Doctor) error {
	f.doctors[d.ID] = d
	return nil
}

func (f *fakeDoctors) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	d, ok := f.doctors[id]
	if !ok {
		return nil, apperrors.NotFound("doctor", nil)
	}
	return d, nil
}

func (f *fakeDoctors) GetByUserID(_ context.Context, userID uuid.UUID) (*model.Doctor, error) {
	for _, d := range f.doctors {
		if d.UserID == userID {
			return d, nil
		}
	}
	return nil, apperrors.NotFound("doctor", nil)
}

func (f *fakeDoctors) Update(_ context.Context, d *model.Doctor) error {
	f.doctors[d.ID] = d
	return nil
}

func (f *fakeDoctors) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.doctors, id)
	return nil
}

func (f *fakeDoctors) List(_ context.Context) ([]*model.Doctor, error) {
	out := make([]*model.Doctor, 0, len(f.doctors))
	for _, d := range f.doctors {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeDoctors) Count(_ context.Context) (int, error) {
	return len(f.doctors), nil
}

type fakePatients struct {
	patients map[uuid.UUID]*model.Patient
}

func (f *fakePatients) Create(_ context.Context, p *model.Patient) error {
	f.patients[p.ID] = p
	return nil
}

func (f *fakePatients) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}
	return p, nil
}

func (f *fakePatients) Update(_ context.Context, p *model.Patient) error {
	f.patients[p.ID] = p
	return nil
}

func (f *fakePatients) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.patients, id)
	return nil
}

func (f *fakePatients) List(_ context.Context) ([]*model.Patient, error) {
	out := make([]*model.Patient, 0, len(f.patients))
	for _, p := range f.patients {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePatients) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*model.Patient, error) {
	var out []*model.Patient
	for _, p := range f.patients {
		if p.DoctorID == doctorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePatients) Count(_ context.Context) (int, error) {
	return len(f.patients), nil
}

func (f *fakePatients) CountByDoctor(ctx context.Context, doctorID uuid.UUID) (int, error) {
	list, _ := f.ListByDoctor(ctx, doctorID)
	return len(list), nil
}

func (f *fakePatients) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	f.patients[id].Active = active
	return nil
}

func (f *fakePatients) ReplaceDiseases(_ context.Context, _ uuid.UUID, _ []uuid.UUID) error {
	return nil
}

func (f *fakePatients) GetDiseases(_ context.Context, _ uuid.UUID) ([]*model.Disease, error) {
	return nil, nil
}

func (f *fakePatients) DeleteDischarged(_ context.Context) (int64, error) {
	return 0, nil
}

type fixture struct {
	users    *fakeUsers
	doctors  *fakeDoctors
	patients *fakePatients
	svc      *Service
	doctorID uuid.UUID
	userID   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := &fakeUsers{users: make(map[uuid.UUID]*model.User)}
	doctors := &fakeDoctors{doctors: make(map[uuid.UUID]*model.Doctor)}
	patients := &fakePatients{patients: make(map[uuid.UUID]*model.Patient)}

	userID := uuid.New()
	doctorID := uuid.New()
	users.users[userID] = &model.User{
		Base:     model.Base{ID: userID},
		Username: "dr_grey",
		Role:     model.RoleDoctor,
		Active:   true,
	}
	doctors.doctors[doctorID] = &model.Doctor{
		Base:   model.Base{ID: doctorID},
		UserID: userID,
		Name:   "Meredith Grey",
	}

	return &fixture{
		users:    users,
		doctors:  doctors,
		patients: patients,
		svc:      NewService(doctors, users, patients),
		doctorID: doctorID,
		userID:   userID,
	}
}

func TestFireBelowThresholdConflicts(t *testing.T) {
	f := newFixture(t)
	f.doctors.doctors[f.doctorID].IncorrectTreatments = 2

	_, err := f.svc.Fire(context.Background(), f.doctorID)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	assert.True(t, f.users.users[f.userID].Active)
}

func TestFireAtThresholdDeactivates(t *testing.T) {
	f := newFixture(t)
	f.doctors.doctors[f.doctorID].IncorrectTreatments = 3

	fired, err := f.svc.Fire(context.Background(), f.doctorID)
	require.NoError(t, err)
	assert.Equal(t, f.doctorID, fired.ID)
	assert.False(t, f.users.users[f.userID].Active)

	// The profile stays; only the account is disabled.
	_, err = f.svc.Get(context.Background(), f.doctorID)
	assert.NoError(t, err)

	// Firing an already-deactivated doctor stays a success.
	_, err = f.svc.Fire(context.Background(), f.doctorID)
	assert.NoError(t, err)
}

func TestDeleteWithAssignedPatientsConflicts(t *testing.T) {
	f := newFixture(t)
	patientID := uuid.New()
	f.patients.patients[patientID] = &model.Patient{
		Base:     model.Base{ID: patientID},
		Name:     "John Doe",
		DoctorID: f.doctorID,
		Active:   true,
	}

	err := f.svc.Delete(context.Background(), f.doctorID)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	delete(f.patients.patients, patientID)
	require.NoError(t, f.svc.Delete(context.Background(), f.doctorID))
	_, err = f.svc.Get(context.Background(), f.doctorID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestUpdateChangesName(t *testing.T) {
	f := newFixture(t)

	name := "Meredith Grey-Shepherd"
	updated, err := f.svc.Update(context.Background(), f.doctorID, &model.UpdateDoctorRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
}

func TestGetByUserID(t *testing.T) {
	f := newFixture(t)

	found, err := f.svc.GetByUserID(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, f.doctorID, found.ID)

	_, err = f.svc.GetByUserID(context.Background(), uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
