package treatment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospitalms/hospital-api/internal/catalog"
	"github.com/hospitalms/hospital-api/internal/model"
	"github.com/hospitalms/hospital-api/internal/repository"
	apperrors "github.com/hospitalms/hospital-api/pkg/errors"
)

// fakeStore is an in-memory store backing both the repository and its
// transaction view. InTx snapshots state and restores it when fn fails,
// mirroring the all-or-nothing transaction of the postgres layer.
type fakeStore struct {
	users      map[uuid.UUID]*model.User
	doctors    map[uuid.UUID]*model.Doctor
	patients   map[uuid.UUID]*model.Patient
	treatments map[uuid.UUID]*model.Treatment
	diseases   map[uuid.UUID][]*model.Disease
	failInsert bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      make(map[uuid.UUID]*model.User),
		doctors:    make(map[uuid.UUID]*model.Doctor),
		patients:   make(map[uuid.UUID]*model.Patient),
		treatments: make(map[uuid.UUID]*model.Treatment),
		diseases:   make(map[uuid.UUID][]*model.Disease),
	}
}

func (f *fakeStore) snapshot() *fakeStore {
	s := newFakeStore()
	for k, v := range f.users {
		u := *v
		s.users[k] = &u
	}
	for k, v := range f.doctors {
		d := *v
		s.doctors[k] = &d
	}
	for k, v := range f.patients {
		p := *v
		s.patients[k] = &p
	}
	for k, v := range f.treatments {
		t := *v
		s.treatments[k] = &t
	}
	for k, v := range f.diseases {
		s.diseases[k] = v
	}
	return s
}

func (f *fakeStore) restore(s *fakeStore) {
	f.users = s.users
	f.doctors = s.doctors
	f.patients = s.patients
	f.treatments = s.treatments
	f.diseases = s.diseases
}

// TreatmentTx implementation

func (f *fakeStore) DoctorForUpdate(_ context.Context, doctorID uuid.UUID) (*model.Doctor, error) {
	d, ok := f.doctors[doctorID]
	if !ok {
		return nil, apperrors.NotFound("doctor", nil)
	}
	copied := *d
	return &copied, nil
}

func (f *fakeStore) GetUser(_ context.Context, userID uuid.UUID) (*model.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeStore) GetTreatment(_ context.Context, id uuid.UUID) (*model.Treatment, error) {
	t, ok := f.treatments[id]
	if !ok {
		return nil, apperrors.NotFound("treatment", nil)
	}
	copied := *t
	return &copied, nil
}

func (f *fakeStore) InsertTreatment(_ context.Context, t *model.Treatment) error {
	if f.failInsert {
		return fmt.Errorf("insert failed")
	}
	copied := *t
	f.treatments[t.ID] = &copied
	return nil
}

func (f *fakeStore) UpdateTreatment(_ context.Context, t *model.Treatment) error {
	copied := *t
	f.treatments[t.ID] = &copied
	return nil
}

func (f *fakeStore) SetDoctorIncorrectCount(_ context.Context, doctorID uuid.UUID, count int) error {
	f.doctors[doctorID].IncorrectTreatments = count
	return nil
}

func (f *fakeStore) DeactivateUser(_ context.Context, userID uuid.UUID) error {
	f.users[userID].Active = false
	return nil
}

// TreatmentRepository implementation

func (f *fakeStore) Get(ctx context.Context, id uuid.UUID) (*model.Treatment, error) {
	return f.GetTreatment(ctx, id)
}

func (f *fakeStore) List(_ context.Context) ([]*model.Treatment, error) {
	out := make([]*model.Treatment, 0, len(f.treatments))
	for _, t := range f.treatments {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*model.Treatment, error) {
	var out []*model.Treatment
	for _, t := range f.treatments {
		if t.DoctorID == doctorID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.treatments, id)
	return nil
}

func (f *fakeStore) InTx(_ context.Context, fn func(tx repository.TreatmentTx) error) error {
	saved := f.snapshot()
	if err := fn(f); err != nil {
		f.restore(saved)
		return err
	}
	return nil
}

// fakePatients adapts the store to repository.PatientRepository.
type fakePatients struct {
	store *fakeStore
}

func (f *fakePatients) Create(_ context.Context, p *model.Patient) error {
	f.store.patients[p.ID] = p
	return nil
}

func (f *fakePatients) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := f.store.patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}
	return p, nil
}

func (f *fakePatients) Update(_ context.Context, p *model.Patient) error {
	f.store.patients[p.ID] = p
	return nil
}

func (f *fakePatients) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.store.patients, id)
	return nil
}

func (f *fakePatients) List(_ context.Context) ([]*model.Patient, error) {
	var out []*model.Patient
	for _, p := range f.store.patients {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePatients) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*model.Patient, error) {
	var out []*model.Patient
	for _, p := range f.store.patients {
		if p.DoctorID == doctorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePatients) Count(_ context.Context) (int, error) {
	return len(f.store.patients), nil
}

func (f *fakePatients) CountByDoctor(ctx context.Context, doctorID uuid.UUID) (int, error) {
	list, _ := f.ListByDoctor(ctx, doctorID)
	return len(list), nil
}

func (f *fakePatients) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	f.store.patients[id].Active = active
	return nil
}

func (f *fakePatients) ReplaceDiseases(_ context.Context, patientID uuid.UUID, _ []uuid.UUID) error {
	return nil
}

func (f *fakePatients) GetDiseases(_ context.Context, patientID uuid.UUID) ([]*model.Disease, error) {
	return f.store.diseases[patientID], nil
}

func (f *fakePatients) DeleteDischarged(_ context.Context) (int64, error) {
	return 0, nil
}

type fakeNotifier struct {
	deactivated []uuid.UUID
}

func (n *fakeNotifier) NotifyDoctorDeactivated(_ context.Context, d *model.Doctor) {
	n.deactivated = append(n.deactivated, d.ID)
}

type fixture struct {
	store     *fakeStore
	svc       *Service
	notifier  *fakeNotifier
	doctorID  uuid.UUID
	userID    uuid.UUID
	patientID uuid.UUID
}

func newFixture(t *testing.T, mode catalog.ValidationMode, diseaseNames ...string) *fixture {
	t.Helper()

	store := newFakeStore()
	userID := uuid.New()
	doctorID := uuid.New()
	patientID := uuid.New()

	store.users[userID] = &model.User{
		Base:     model.Base{ID: userID},
		Username: "dr_grey",
		Role:     model.RoleDoctor,
		Active:   true,
	}
	store.doctors[doctorID] = &model.Doctor{
		Base:   model.Base{ID: doctorID},
		UserID: userID,
		Name:   "dr_grey",
	}
	store.patients[patientID] = &model.Patient{
		Base:         model.Base{ID: patientID},
		Name:         "John Doe",
		DoctorID:     doctorID,
		TimeAdmitted: time.Now(),
		Active:       true,
	}
	for _, name := range diseaseNames {
		store.diseases[patientID] = append(store.diseases[patientID], &model.Disease{
			Base: model.Base{ID: uuid.New()},
			Name: name,
		})
	}

	notifier := &fakeNotifier{}
	svc := NewService(store, &fakePatients{store: store}, mode, notifier, nil)

	return &fixture{
		store:     store,
		svc:       svc,
		notifier:  notifier,
		doctorID:  doctorID,
		userID:    userID,
		patientID: patientID,
	}
}

func (f *fixture) record(t *testing.T, options string, explicit *bool) (*model.Treatment, error) {
	t.Helper()
	return f.svc.Record(context.Background(), f.doctorID, &model.CreateTreatmentRequest{
		PatientID:        f.patientID.String(),
		TreatmentOptions: options,
		Success:          explicit,
	})
}

func boolPtr(b bool) *bool { return &b }

func TestRecordCatalogModeValidOptions(t *testing.T) {
	f := newFixture(t, catalog.ModeCatalog, "Cancer")

	treatment, err := f.record(t, "Chemotherapy, Radiation therapy, Surgery", nil)
	require.NoError(t, err)
	assert.True(t, treatment.Success)
	assert.Equal(t, 0, f.store.doctors[f.doctorID].IncorrectTreatments)
}

func TestRecordDiseaseModeRejectsOffRegimen(t *testing.T) {
	f := newFixture(t, catalog.ModeDisease, "Cancer")

	treatment, err := f.record(t, "Rest and hydration", nil)
	require.NoError(t, err)
	assert.False(t, treatment.Success)
	assert.Equal(t, 1, f.store.doctors[f.doctorID].IncorrectTreatments)
}

func TestRecordExplicitSuccessOverridesValidation(t *testing.T) {
	f := newFixture(t, catalog.ModeCatalog)

	treatment, err := f.record(t, "Leeches", boolPtr(true))
	require.NoError(t, err)
	assert.True(t, treatment.Success)
	assert.Equal(t, 0, f.store.doctors[f.doctorID].IncorrectTreatments)
}

func TestThreeFailuresDeactivateDoctor(t *testing.T) {
	f := newFixture(t, catalog.ModeCatalog)

	for i := 0; i < 3; i++ {
		_, err := f.record(t, "Leeches", nil)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, f.store.doctors[f.doctorID].IncorrectTreatments)
	assert.False(t, f.store.users[f.userID].Active)
	assert.Equal(t, []uuid.UUID{f.doctorID}, f.notifier.deactivated)

	// A fourth attempt is rejected, not silently accepted.
	_, err := f.record(t, "Surgery", nil)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	assert.Len(t, f.store.treatments, 3)
}

func TestUpdateFalseToTrueDecrementsOnce(t *testing.T) {
	f := newFixture(t, catalog.ModeCatalog)

	treatment, err := f.record(t, "Leeches", nil)
	require.NoError(t, err)
	require.Equal(t, 1, f.store.doctors[f.doctorID].IncorrectTreatments)

	updated, err := f.svc.Update(context.Background(), f.doctorID, treatment.ID, &model.UpdateTreatmentRequest{
		Success: boolPtr(true),
	})
	require.NoError(t, err)
	assert.True(t, updated.Success)
	assert.Equal(t, 0, f.store.doctors[f.doctorID].IncorrectTreatments)

	// Repeating the same edit is a no-op transition.
	_, err = f.svc.Update(context.Background(), f.doctorID, treatment.ID, &model.UpdateTreatmentRequest{
		Success: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, f.store.doctors[f.doctorID].IncorrectTreatments)
}

func TestUpdateTrueToFalseIncrementsOnce(t *testing.T) {
	f := newFixture(t, catalog.ModeCatalog)

	treatment, err := f.record(t, "Surgery", nil)
	require.NoError(t, err)
	require.Equal(t, 0, f.store.doctors[f.doctorID].IncorrectTreatments)

	_, err = f.svc.Update(context.Background(), f.doctorID, treatment.ID, &model.UpdateTreatmentRequest{
		Success: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.store.doctors[f.doctorID].IncorrectTreatments)
}

func TestCounterNeverGoesNegative(t *testing.T) {
	f := newFixture(t, catalog.ModeCatalog)

	// Created as failed with an explicit flag, then corrected twice via
	// option edits that both validate. Counter must stop at zero.
	treatment, err := f.record(t, "Surgery", boolPtr(false))
	require.NoError(t, err)
	require.Equal(t, 1, f.store.doctors[f.doctorID].IncorrectTreatments)

	_, err = f.svc.Update(context.Background(), f.doctorID, treatment.ID, &model.UpdateTreatmentRequest{
		Success: boolPtr(true),
	})
	require.NoError(t, err)

	second, err := f.record(t, "Dialysis", boolPtr(false))
	require.NoError(t, err)
	require.Equal(t, 1, f.store.doctors[f.doctorID].IncorrectTreatments)

	_, err = f.svc.Update(context.Background(), f.doctorID, second.ID, &model.UpdateTreatmentRequest{
		Success: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, f.store.doctors[f.doctorID].IncorrectTreatments)

	for _, d := range f.store.doctors {
		assert.GreaterOrEqual(t, d.IncorrectTreatments, 0)
	}
}

func TestRecordRequiresResolvedPatient(t *testing.T) {
	f := newFixture(t, catalog.ModeCatalog)

	_, err := f.svc.Record(context.Background(), f.doctorID, &model.CreateTreatmentRequest{
		PatientID:        uuid.New().String(),
		TreatmentOptions: "Surgery",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	_, err = f.svc.Record(context.Background(), uuid.Nil, &model.CreateTreatmentRequest{
		PatientID:        f.patientID.String(),
		TreatmentOptions: "Surgery",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestRecordRejectsForeignPatient(t *testing.T) {
	f := newFixture(t, catalog.ModeCatalog)

	otherDoctor := uuid.New()
	otherUser := uuid.New()
	f.store.users[otherUser] = &model.User{Base: model.Base{ID: otherUser}, Role: model.RoleDoctor, Active: true}
	f.store.doctors[otherDoctor] = &model.Doctor{Base: model.Base{ID: otherDoctor}, UserID: otherUser}

	_, err := f.svc.Record(context.Background(), otherDoctor, &model.CreateTreatmentRequest{
		PatientID:        f.patientID.String(),
		TreatmentOptions: "Surgery",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestFailedInsertRollsBackCounter(t *testing.T) {
	f := newFixture(t, catalog.ModeCatalog)
	f.store.failInsert = true

	_, err := f.record(t, "Leeches", nil)
	require.Error(t, err)

	// Neither the treatment nor the counter mutation survived.
	assert.Empty(t, f.store.treatments)
	assert.Equal(t, 0, f.store.doctors[f.doctorID].IncorrectTreatments)
	assert.True(t, f.store.users[f.userID].Active)
}

func TestUpdateForeignTreatmentForbidden(t *testing.T) {
	f := newFixture(t, catalog.ModeCatalog)

	treatment, err := f.record(t, "Surgery", nil)
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), uuid.New(), treatment.ID, &model.UpdateTreatmentRequest{
		Success: boolPtr(false),
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	assert.Equal(t, 0, f.store.doctors[f.doctorID].IncorrectTreatments)
}

func TestOptionsReturnsCatalog(t *testing.T) {
	f := newFixture(t, catalog.ModeCatalog)
	assert.Equal(t, catalog.TreatmentOptions, f.svc.Options())
}
