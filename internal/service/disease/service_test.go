package disease

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospitalms/hospital-api/internal/catalog"
	"github.com/hospitalms/hospital-api/internal/model"
	apperrors "github.com/hospitalms/hospital-api/pkg/errors"
)

type fakeDiseases struct {
	byID      map[uuid.UUID]*model.Disease
	listCalls int
}

func newFakeDiseases() *fakeDiseases {
	return &fakeDiseases{byID: make(map[uuid.UUID]*model.Disease)}
}

func (f *fakeDiseases) Get(_ context.Context, id uuid.UUID) (*model.Disease, error) {
	d, ok := f.byID[id]
	if !ok {
		return nil, apperrors.NotFound("disease", nil)
	}
	return d, nil
}

func (f *fakeDiseases) List(_ context.Context) ([]*model.Disease, error) {
	f.listCalls++
	out := make([]*model.Disease, 0, len(f.byID))
	for _, d := range f.byID {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeDiseases) CreateIfMissing(_ context.Context, d *model.Disease) error {
	for _, existing := range f.byID {
		if existing.Name == d.Name {
			return nil
		}
	}
	f.byID[d.ID] = d
	return nil
}

func TestSeedIsIdempotent(t *testing.T) {
	repo := newFakeDiseases()
	svc := NewService(repo)

	require.NoError(t, svc.Seed(context.Background()))
	require.NoError(t, svc.Seed(context.Background()))

	assert.Len(t, repo.byID, len(catalog.SeedDiseases))

	names := make(map[string]bool)
	for _, d := range repo.byID {
		names[d.Name] = d.IsTerminal
	}
	assert.True(t, names["Cancer"])
	assert.False(t, names["Common cold"])
}

func TestListServesFromCache(t *testing.T) {
	repo := newFakeDiseases()
	svc := NewService(repo)
	require.NoError(t, svc.Seed(context.Background()))

	first, err := svc.List(context.Background())
	require.NoError(t, err)
	second, err := svc.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, len(first), len(second))
	assert.Equal(t, 1, repo.listCalls)
}
