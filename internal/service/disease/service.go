package disease

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/hospitalms/hospital-api/internal/catalog"
	"github.com/hospitalms/hospital-api/internal/model"
	"github.com/hospitalms/hospital-api/internal/repository"
)

const listCacheKey = "diseases:list"

// Service serves the read-mostly disease catalog. Lists are cached
// in-process; the only write path is the startup seed.
type Service struct {
	repo  repository.DiseaseRepository
	cache *cache.Cache
}

func NewService(repo repository.DiseaseRepository) *Service {
	return &Service{
		repo:  repo,
		cache: cache.New(5*time.Minute, 10*time.Minute),
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Disease, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*model.Disease, error) {
	if cached, ok := s.cache.Get(listCacheKey); ok {
		return cached.([]*model.Disease), nil
	}

	diseases, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(listCacheKey, diseases, cache.DefaultExpiration)
	return diseases, nil
}

// Seed inserts the disease catalog entries that are not present yet.
func (s *Service) Seed(ctx context.Context) error {
	for _, seed := range catalog.SeedDiseases {
		disease := &model.Disease{
			Base:       model.Base{ID: uuid.New()},
			Name:       seed.Name,
			IsTerminal: seed.IsTerminal,
		}
		if err := s.repo.CreateIfMissing(ctx, disease); err != nil {
			return err
		}
	}
	s.cache.Delete(listCacheKey)
	return nil
}
