// Package catalog implements the public plant catalog and the admin CRUD
// behind it. Reads go through the Redis cache.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/greenspire/plant-rental/internal/lib/sl"
	"github.com/greenspire/plant-rental/internal/models"
	"github.com/greenspire/plant-rental/internal/storage"
)

// ErrNotFound marks a missing or inactive plant.
var ErrNotFound = storage.ErrNotFound

// CatalogRepository defines the storage methods used by the service.
type CatalogRepository interface {
	ListPlants(ctx context.Context, filter models.PlantFilter) ([]*models.Plant, int, error)
	GetPlant(ctx context.Context, id int) (*models.Plant, error)
	CreatePlant(ctx context.Context, p models.Plant) (int, error)
	UpdatePlant(ctx context.Context, p models.Plant, id int) (int, error)
	RemovePlant(ctx context.Context, id int) (int, error)
}

// CatalogCache caches single plants under their id key.
type CatalogCache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// CatalogService carries the catalog business logic.
type CatalogService struct {
	repo  CatalogRepository
	cache CatalogCache
	log   *slog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo CatalogRepository, cache CatalogCache, log *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// List returns the active plants matching the filter plus the total count
// before paging.
func (s *CatalogService) List(ctx context.Context, filter models.PlantFilter) ([]*models.Plant, int, error) {
	return s.repo.ListPlants(ctx, filter)
}

// Get returns one active plant by id, reading through the cache.
func (s *CatalogService) Get(ctx context.Context, id int) (*models.Plant, error) {
	key := cacheKey(id)

	var cached models.Plant
	found, err := s.cache.Get(key, &cached)
	if err != nil {
		s.log.Warn("cache read failed", sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	plant, err := s.repo.GetPlant(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(key, plant, 10*time.Minute); err != nil {
		s.log.Warn("cache write failed", sl.Err(err))
	}
	return plant, nil
}

// Create adds a plant to the catalog and returns its id.
func (s *CatalogService) Create(ctx context.Context, req *models.DummyPlant) (int, error) {
	id, err := s.repo.CreatePlant(ctx, toPlant(req))
	if err != nil {
		return 0, err
	}
	s.log.Info("plant created", slog.Int("plant_id", id))
	return id, nil
}

// Update replaces a plant's fields and drops it from the cache.
func (s *CatalogService) Update(ctx context.Context, id int, req *models.DummyPlant) error {
	rows, err := s.repo.UpdatePlant(ctx, toPlant(req), id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("plant %d: %w", id, ErrNotFound)
	}
	if err := s.cache.Invalidate(cacheKey(id)); err != nil {
		s.log.Warn("cache invalidate failed", sl.Err(err))
	}
	s.log.Info("plant updated", slog.Int("plant_id", id))
	return nil
}

// Remove deactivates a plant. The row stays so existing references keep
// resolving, but the catalog no longer lists it.
func (s *CatalogService) Remove(ctx context.Context, id int) error {
	rows, err := s.repo.RemovePlant(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("plant %d: %w", id, ErrNotFound)
	}
	if err := s.cache.Invalidate(cacheKey(id)); err != nil {
		s.log.Warn("cache invalidate failed", sl.Err(err))
	}
	s.log.Info("plant removed", slog.Int("plant_id", id))
	return nil
}

func toPlant(req *models.DummyPlant) models.Plant {
	return models.Plant{
		Name:           req.Name,
		ScientificName: req.ScientificName,
		Description:    req.Description,
		Category:       req.Category,
		Size:           req.Size,
		PriceDaily:     req.PriceDaily,
		PriceWeekly:    req.PriceWeekly,
		PriceMonthly:   req.PriceMonthly,
		CareLight:      req.CareLight,
		CareWater:      req.CareWater,
		CareHumidity:   req.CareHumidity,
		InStock:        req.InStock,
		Quantity:       req.Quantity,
		IsActive:       true,
	}
}

func cacheKey(id int) string {
	return fmt.Sprintf("plant:%d", id)
}
