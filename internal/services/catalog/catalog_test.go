package catalog

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/greenspire/plant-rental/internal/models"
	"github.com/greenspire/plant-rental/internal/storage"
)

// RepoMock implements CatalogRepository for tests.
type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) ListPlants(ctx context.Context, filter models.PlantFilter) ([]*models.Plant, int, error) {
	args := m.Called(ctx, filter)
	if res := args.Get(0); res != nil {
		return res.([]*models.Plant), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *RepoMock) GetPlant(ctx context.Context, id int) (*models.Plant, error) {
	args := m.Called(ctx, id)
	if res := args.Get(0); res != nil {
		return res.(*models.Plant), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) CreatePlant(ctx context.Context, p models.Plant) (int, error) {
	args := m.Called(ctx, p)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) UpdatePlant(ctx context.Context, p models.Plant, id int) (int, error) {
	args := m.Called(ctx, p, id)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) RemovePlant(ctx context.Context, id int) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

// CacheMock implements CatalogCache for tests.
type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newPlantRequest() *models.DummyPlant {
	return &models.DummyPlant{
		Name:         "Monstera Deliciosa",
		Description:  "Large split-leaf houseplant",
		Category:     "Indoor",
		Size:         "Large",
		PriceDaily:   5,
		PriceWeekly:  25,
		PriceMonthly: 80,
		InStock:      true,
		Quantity:     12,
	}
}

func TestCatalogService_Get(t *testing.T) {
	plant := &models.Plant{ID: 4, Name: "Monstera Deliciosa"}

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, c *CacheMock)
		wantErr    error
	}{
		{
			name: "cache miss loads from the repository",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", "plant:4", mock.Anything).Return(false, nil).Once()
				r.On("GetPlant", mock.Anything, 4).Return(plant, nil).Once()
				c.On("Set", "plant:4", plant, 10*time.Minute).Return(nil).Once()
			},
		},
		{
			name: "cache hit skips the repository",
			setupMocks: func(_ *RepoMock, c *CacheMock) {
				c.On("Get", "plant:4", mock.Anything).Return(true, nil).Once()
			},
		},
		{
			name: "missing plant",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", "plant:4", mock.Anything).Return(false, nil).Once()
				r.On("GetPlant", mock.Anything, 4).Return(nil, storage.ErrNotFound).Once()
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			tt.setupMocks(repo, cache)
			svc := NewCatalogService(repo, cache, newNoopLogger())

			_, err := svc.Get(context.Background(), 4)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestCatalogService_Create(t *testing.T) {
	repo := new(RepoMock)
	repo.On("CreatePlant", mock.Anything, mock.MatchedBy(func(p models.Plant) bool {
		return p.Name == "Monstera Deliciosa" && p.IsActive
	})).Return(4, nil).Once()
	svc := NewCatalogService(repo, new(CacheMock), newNoopLogger())

	id, err := svc.Create(context.Background(), newPlantRequest())

	assert.NoError(t, err)
	assert.Equal(t, 4, id)
	repo.AssertExpectations(t)
}

func TestCatalogService_Update(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, c *CacheMock)
		wantErr    error
	}{
		{
			name: "updates and invalidates the cache",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				r.On("UpdatePlant", mock.Anything, mock.Anything, 4).Return(1, nil).Once()
				c.On("Invalidate", "plant:4").Return(nil).Once()
			},
		},
		{
			name: "missing plant",
			setupMocks: func(r *RepoMock, _ *CacheMock) {
				r.On("UpdatePlant", mock.Anything, mock.Anything, 4).Return(0, nil).Once()
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			tt.setupMocks(repo, cache)
			svc := NewCatalogService(repo, cache, newNoopLogger())

			err := svc.Update(context.Background(), 4, newPlantRequest())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestCatalogService_Remove(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, c *CacheMock)
		wantErr    error
	}{
		{
			name: "deactivates and invalidates the cache",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				r.On("RemovePlant", mock.Anything, 4).Return(1, nil).Once()
				c.On("Invalidate", "plant:4").Return(nil).Once()
			},
		},
		{
			name: "missing plant",
			setupMocks: func(r *RepoMock, _ *CacheMock) {
				r.On("RemovePlant", mock.Anything, 4).Return(0, nil).Once()
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			tt.setupMocks(repo, cache)
			svc := NewCatalogService(repo, cache, newNoopLogger())

			err := svc.Remove(context.Background(), 4)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}
