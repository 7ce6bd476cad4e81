package read

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/greenspire/plant-rental/internal/models"
	"github.com/greenspire/plant-rental/internal/services/catalog"
)

// MockService implements the Service interface.
type MockService struct {
	mock.Mock
}

func (m *MockService) Get(ctx context.Context, id int) (*models.Plant, error) {
	args := m.Called(ctx, id)
	if res := args.Get(0); res != nil {
		return res.(*models.Plant), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		plantID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "successful read",
			plantID: "4",
			setupMock: func(m *MockService) {
				plant := &models.Plant{ID: 4, Name: "Monstera Deliciosa", Category: "Indoor"}
				m.On("Get", mock.Anything, 4).Return(plant, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"Name":"Monstera Deliciosa"`,
		},
		{
			name:           "invalid id",
			plantID:        "abc",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid plant id"`,
		},
		{
			name:    "plant not found",
			plantID: "77",
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, 77).Return(nil, catalog.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"plant not found"`,
		},
		{
			name:    "service failure",
			plantID: "4",
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, 4).Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not read plant"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/plants/"+tt.plantID, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.plantID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
