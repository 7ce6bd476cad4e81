// Package read implements the HTTP handler for reading one plant by id.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/greenspire/plant-rental/internal/http/response"
	"github.com/greenspire/plant-rental/internal/lib/sl"
	"github.com/greenspire/plant-rental/internal/models"
	"github.com/greenspire/plant-rental/internal/services/catalog"
)

// Handler handles single-plant read requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the plant read business logic.
type Service interface {
	Get(ctx context.Context, id int) (*models.Plant, error)
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Read one plant
// @Description Returns an active plant by id.
// @Tags Plants
// @Produce  json
// @Param id path int true "Plant id"
// @Success 200 {object} map[string]any "The plant"
// @Failure 400 {object} response.ErrorResponse "Invalid id"
// @Failure 404 {object} response.ErrorResponse "Plant not found"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /plants/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plant.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid plant id"))
		return
	}

	plant, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			log.Error("plant not found", slog.Int("plant_id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("plant not found"))
			return
		}
		log.Error("failed to read plant", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read plant"))
		return
	}

	log.Info("plant read", slog.Int("plant_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"plant": plant,
	}))
}
