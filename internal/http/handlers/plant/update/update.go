// Package update implements the admin HTTP handler for replacing a plant's
// fields.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/greenspire/plant-rental/internal/http/response"
	"github.com/greenspire/plant-rental/internal/lib/sl"
	"github.com/greenspire/plant-rental/internal/models"
	"github.com/greenspire/plant-rental/internal/services/catalog"
)

// Handler handles plant update requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service describes the plant update business logic.
type Service interface {
	Update(ctx context.Context, id int, req *models.DummyPlant) error
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Update a plant
// @Description Replaces the fields of a catalog plant. Admin only.
// @Tags Plants
// @Accept  json
// @Produce  json
// @Param id path int true "Plant id"
// @Param request body models.DummyPlant true "Plant data"
// @Success 200 {object} map[string]any "Plant updated"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON or id"
// @Failure 403 {object} response.ErrorResponse "Not an admin"
// @Failure 404 {object} response.ErrorResponse "Plant not found"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /plants/{id} [put]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plant.update"

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

	var req models.DummyPlant
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.service.Update(r.Context(), id, &req); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			log.Error("plant not found", slog.Int("plant_id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("plant not found"))
			return
		}
		log.Error("failed to update plant", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update plant"))
		return
	}

	log.Info("plant updated", slog.Int("plant_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"plant_id": id,
	}))
}
