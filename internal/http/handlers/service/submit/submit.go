// Package submit implements the worker HTTP handler recording completed work
// on an assigned visit: the checklist state, photos and notes.
package submit

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

	"github.com/greenspire/plant-rental/internal/http/middlewarectx"
	"github.com/greenspire/plant-rental/internal/http/response"
	"github.com/greenspire/plant-rental/internal/lib/sl"
	"github.com/greenspire/plant-rental/internal/models"
	"github.com/greenspire/plant-rental/internal/services/visit"
)

// Request carries the worker submission.
type Request struct {
	Checklist []models.ChecklistItem `json:"checklist" validate:"required,min=1,dive"`
	Photos    []string               `json:"photos" validate:"omitempty,dive,url"`
	Notes     string                 `json:"notes"`
}

// Handler handles work submission requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service describes the submission business logic.
type Service interface {
	SubmitWork(ctx context.Context, visitID int, workerUID string,
		checklist []models.ChecklistItem, photos []string, notes string) error
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
// @Summary Submit visit work
// @Description Records the checklist, photos and notes of an assigned visit and marks it completed by the worker.
// @Tags Visits
// @Accept  json
// @Produce  json
// @Param id path int true "Visit id"
// @Param request body Request true "Completed work"
// @Success 200 {object} map[string]any "Work recorded"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON or id"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 403 {object} response.ErrorResponse "Visit assigned to another worker"
// @Failure 404 {object} response.ErrorResponse "Visit not found"
// @Failure 409 {object} response.ErrorResponse "Visit is not assigned"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /services/{id}/submit [put]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.service.submit"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid visit id"))
		return
	}

	var req Request
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

	workerUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || workerUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.SubmitWork(r.Context(), id, workerUID, req.Checklist, req.Photos, req.Notes); err != nil {
		switch {
		case errors.Is(err, visit.ErrNotFound):
			log.Error("visit not found", slog.Int("visit_id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("visit not found"))
		case errors.Is(err, visit.ErrNotAssignedWorker):
			log.Error("visit assigned to another worker", slog.Int("visit_id", id))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("visit is assigned to another worker"))
		case errors.Is(err, visit.ErrInvalidTransition):
			log.Error("visit is not assigned", slog.Int("visit_id", id))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("visit is not in a state that allows submission"))
		default:
			log.Error("failed to submit work", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not submit work"))
		}
		return
	}

	log.Info("work submitted", slog.Int("visit_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"visit_id": id,
	}))
}
