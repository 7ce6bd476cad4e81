// Package assign implements the admin HTTP handler assigning a worker to a
// pending visit. The target user must carry the worker role and the visit
// must still be pending, otherwise the request ends with 409.
package assign

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
	"github.com/greenspire/plant-rental/internal/services/visit"
)

// Request carries the worker to assign.
type Request struct {
	WorkerUID string `json:"worker_uid" validate:"required,uuid"`
}

// Handler handles worker assignment requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service describes the assignment business logic.
type Service interface {
	AssignWorker(ctx context.Context, visitID int, workerUID string) error
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
// @Summary Assign a worker to a visit
// @Description Moves a pending visit to assigned. Admin only.
// @Tags Visits
// @Accept  json
// @Produce  json
// @Param id path int true "Visit id"
// @Param request body Request true "Worker uid"
// @Success 200 {object} map[string]any "Worker assigned"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON, id or target role"
// @Failure 403 {object} response.ErrorResponse "Not an admin"
// @Failure 404 {object} response.ErrorResponse "Visit or worker not found"
// @Failure 409 {object} response.ErrorResponse "Visit is not pending"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /services/{id}/assign [put]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.service.assign"

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

	if err := h.service.AssignWorker(r.Context(), id, req.WorkerUID); err != nil {
		switch {
		case errors.Is(err, visit.ErrNotFound):
			log.Error("visit or worker not found", slog.Int("visit_id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("visit or worker not found"))
		case errors.Is(err, visit.ErrNotWorker):
			log.Error("assignment target is not a worker", slog.String("worker_uid", req.WorkerUID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("user is not a worker"))
		case errors.Is(err, visit.ErrInvalidTransition):
			log.Error("visit is not pending", slog.Int("visit_id", id))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("visit is not in a state that allows assignment"))
		default:
			log.Error("failed to assign worker", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not assign worker"))
		}
		return
	}

	log.Info("worker assigned", slog.Int("visit_id", id), slog.String("worker_uid", req.WorkerUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"visit_id":   id,
		"worker_uid": req.WorkerUID,
	}))
}
