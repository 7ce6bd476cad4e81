// Package reassign implements the admin HTTP handler sending a worker back
// to a visit that requires a revisit. The visit returns to assigned; any
// worker may be chosen, not only the original one.
package reassign

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

// Request carries the worker to reassign.
type Request struct {
	WorkerUID string `json:"worker_uid" validate:"required,uuid"`
}

// Handler handles revisit reassignment requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service describes the reassignment business logic.
type Service interface {
	ReassignAfterRevisit(ctx context.Context, visitID int, workerUID string) error
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
// @Summary Reassign a worker after a revisit request
// @Description Moves a requires-revisit visit back to assigned. Admin only.
// @Tags Visits
// @Accept  json
// @Produce  json
// @Param id path int true "Visit id"
// @Param request body Request true "Worker uid"
// @Success 200 {object} map[string]any "Worker reassigned"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON, id or target role"
// @Failure 403 {object} response.ErrorResponse "Not an admin"
// @Failure 404 {object} response.ErrorResponse "Visit or worker not found"
// @Failure 409 {object} response.ErrorResponse "Visit does not require a revisit"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /services/{id}/reassign [put]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.service.reassign"

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

	if err := h.service.ReassignAfterRevisit(r.Context(), id, req.WorkerUID); err != nil {
		switch {
		case errors.Is(err, visit.ErrNotFound):
			log.Error("visit or worker not found", slog.Int("visit_id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("visit or worker not found"))
		case errors.Is(err, visit.ErrNotWorker):
			log.Error("reassignment target is not a worker", slog.String("worker_uid", req.WorkerUID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("user is not a worker"))
		case errors.Is(err, visit.ErrInvalidTransition):
			log.Error("visit does not require a revisit", slog.Int("visit_id", id))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("visit is not in a state that allows reassignment"))
		default:
			log.Error("failed to reassign worker", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not reassign worker"))
		}
		return
	}

	log.Info("worker reassigned", slog.Int("visit_id", id), slog.String("worker_uid", req.WorkerUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"visit_id":   id,
		"worker_uid": req.WorkerUID,
	}))
}
