// Package listforworker implements the worker HTTP handler returning the
// caller's open jobs: assigned visits and ones awaiting customer sign-off.
package listforworker

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/greenspire/plant-rental/internal/http/middlewarectx"
	"github.com/greenspire/plant-rental/internal/http/response"
	"github.com/greenspire/plant-rental/internal/lib/sl"
	"github.com/greenspire/plant-rental/internal/models"
)

// Handler handles worker job listing requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the worker job listing business logic.
type Service interface {
	ListForWorker(ctx context.Context, workerUID string) ([]*models.VisitInfo, error)
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary List the caller's jobs
// @Description Returns the worker's assigned and awaiting-confirmation visits with customer data.
// @Tags Visits
// @Produce  json
// @Success 200 {object} map[string]any "Jobs"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 403 {object} response.ErrorResponse "Not a worker"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /services/worker [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.service.listforworker"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	workerUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || workerUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	visits, err := h.service.ListForWorker(r.Context(), workerUID)
	if err != nil {
		log.Error("failed to list worker visits", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list visits"))
		return
	}

	log.Info("worker visits listed", slog.Int("count", len(visits)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"visits": visits,
	}))
}
