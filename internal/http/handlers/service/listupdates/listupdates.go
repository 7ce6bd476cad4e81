// Package listupdates implements the HTTP handler returning the append-only
// worker update log of one visit.
package listupdates

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/greenspire/plant-rental/internal/http/response"
	"github.com/greenspire/plant-rental/internal/lib/sl"
	"github.com/greenspire/plant-rental/internal/models"
)

// Handler handles visit update log requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the update log business logic.
type Service interface {
	ListUpdates(ctx context.Context, visitID int) ([]*models.VisitUpdate, error)
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary List the worker updates of a visit
// @Description Returns the append-only submission log of a visit. Admin only.
// @Tags Visits
// @Produce  json
// @Param id path int true "Visit id"
// @Success 200 {object} map[string]any "Updates"
// @Failure 400 {object} response.ErrorResponse "Invalid id"
// @Failure 403 {object} response.ErrorResponse "Not an admin"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /services/{id}/updates [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.service.listupdates"

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

	updates, err := h.service.ListUpdates(r.Context(), id)
	if err != nil {
		log.Error("failed to list visit updates", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list visit updates"))
		return
	}

	log.Info("visit updates listed", slog.Int("visit_id", id), slog.Int("count", len(updates)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"updates": updates,
	}))
}
