// Package listforuser implements the customer HTTP handler returning the
// caller's service history: visits a worker completed, confirmed ones and
// ones flagged for a revisit, newest first.
package listforuser

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

// Handler handles customer visit history requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the visit history business logic.
type Service interface {
	ListForUser(ctx context.Context, userUID string) ([]*models.VisitInfo, error)
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary List the caller's service history
// @Description Returns the customer's completed, confirmed and revisit-flagged visits, newest first.
// @Tags Visits
// @Produce  json
// @Success 200 {object} map[string]any "Visits"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /services/user [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.service.listforuser"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	visits, err := h.service.ListForUser(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list user visits", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list visits"))
		return
	}

	log.Info("user visits listed", slog.Int("count", len(visits)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"visits": visits,
	}))
}
