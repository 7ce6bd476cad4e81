// Package confirm implements the customer HTTP handler signing off a visit
// the worker marked as completed. Confirmation is terminal and advances the
// subscription's next maintenance date.
package confirm

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/greenspire/plant-rental/internal/http/middlewarectx"
	"github.com/greenspire/plant-rental/internal/http/response"
	"github.com/greenspire/plant-rental/internal/lib/sl"
	"github.com/greenspire/plant-rental/internal/services/visit"
)

// Handler handles visit confirmation requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the confirmation business logic.
type Service interface {
	Confirm(ctx context.Context, visitID int, userUID string) error
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Confirm a completed visit
// @Description Marks a worker-completed visit as confirmed by the customer.
// @Tags Visits
// @Produce  json
// @Param id path int true "Visit id"
// @Success 200 {object} map[string]any "Visit confirmed"
// @Failure 400 {object} response.ErrorResponse "Invalid id"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 403 {object} response.ErrorResponse "Foreign subscription"
// @Failure 404 {object} response.ErrorResponse "Visit not found"
// @Failure 409 {object} response.ErrorResponse "Visit is not completed by a worker"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /services/{id}/confirm [put]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.service.confirm"

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

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.Confirm(r.Context(), id, userUID); err != nil {
		switch {
		case errors.Is(err, visit.ErrNotFound):
			log.Error("visit not found", slog.Int("visit_id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("visit not found"))
		case errors.Is(err, visit.ErrNotOwner):
			log.Error("visit belongs to a foreign subscription", slog.Int("visit_id", id))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("access denied"))
		case errors.Is(err, visit.ErrInvalidTransition):
			log.Error("visit is not completed by a worker", slog.Int("visit_id", id))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("visit is not in a state that allows confirmation"))
		default:
			log.Error("failed to confirm visit", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not confirm visit"))
		}
		return
	}

	log.Info("visit confirmed", slog.Int("visit_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"visit_id": id,
	}))
}
