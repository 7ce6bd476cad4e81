// Package read implements the HTTP handler for reading one subscription.
// Customers only see their own subscriptions, admins see any.
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

	"github.com/greenspire/plant-rental/internal/http/middlewarectx"
	"github.com/greenspire/plant-rental/internal/http/response"
	"github.com/greenspire/plant-rental/internal/lib/sl"
	"github.com/greenspire/plant-rental/internal/models"
	"github.com/greenspire/plant-rental/internal/services/subscription"
)

// Handler handles single-subscription read requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the subscription read business logic.
type Service interface {
	Get(ctx context.Context, id int, userUID, role string) (*models.Subscription, error)
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Read one subscription
// @Description Returns a subscription by id. Customers may only read their own.
// @Tags Subscriptions
// @Produce  json
// @Param id path int true "Subscription id"
// @Success 200 {object} map[string]any "The subscription"
// @Failure 400 {object} response.ErrorResponse "Invalid id"
// @Failure 403 {object} response.ErrorResponse "Foreign subscription"
// @Failure 404 {object} response.ErrorResponse "Subscription not found"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /subscriptions/{id} [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid subscription id"))
		return
	}

	userUID, _ := r.Context().Value(middlewarectx.UserUID).(string)
	role, _ := r.Context().Value(middlewarectx.Role).(string)

	sub, err := h.service.Get(r.Context(), id, userUID, role)
	if err != nil {
		switch {
		case errors.Is(err, subscription.ErrNotFound):
			log.Error("subscription not found", slog.Int("subscription_id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscription not found"))
		case errors.Is(err, subscription.ErrNotOwner):
			log.Error("access to foreign subscription denied", slog.Int("subscription_id", id))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("access denied"))
		default:
			log.Error("failed to read subscription", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not read subscription"))
		}
		return
	}

	log.Info("subscription read", slog.Int("subscription_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscription": sub,
	}))
}
