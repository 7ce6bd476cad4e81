// Package generatevisits implements the admin HTTP handler creating the
// initial visit schedule of a subscription that has none. The operation is
// idempotent on the subscription id.
package generatevisits

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
	"github.com/greenspire/plant-rental/internal/services/subscription"
)

// Handler handles visit generation requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the visit generation business logic.
type Service interface {
	GenerateVisits(ctx context.Context, id int) (int, error)
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Generate the visit schedule
// @Description Creates the initial visits of a subscription that has none. Repeated calls change nothing. Admin only.
// @Tags Subscriptions
// @Produce  json
// @Param id path int true "Subscription id"
// @Success 200 {object} map[string]any "Number of visits created, zero when they already existed"
// @Failure 400 {object} response.ErrorResponse "Invalid id"
// @Failure 403 {object} response.ErrorResponse "Not an admin"
// @Failure 404 {object} response.ErrorResponse "Subscription not found"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /subscriptions/{id}/visits [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.generatevisits"

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

	created, err := h.service.GenerateVisits(r.Context(), id)
	if err != nil {
		if errors.Is(err, subscription.ErrNotFound) {
			log.Error("subscription not found", slog.Int("subscription_id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscription not found"))
			return
		}
		log.Error("failed to generate visits", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not generate visits"))
		return
	}

	log.Info("visits generated", slog.Int("subscription_id", id), slog.Int("created", created))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscription_id": id,
		"visits_created":  created,
	}))
}
