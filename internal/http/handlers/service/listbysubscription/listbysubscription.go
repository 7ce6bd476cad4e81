// Package listbysubscription implements the HTTP handler returning the visit
// schedule of one subscription, ordered by visit date.
package listbysubscription

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

// Handler handles visit listing requests for a subscription.
type Handler struct {
	log    *slog.Logger
	subs   SubscriptionService
	visits VisitService
}

// SubscriptionService resolves the subscription first so the ownership check
// applies before any visit leaks.
type SubscriptionService interface {
	Get(ctx context.Context, id int, userUID, role string) (*models.Subscription, error)
}

// VisitService describes the visit listing business logic.
type VisitService interface {
	ListBySubscription(ctx context.Context, subscriptionID int) ([]*models.ServiceVisit, error)
}

// New creates a new Handler with the given logger and services.
func New(log *slog.Logger, subs SubscriptionService, visits VisitService) *Handler {
	return &Handler{
		log:    log,
		subs:   subs,
		visits: visits,
	}
}

// ServeHTTP godoc
// @Summary List the visits of a subscription
// @Description Returns the visit schedule of a subscription, ordered by date. Customers may only read their own.
// @Tags Visits
// @Produce  json
// @Param id path int true "Subscription id"
// @Success 200 {object} map[string]any "Visits"
// @Failure 400 {object} response.ErrorResponse "Invalid id"
// @Failure 403 {object} response.ErrorResponse "Foreign subscription"
// @Failure 404 {object} response.ErrorResponse "Subscription not found"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /services/subscription/{id} [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.service.listbysubscription"

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

	if _, err := h.subs.Get(r.Context(), id, userUID, role); err != nil {
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

	visits, err := h.visits.ListBySubscription(r.Context(), id)
	if err != nil {
		log.Error("failed to list visits", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list visits"))
		return
	}

	log.Info("visits listed", slog.Int("subscription_id", id), slog.Int("count", len(visits)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"visits": visits,
	}))
}
