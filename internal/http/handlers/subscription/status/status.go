// Package status implements the HTTP handler changing a subscription's
// status. Customers may pause or cancel their own subscriptions, admins may
// set any status.
package status

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
	"github.com/greenspire/plant-rental/internal/services/subscription"
)

// Request carries the new status.
type Request struct {
	Status string `json:"status" validate:"required,oneof=active paused cancelled expired"`
}

// Handler handles subscription status change requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service describes the status change business logic.
type Service interface {
	UpdateStatus(ctx context.Context, id int, userUID, role, status string) error
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
// @Summary Change subscription status
// @Description Pauses, resumes, cancels or expires a subscription.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param id path int true "Subscription id"
// @Param request body Request true "New status"
// @Success 200 {object} map[string]any "Status changed"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON, id or status"
// @Failure 403 {object} response.ErrorResponse "Foreign subscription"
// @Failure 404 {object} response.ErrorResponse "Subscription not found"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /subscriptions/{id}/status [patch]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.status"

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

	userUID, _ := r.Context().Value(middlewarectx.UserUID).(string)
	role, _ := r.Context().Value(middlewarectx.Role).(string)

	if err := h.service.UpdateStatus(r.Context(), id, userUID, role, req.Status); err != nil {
		switch {
		case errors.Is(err, subscription.ErrNotFound):
			log.Error("subscription not found", slog.Int("subscription_id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscription not found"))
		case errors.Is(err, subscription.ErrNotOwner):
			log.Error("access to foreign subscription denied", slog.Int("subscription_id", id))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("access denied"))
		case errors.Is(err, subscription.ErrInvalidStatus):
			log.Error("invalid status", slog.String("status", req.Status))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid status"))
		default:
			log.Error("failed to update status", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update status"))
		}
		return
	}

	log.Info("subscription status updated",
		slog.Int("subscription_id", id), slog.String("status", req.Status))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscription_id": id,
		"status":          req.Status,
	}))
}
