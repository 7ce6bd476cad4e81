// Package add implements the HTTP handler putting a subscription request
// into the caller's cart. Nothing is persisted until checkout.
package add

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/greenspire/plant-rental/internal/http/middlewarectx"
	"github.com/greenspire/plant-rental/internal/http/response"
	"github.com/greenspire/plant-rental/internal/lib/sl"
	"github.com/greenspire/plant-rental/internal/models"
)

// Handler handles cart add requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service describes the cart add business logic.
type Service interface {
	Add(userUID string, item models.DummySubscription) int
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
// @Summary Add an item to the cart
// @Description Puts a subscription request into the caller's cart.
// @Tags Cart
// @Accept  json
// @Produce  json
// @Param request body models.DummySubscription true "Subscription data"
// @Success 200 {object} map[string]any "Item added"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Router /cart [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.cart.add"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummySubscription
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

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	count := h.service.Add(userUID, req)

	log.Info("cart item added", slog.Int("items", count))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"items": count,
	}))
}
