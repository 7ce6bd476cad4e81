// Package list implements the HTTP handler returning the caller's cart.
package list

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/greenspire/plant-rental/internal/http/middlewarectx"
	"github.com/greenspire/plant-rental/internal/http/response"
	"github.com/greenspire/plant-rental/internal/models"
)

// Handler handles cart listing requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the cart listing business logic.
type Service interface {
	Items(userUID string) []models.DummySubscription
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary List the cart
// @Description Returns the caller's cart items.
// @Tags Cart
// @Produce  json
// @Success 200 {object} map[string]any "Cart items"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Router /cart [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.cart.list"

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

	items := h.service.Items(userUID)

	log.Info("cart listed", slog.Int("items", len(items)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"items": items,
	}))
}
