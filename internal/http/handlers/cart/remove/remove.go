// Package remove implements the HTTP handler deleting one item from the
// caller's cart by its position.
package remove

import (
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
	"github.com/greenspire/plant-rental/internal/services/cart"
)

// Handler handles cart removal requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the cart removal business logic.
type Service interface {
	Remove(userUID string, index int) error
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Remove a cart item
// @Description Deletes the item at the given position from the caller's cart.
// @Tags Cart
// @Produce  json
// @Param index path int true "Item position, starting at 0"
// @Success 200 {object} map[string]any "Item removed"
// @Failure 400 {object} response.ErrorResponse "Invalid index"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 404 {object} response.ErrorResponse "No such item"
// @Router /cart/{index} [delete]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.cart.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		log.Error("failed to decode index from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid cart index"))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.Remove(userUID, index); err != nil {
		if errors.Is(err, cart.ErrNoSuchItem) {
			log.Error("no such cart item", slog.Int("index", index))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("no such cart item"))
			return
		}
		log.Error("failed to remove cart item", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove cart item"))
		return
	}

	log.Info("cart item removed", slog.Int("index", index))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"index": index,
	}))
}
