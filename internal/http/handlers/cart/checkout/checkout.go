// Package checkout implements the HTTP handler turning the caller's cart
// into subscriptions, one per item, each with its own visit schedule.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/greenspire/plant-rental/internal/http/middlewarectx"
	"github.com/greenspire/plant-rental/internal/http/response"
	"github.com/greenspire/plant-rental/internal/lib/sl"
	"github.com/greenspire/plant-rental/internal/services/cart"
)

// Handler handles checkout requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the checkout business logic.
type Service interface {
	Checkout(ctx context.Context, userUID string) ([]int, error)
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Check out the cart
// @Description Creates one subscription per cart item and empties the cart.
// @Tags Cart
// @Produce  json
// @Success 200 {object} map[string]any "Created subscription ids"
// @Failure 400 {object} response.ErrorResponse "Empty cart"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /cart/checkout [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.cart.checkout"

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

	ids, err := h.service.Checkout(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, cart.ErrEmptyCart) {
			log.Error("cart is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("cart is empty"))
			return
		}
		log.Error("checkout failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not check out cart"))
		return
	}

	log.Info("cart checked out", slog.Int("subscriptions", len(ids)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscription_ids": ids,
	}))
}
