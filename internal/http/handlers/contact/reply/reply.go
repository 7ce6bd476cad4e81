// Package reply implements the admin HTTP handler answering a contact
// message. The reply is stored and mailed to the sender.
package reply

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

	"github.com/greenspire/plant-rental/internal/http/response"
	"github.com/greenspire/plant-rental/internal/lib/sl"
	"github.com/greenspire/plant-rental/internal/services/contact"
)

// Request carries the reply text.
type Request struct {
	Reply string `json:"reply" validate:"required,min=2"`
}

// Handler handles contact reply requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service describes the reply business logic.
type Service interface {
	Reply(ctx context.Context, id int, reply string) error
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
// @Summary Reply to a contact message
// @Description Stores the reply and mails it to the sender. Admin only.
// @Tags Contact
// @Accept  json
// @Produce  json
// @Param id path int true "Message id"
// @Param request body Request true "Reply text"
// @Success 200 {object} map[string]any "Reply stored"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON or id"
// @Failure 403 {object} response.ErrorResponse "Not an admin"
// @Failure 404 {object} response.ErrorResponse "Message not found"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /contact/{id}/reply [put]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contact.reply"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid message id"))
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

	if err := h.service.Reply(r.Context(), id, req.Reply); err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			log.Error("contact message not found", slog.Int("message_id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("message not found"))
			return
		}
		log.Error("failed to reply", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not store reply"))
		return
	}

	log.Info("contact message replied", slog.Int("message_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message_id": id,
	}))
}
