// Package list implements the admin HTTP handler returning the support
// inbox, newest first.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/greenspire/plant-rental/internal/http/response"
	"github.com/greenspire/plant-rental/internal/lib/sl"
	"github.com/greenspire/plant-rental/internal/models"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Handler handles inbox listing requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the inbox listing business logic.
type Service interface {
	List(ctx context.Context, limit, offset int) ([]*models.ContactMessage, error)
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary List contact messages
// @Description Returns the support inbox, newest first. Admin only.
// @Tags Contact
// @Produce  json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]any "Messages"
// @Failure 403 {object} response.ErrorResponse "Not an admin"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /contact/admin [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contact.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit := defaultLimit
	offset := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= maxLimit {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}

	messages, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list contact messages", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list messages"))
		return
	}

	log.Info("contact messages listed", slog.Int("count", len(messages)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"messages": messages,
	}))
}
