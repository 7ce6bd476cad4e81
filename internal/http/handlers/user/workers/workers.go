// Package workers implements the admin HTTP handler returning every user
// with the worker role, for the assignment dropdown.
package workers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/greenspire/plant-rental/internal/http/response"
	"github.com/greenspire/plant-rental/internal/lib/sl"
	"github.com/greenspire/plant-rental/internal/models"
)

// Handler handles worker listing requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the worker listing business logic.
type Service interface {
	ListWorkers(ctx context.Context) ([]*models.User, error)
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// workerView hides the password hash from the listing.
type workerView struct {
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ServeHTTP godoc
// @Summary List workers
// @Description Returns every user with the worker role. Admin only.
// @Tags Users
// @Produce  json
// @Success 200 {object} map[string]any "Workers"
// @Failure 403 {object} response.ErrorResponse "Not an admin"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /users/workers [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.workers"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	users, err := h.service.ListWorkers(r.Context())
	if err != nil {
		log.Error("failed to list workers", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list workers"))
		return
	}

	views := make([]workerView, 0, len(users))
	for _, u := range users {
		views = append(views, workerView{UID: u.UID, Name: u.Name, Email: u.Email})
	}

	log.Info("workers listed", slog.Int("count", len(views)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"workers": views,
	}))
}
