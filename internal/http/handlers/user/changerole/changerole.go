// Package changerole implements the admin HTTP handler setting a user's
// role: customer, worker or admin.
package changerole

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/greenspire/plant-rental/internal/http/response"
	"github.com/greenspire/plant-rental/internal/lib/sl"
	"github.com/greenspire/plant-rental/internal/services/auth"
	"github.com/greenspire/plant-rental/internal/storage"
)

// Request carries the new role.
type Request struct {
	Role string `json:"role" validate:"required,oneof=customer worker admin"`
}

// Handler handles role change requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service describes the role change business logic.
type Service interface {
	ChangeRole(ctx context.Context, uid, role string) error
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
// @Summary Change a user's role
// @Description Sets the role of a user. Admin only.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param uid path string true "User uid"
// @Param request body Request true "New role"
// @Success 200 {object} map[string]any "Role changed"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON or role"
// @Failure 403 {object} response.ErrorResponse "Not an admin"
// @Failure 404 {object} response.ErrorResponse "User not found"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /users/{uid}/promote [put]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.changerole"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid := chi.URLParam(r, "uid")

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

	if err := h.service.ChangeRole(r.Context(), uid, req.Role); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			log.Error("user not found", slog.String("user_uid", uid))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		case errors.Is(err, auth.ErrInvalidRole):
			log.Error("invalid role", slog.String("role", req.Role))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid role"))
		default:
			log.Error("failed to change role", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not change role"))
		}
		return
	}

	log.Info("role changed", slog.String("user_uid", uid), slog.String("role", req.Role))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user_uid": uid,
		"role":     req.Role,
	}))
}
