// Package reportissue implements the customer HTTP handler flagging a
// worker-completed visit as unsatisfactory. The visit moves to
// requires-revisit and the comment is appended to its notes.
package reportissue

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
	"github.com/greenspire/plant-rental/internal/services/visit"
)

// Request carries the issue description.
type Request struct {
	Comment string `json:"comment" validate:"required,min=5"`
}

// Handler handles issue reports on visits.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service describes the issue reporting business logic.
type Service interface {
	ReportIssue(ctx context.Context, visitID int, userUID, comment string) error
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
// @Summary Report an issue with a visit
// @Description Flags a worker-completed visit for a revisit with a comment.
// @Tags Visits
// @Accept  json
// @Produce  json
// @Param id path int true "Visit id"
// @Param request body Request true "Issue description"
// @Success 200 {object} map[string]any "Issue recorded"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON or id"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 403 {object} response.ErrorResponse "Foreign subscription"
// @Failure 404 {object} response.ErrorResponse "Visit not found"
// @Failure 409 {object} response.ErrorResponse "Visit is not completed by a worker"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /services/{id}/report-issue [put]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.service.reportissue"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid visit id"))
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

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.ReportIssue(r.Context(), id, userUID, req.Comment); err != nil {
		switch {
		case errors.Is(err, visit.ErrNotFound):
			log.Error("visit not found", slog.Int("visit_id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("visit not found"))
		case errors.Is(err, visit.ErrNotOwner):
			log.Error("visit belongs to a foreign subscription", slog.Int("visit_id", id))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("access denied"))
		case errors.Is(err, visit.ErrInvalidTransition):
			log.Error("visit is not completed by a worker", slog.Int("visit_id", id))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("visit is not in a state that allows an issue report"))
		default:
			log.Error("failed to report issue", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not report issue"))
		}
		return
	}

	log.Info("issue reported", slog.Int("visit_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"visit_id": id,
	}))
}
