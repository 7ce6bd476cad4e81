// Package list implements the HTTP handler for the public plant catalog.
//
// The handler parses the filter, search and paging parameters from the query
// string, delegates to the catalog service and returns the matching plants
// together with the total count.
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
	defaultLimit = 20
	maxLimit     = 100
)

// Handler handles catalog listing requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the catalog listing business logic.
type Service interface {
	List(ctx context.Context, filter models.PlantFilter) ([]*models.Plant, int, error)
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary List the plant catalog
// @Description Returns active plants matching the filter, paged.
// @Tags Plants
// @Produce  json
// @Param category query string false "Category filter"
// @Param size query string false "Size filter"
// @Param search query string false "Name or description substring"
// @Param min_price query number false "Minimum daily price"
// @Param max_price query number false "Maximum daily price"
// @Param sort_by query string false "created_at, price or name"
// @Param sort_order query string false "asc or desc"
// @Param page query int false "Page number, starting at 1"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]any "Matching plants"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /plants [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plant.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	filter := parseFilter(r)

	plants, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		log.Error("failed to list plants", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list plants"))
		return
	}

	log.Info("plants listed", slog.Int("count", len(plants)), slog.Int("total", total))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"plants": plants,
		"total":  total,
		"page":   filter.Page,
		"limit":  filter.Limit,
	}))
}

func parseFilter(r *http.Request) models.PlantFilter {
	q := r.URL.Query()

	filter := models.PlantFilter{
		Category:  q.Get("category"),
		Size:      q.Get("size"),
		Search:    q.Get("search"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
		Page:      1,
		Limit:     defaultLimit,
	}

	if v, err := strconv.ParseFloat(q.Get("min_price"), 64); err == nil {
		filter.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(q.Get("max_price"), 64); err == nil {
		filter.MaxPrice = &v
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		filter.Page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 && v <= maxLimit {
		filter.Limit = v
	}
	return filter
}
