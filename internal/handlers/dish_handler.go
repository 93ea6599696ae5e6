package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/graze-api/internal/filters"
	"github.com/Lixing-Zhang/graze-api/internal/service"
)

// DishHandler handles dish-related HTTP requests
type DishHandler struct {
	service *service.DishService
	logger  *slog.Logger
}

// NewDishHandler creates a new dish handler
func NewDishHandler(service *service.DishService, logger *slog.Logger) *DishHandler {
	return &DishHandler{
		service: service,
		logger:  logger,
	}
}

// ListDishes handles GET /dishes
func (h *DishHandler) ListDishes(w http.ResponseWriter, r *http.Request) {
	q, err := filters.ParseDishQuery(r.URL.Query())
	if err != nil {
		h.logger.Info("invalid dish filter", "error", err)
		WriteServiceError(w, r, err, h.logger)
		return
	}

	page, err := h.service.ListDishes(r.Context(), q)
	if err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, ListResponse{
		Data: newDishSummaries(page.Items),
		Meta: dishMeta{
			Total:   page.Total,
			Limit:   page.Limit,
			Offset:  page.Offset,
			HasMore: page.HasMore(),
		},
		FiltersApplied: q.Applied(),
	}, h.logger)
}

// GetDish handles GET /dishes/{id}
func (h *DishHandler) GetDish(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}

	item, err := h.service.GetDish(r.Context(), id)
	if err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, newDishDetail(*item), h.logger)
}
