package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Lixing-Zhang/graze-api/internal/service"
)

// StatsHandler serves catalog statistics
type StatsHandler struct {
	service *service.StatsService
	logger  *slog.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(service *service.StatsService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		service: service,
		logger:  logger,
	}
}

type statsResponse struct {
	TotalDishes      int          `json:"total_dishes"`
	TotalRestaurants int          `json:"total_restaurants"`
	LastUpdated      *time.Time   `json:"last_updated"`
	TopProteinDish   *dishSummary `json:"top_protein_dish"`
	BestRatioDish    *dishSummary `json:"best_ratio_dish"`
}

// GetStats handles GET /stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}

	resp := statsResponse{
		TotalDishes:      stats.TotalDishes,
		TotalRestaurants: stats.TotalRestaurants,
		LastUpdated:      stats.LastUpdated,
	}
	if stats.TopProteinDish != nil {
		d := newDishSummary(*stats.TopProteinDish)
		resp.TopProteinDish = &d
	}
	if stats.BestRatioDish != nil {
		d := newDishSummary(*stats.BestRatioDish)
		resp.BestRatioDish = &d
	}
	WriteJSON(w, http.StatusOK, resp, h.logger)
}
