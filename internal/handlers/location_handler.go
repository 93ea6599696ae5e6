package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/graze-api/internal/filters"
	"github.com/Lixing-Zhang/graze-api/internal/service"
)

// LocationHandler handles location search HTTP requests
type LocationHandler struct {
	service *service.LocationService
	logger  *slog.Logger
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(service *service.LocationService, logger *slog.Logger) *LocationHandler {
	return &LocationHandler{
		service: service,
		logger:  logger,
	}
}

// ListLocations handles GET /locations
func (h *LocationHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	q, err := filters.ParseLocationQuery(r.URL.Query())
	if err != nil {
		h.logger.Info("invalid location filter", "error", err)
		WriteServiceError(w, r, err, h.logger)
		return
	}

	page, err := h.service.ListLocations(r.Context(), q)
	if err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}

	data := make([]locationSummary, len(page.Items))
	for i, result := range page.Items {
		data[i] = newLocationSummary(result)
	}

	meta := locationMeta{Total: page.Total, Limit: page.Limit}
	if page.Center != nil {
		meta.CenterLat = &page.Center.Lat
		meta.CenterLng = &page.Center.Lng
		meta.RadiusMiles = page.RadiusMiles
	}

	WriteJSON(w, http.StatusOK, ListResponse{Data: data, Meta: meta}, h.logger)
}

// GetLocation handles GET /locations/{id}
func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}

	loc, err := h.service.GetLocation(r.Context(), id)
	if err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, newLocationDetail(*loc), h.logger)
}
