package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/graze-api/internal/models"
	"github.com/Lixing-Zhang/graze-api/internal/service"
)

// ConfigHandler serves client configuration and admin settings updates
type ConfigHandler struct {
	service *service.SettingsService
	logger  *slog.Logger
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(service *service.SettingsService, logger *slog.Logger) *ConfigHandler {
	return &ConfigHandler{
		service: service,
		logger:  logger,
	}
}

type clientConfigResponse struct {
	Filters          []models.FilterConfig `json:"filters"`
	QuickFilters     []models.QuickFilter  `json:"quick_filters"`
	SortOptions      []models.SortOption   `json:"sort_options"`
	AppSettings      models.AppSettings    `json:"app_settings"`
	RestaurantColors map[string]string     `json:"restaurant_colors"`
	Version          int                   `json:"version"`
}

// GetConfig handles GET /config/all
func (h *ConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.GetClientConfig(r.Context())
	if err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, clientConfigResponse{
		Filters:          nonNil(cfg.Filters),
		QuickFilters:     nonNil(cfg.QuickFilters),
		SortOptions:      nonNil(cfg.SortOptions),
		AppSettings:      cfg.AppSettings,
		RestaurantColors: cfg.RestaurantColors,
		Version:          cfg.AppSettings.Version,
	}, h.logger)
}

// UpdateSettings handles PUT /admin/settings
func (h *ConfigHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.AppSettings
	if err := decodeBody(r, &settings); err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}

	saved, err := h.service.SaveAppSettings(r.Context(), settings)
	if err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, saved, h.logger)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
