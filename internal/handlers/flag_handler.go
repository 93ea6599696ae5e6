package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/graze-api/internal/service"
)

// FlagHandler handles user report submission and resolution
type FlagHandler struct {
	service *service.FlagService
	logger  *slog.Logger
}

// NewFlagHandler creates a new flag handler
func NewFlagHandler(service *service.FlagService, logger *slog.Logger) *FlagHandler {
	return &FlagHandler{
		service: service,
		logger:  logger,
	}
}

type dataFlagRequest struct {
	MenuItem    *int64 `json:"menu_item"`
	FlagType    string `json:"flag_type"`
	UserComment string `json:"user_comment"`
}

type locationFlagRequest struct {
	Location    *int64 `json:"location"`
	FlagType    string `json:"flag_type"`
	UserComment string `json:"user_comment"`
}

// CreateDataFlag handles POST /flags
func (h *FlagHandler) CreateDataFlag(w http.ResponseWriter, r *http.Request) {
	var req dataFlagRequest
	if err := decodeBody(r, &req); err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}

	msg, err := h.service.SubmitDataFlag(r.Context(), service.DataFlagInput{
		MenuItemID:  req.MenuItem,
		FlagType:    req.FlagType,
		UserComment: req.UserComment,
		UserIP:      clientIP(r),
	})
	if err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}

	h.logger.Info("data flag submitted", "flag_type", req.FlagType)
	WriteJSON(w, http.StatusCreated, messageResponse{Message: msg}, h.logger)
}

// CreateLocationFlag handles POST /location-flags
func (h *FlagHandler) CreateLocationFlag(w http.ResponseWriter, r *http.Request) {
	var req locationFlagRequest
	if err := decodeBody(r, &req); err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}

	msg, err := h.service.SubmitLocationFlag(r.Context(), service.LocationFlagInput{
		LocationID:  req.Location,
		FlagType:    req.FlagType,
		UserComment: req.UserComment,
		UserIP:      clientIP(r),
	})
	if err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}

	h.logger.Info("location flag submitted", "flag_type", req.FlagType)
	WriteJSON(w, http.StatusCreated, messageResponse{Message: msg}, h.logger)
}

// ResolveDataFlag handles POST /admin/flags/{id}/resolve
func (h *FlagHandler) ResolveDataFlag(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ResolveDataFlag(r.Context(), chi.URLParam(r, "id")); err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, messageResponse{Message: "Flag resolved."}, h.logger)
}

// ResolveLocationFlag handles POST /admin/location-flags/{id}/resolve
func (h *FlagHandler) ResolveLocationFlag(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ResolveLocationFlag(r.Context(), chi.URLParam(r, "id")); err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, messageResponse{Message: "Flag resolved."}, h.logger)
}
