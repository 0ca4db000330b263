package handler

import (
	"encoding/json"
	"net/http"

	"gamestore-api/internal/middleware"
	"gamestore-api/internal/model"
	"gamestore-api/internal/service"

	"github.com/rs/zerolog"
)

// SettingsHandler handles store-settings HTTP requests.
type SettingsHandler struct {
	service service.SettingsService
	logger  zerolog.Logger
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(service service.SettingsService, logger zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		logger:  logger.With().Str("handler", "settings").Logger(),
	}
}

// GetRate handles GET /api/vbucks-rate requests.
func (h *SettingsHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "", h.logger)
		return
	}

	rate, err := h.service.VbucksRate(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to retrieve V-Bucks rate", "", h.logger)
		return
	}

	writeData(w, http.StatusOK, model.VbucksRate{Rate: rate})
}

// UpdateRate handles PUT /api/vbucks-rate requests (admin only).
func (h *SettingsHandler) UpdateRate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "", h.logger)
		return
	}

	var req model.VbucksRate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "", h.logger)
		return
	}

	var updatedBy *int64
	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		userID := identity.UserID
		updatedBy = &userID
	}

	if err := h.service.UpdateVbucksRate(r.Context(), req.Rate, updatedBy); err != nil {
		writeDomainError(w, err, "Failed to update V-Bucks rate", h.logger)
		return
	}

	writeMessage(w, http.StatusOK, "V-Bucks rate updated successfully")
}

// RateHistory handles GET /api/vbucks-rate/history requests (admin only).
func (h *SettingsHandler) RateHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "", h.logger)
		return
	}

	entries, err := h.service.RateHistory(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to retrieve rate history", "", h.logger)
		return
	}

	if entries == nil {
		entries = []model.RateHistoryEntry{}
	}

	writeData(w, http.StatusOK, entries)
}
