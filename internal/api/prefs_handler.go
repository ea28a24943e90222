package api

import (
	"net/http"
)

// ── Request / Response types ────────────────────────────────────────────────

type UpdatePreferencesRequest struct {
	DarkMode *bool   `json:"dark_mode,omitempty"`
	FontSize *string `json:"font_size,omitempty"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// GET /preferences
func (h *Handler) getPreferences(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.prefs.Preferences())
}

// PUT /preferences
func (h *Handler) updatePreferences(w http.ResponseWriter, r *http.Request) {
	var req UpdatePreferencesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.DarkMode != nil {
		if err := h.prefs.SetDarkMode(*req.DarkMode); err != nil {
			h.logger.Error("failed to save dark mode", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to save preference")
			return
		}
	}
	if req.FontSize != nil {
		if err := h.prefs.SetFontSize(*req.FontSize); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	respondJSON(w, http.StatusOK, h.prefs.Preferences())
}
