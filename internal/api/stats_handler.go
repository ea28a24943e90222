package api

import (
	"net/http"

	"github.com/uwtopia/engine/internal/stats"
)

// ── Handlers ────────────────────────────────────────────────────────────────

// GET /stats
func (h *Handler) overallStats(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.attempts.AllAttempts(r.Context())
	if err != nil {
		h.logger.Error("failed to load attempts", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load attempts")
		return
	}

	respondJSON(w, http.StatusOK, stats.Overall(h.catalog.All(), attempts))
}

// GET /stats/categories
func (h *Handler) categoryStats(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.attempts.AllAttempts(r.Context())
	if err != nil {
		h.logger.Error("failed to load attempts", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load attempts")
		return
	}

	respondJSON(w, http.StatusOK, stats.ByCategory(h.catalog.All(), attempts))
}

// GET /questions/categories
func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.catalog.Categories()
	if categories == nil {
		categories = []string{}
	}
	respondJSON(w, http.StatusOK, categories)
}
