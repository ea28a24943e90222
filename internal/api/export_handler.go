package api

import (
	"encoding/json"
	"net/http"
)

// GET /export
func (h *Handler) exportAll(w http.ResponseWriter, r *http.Request) {
	bundle, err := h.exporter.Export(r.Context())
	if err != nil {
		h.logger.Error("export failed", "error", err)
		respondError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=uwtopia-export.json")
	json.NewEncoder(w).Encode(bundle)
}
