package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/uwtopia/engine/internal/domain/question"
	"github.com/uwtopia/engine/internal/domain/session"
	"github.com/uwtopia/engine/internal/engine"
	"github.com/uwtopia/engine/internal/service"
	"github.com/uwtopia/engine/internal/store"
)

// Handler holds all dependencies needed by HTTP handlers. Instead of relying
// on package-level globals, every handler method receives its dependencies
// through this struct.
type Handler struct {
	catalog  *question.Catalog
	engine   *engine.Engine
	exporter *service.ExportService
	attempts store.AttemptStore
	prefs    store.PreferenceStore
	logger   *slog.Logger
}

// NewHandler creates a Handler with the given dependencies.
func NewHandler(catalog *question.Catalog, eng *engine.Engine, exporter *service.ExportService, attempts store.AttemptStore, prefs store.PreferenceStore, logger *slog.Logger) *Handler {
	return &Handler{
		catalog:  catalog,
		engine:   eng,
		exporter: exporter,
		attempts: attempts,
		prefs:    prefs,
		logger:   logger,
	}
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// decodeJSON decodes the request body. Returns false (after writing a 400)
// when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

// handleEngineError maps engine and session errors to HTTP responses.
// Returns true if an error was handled (caller should return). Usage errors
// come back as 4xx so the UI can show them as warnings, not failures.
func (h *Handler) handleEngineError(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, session.ErrAlreadyLocked):
		respondError(w, http.StatusConflict, "answer is already locked")
	case errors.Is(err, session.ErrNoSelection):
		respondError(w, http.StatusBadRequest, "no answer selected")
	case errors.Is(err, session.ErrInvalidOption):
		respondError(w, http.StatusBadRequest, "option index out of range")
	case errors.Is(err, engine.ErrNoActiveSession):
		respondError(w, http.StatusNotFound, "no active session")
	case errors.Is(err, engine.ErrEmptyQuestionSet):
		respondError(w, http.StatusBadRequest, "no questions match the requested filters")
	case errors.Is(err, engine.ErrQuizNotFound):
		respondError(w, http.StatusNotFound, "custom quiz not found")
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	default:
		h.logger.Error("engine error", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
	return true
}
