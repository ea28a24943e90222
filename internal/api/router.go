package api

import (
	"log/slog"
	"net/http"
	"time"
)

// RegisterRoutes wires every handler onto the mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Session
	mux.HandleFunc("POST /session", h.startSession)
	mux.HandleFunc("GET /session", h.getSession)
	mux.HandleFunc("POST /session/answer", h.selectAnswer)
	mux.HandleFunc("POST /session/submit", h.submitAnswer)
	mux.HandleFunc("POST /session/next", h.nextQuestion)
	mux.HandleFunc("POST /session/previous", h.previousQuestion)
	mux.HandleFunc("POST /session/finish", h.finishSession)
	mux.HandleFunc("DELETE /session", h.clearSession)
	mux.HandleFunc("GET /session/results", h.sessionResults)

	// Stats
	mux.HandleFunc("GET /stats", h.overallStats)
	mux.HandleFunc("GET /stats/categories", h.categoryStats)
	mux.HandleFunc("GET /questions/categories", h.listCategories)

	// Custom quizzes
	mux.HandleFunc("GET /quizzes", h.listQuizzes)
	mux.HandleFunc("POST /quizzes", h.createQuiz)
	mux.HandleFunc("DELETE /quizzes/{quizID}", h.deleteQuiz)

	// Preferences
	mux.HandleFunc("GET /preferences", h.getPreferences)
	mux.HandleFunc("PUT /preferences", h.updatePreferences)

	// Export
	mux.HandleFunc("GET /export", h.exportAll)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging logs each request with method, path, status, and duration.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", recorder.status,
				"duration", time.Since(start),
			)
		})
	}
}

// CORS allows the locally served UI to talk to the engine.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
