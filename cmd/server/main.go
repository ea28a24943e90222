package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uwtopia/engine/internal/api"
	"github.com/uwtopia/engine/internal/domain/question"
	"github.com/uwtopia/engine/internal/engine"
	"github.com/uwtopia/engine/internal/infrastructure/config"
	"github.com/uwtopia/engine/internal/service"
	"github.com/uwtopia/engine/internal/store"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// ── Dependencies ────────────────────────────────────────────────
	catalog, err := question.Load(cfg.CorpusPath)
	if err != nil {
		// A broken corpus is not fatal to startup: the app runs with zero
		// questions and quiz starts report "no questions available".
		logger.Warn("question corpus unavailable", "path", cfg.CorpusPath, "error", err)
		catalog = question.Empty()
	}

	attempts, err := store.NewSQLite(cfg.AttemptsDBPath)
	if err != nil {
		logger.Error("failed to open attempt store", "error", err)
		os.Exit(1)
	}
	defer attempts.Close()

	prefs, err := store.NewPrefs(cfg.PrefsDBPath)
	if err != nil {
		logger.Error("failed to open preference store", "error", err)
		os.Exit(1)
	}
	defer prefs.Close()

	eng := engine.New(catalog, attempts, prefs, logger)
	defer eng.Close()

	recovered, err := eng.Recover()
	if err != nil {
		logger.Error("session recovery failed", "error", err)
	}
	if recovered {
		logger.Info("recovered in-progress session")
	}

	exporter := service.NewExportService(catalog, attempts, prefs, logger)
	handler := api.NewHandler(catalog, eng, exporter, attempts, prefs, logger)

	// ── Routes ──────────────────────────────────────────────────────
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	})

	api.RegisterRoutes(mux, handler)

	// ── Middleware chain: Logging → CORS → mux ──────────────────────
	logged := api.Logging(logger)(api.CORS(mux))

	// ── Server ──────────────────────────────────────────────────────
	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           logged,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down server")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server forced to shutdown", "error", err)
		}
	}()

	logger.Info("starting server", "address", cfg.ServerAddress, "questions", catalog.Len())
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed to start", "error", err)
		os.Exit(1)
	}
}
