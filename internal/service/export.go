package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uwtopia/engine/internal/domain/attempt"
	"github.com/uwtopia/engine/internal/domain/customquiz"
	"github.com/uwtopia/engine/internal/domain/question"
	"github.com/uwtopia/engine/internal/stats"
	"github.com/uwtopia/engine/internal/store"
	"github.com/uwtopia/engine/internal/worker"
)

// Bundle is the on-demand backup document: write-only output, never read
// back by this system.
type Bundle struct {
	SchemaVersion int                     `json:"schema_version"`
	ExportedAt    string                  `json:"exported_at"`
	Attempts      []attempt.Attempt       `json:"attempts"`
	CustomQuizzes []customquiz.CustomQuiz `json:"custom_quizzes"`
	Preferences   store.Preferences       `json:"preferences"`
	OverallStats  stats.Counts            `json:"overall_stats"`
}

const bundleSchemaVersion = 1

// ExportService assembles export bundles from the stores.
type ExportService struct {
	catalog  *question.Catalog
	attempts store.AttemptStore
	prefs    store.PreferenceStore
	logger   *slog.Logger
}

func NewExportService(catalog *question.Catalog, attempts store.AttemptStore, prefs store.PreferenceStore, logger *slog.Logger) *ExportService {
	return &ExportService{
		catalog:  catalog,
		attempts: attempts,
		prefs:    prefs,
		logger:   logger,
	}
}

// section is one independently gathered part of the bundle.
type section struct {
	attempts []attempt.Attempt
	quizzes  []customquiz.CustomQuiz
	prefs    store.Preferences
}

// Export gathers the bundle sections concurrently and derives the stats
// snapshot from the attempt list.
func (s *ExportService) Export(ctx context.Context) (Bundle, error) {
	pool := worker.NewPool[section](ctx, 3, 3)
	defer pool.Close()

	pool.Submit("attempts", func(ctx context.Context) (section, error) {
		attempts, err := s.attempts.AllAttempts(ctx)
		return section{attempts: attempts}, err
	})
	pool.Submit("quizzes", func(ctx context.Context) (section, error) {
		quizzes, err := s.prefs.CustomQuizzes()
		return section{quizzes: quizzes}, err
	})
	pool.Submit("preferences", func(ctx context.Context) (section, error) {
		return section{prefs: s.prefs.Preferences()}, nil
	})

	bundle := Bundle{
		SchemaVersion: bundleSchemaVersion,
		ExportedAt:    time.Now().UTC().Format(time.RFC3339),
		Attempts:      []attempt.Attempt{},
		CustomQuizzes: []customquiz.CustomQuiz{},
	}

	for i := 0; i < 3; i++ {
		result := <-pool.Results()
		if result.Err != nil {
			return Bundle{}, fmt.Errorf("export %s: %w", result.JobID, result.Err)
		}
		switch result.JobID {
		case "attempts":
			if result.Output.attempts != nil {
				bundle.Attempts = result.Output.attempts
			}
		case "quizzes":
			if result.Output.quizzes != nil {
				bundle.CustomQuizzes = result.Output.quizzes
			}
		case "preferences":
			bundle.Preferences = result.Output.prefs
		}
	}

	bundle.OverallStats = stats.Overall(s.catalog.All(), bundle.Attempts)
	return bundle, nil
}
