package store

import (
	"context"
	"errors"

	"github.com/uwtopia/engine/internal/domain/attempt"
	"github.com/uwtopia/engine/internal/domain/customquiz"
)

var (
	ErrNotFound = errors.New("not found")
)

// AttemptStore is the append-only attempt log. Rows are never updated or
// deleted, so reads are safe to run concurrently with appends.
type AttemptStore interface {
	RecordAttempt(ctx context.Context, a attempt.Attempt) (attempt.Attempt, error)
	AllAttempts(ctx context.Context) ([]attempt.Attempt, error)
}

// PreferenceStore is the key-value blob store behind session persistence,
// user preferences, and the custom-quiz list. Each write replaces a whole
// value atomically; there are no partial updates to coordinate.
type PreferenceStore interface {
	SaveSessionBlob(blob []byte) error
	LoadSessionBlob() ([]byte, error)
	DeleteSessionBlob() error

	CustomQuizzes() ([]customquiz.CustomQuiz, error)
	SaveCustomQuizzes(quizzes []customquiz.CustomQuiz) error

	Preferences() Preferences
	SetDarkMode(enabled bool) error
	SetFontSize(size string) error
}
