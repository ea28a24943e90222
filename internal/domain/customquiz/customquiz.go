package customquiz

import (
	"errors"
	"time"

	"github.com/uwtopia/engine/internal/id"
)

// CustomQuiz is a user-defined, named, persistent subset of question ids.
type CustomQuiz struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	QuestionIDs []int     `json:"question_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

// New creates a custom quiz with a time-based unique ID.
func New(name string, questionIDs []int, now time.Time) (*CustomQuiz, error) {
	if name == "" {
		return nil, errors.New("custom quiz name cannot be empty")
	}
	if len(questionIDs) == 0 {
		return nil, errors.New("custom quiz needs at least one question")
	}

	ids := make([]int, len(questionIDs))
	copy(ids, questionIDs)

	return &CustomQuiz{
		ID:          id.NewTimeID(now),
		Name:        name,
		QuestionIDs: ids,
		CreatedAt:   now,
	}, nil
}
