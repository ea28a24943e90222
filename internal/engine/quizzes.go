package engine

import (
	"fmt"

	"github.com/uwtopia/engine/internal/domain/customquiz"
)

// Custom-quiz management. The engine is the single writer of the
// customQuizzes preference key; each save replaces the whole list.

// CreateCustomQuiz builds a named quiz from the given question ids and
// appends it to the stored list.
func (e *Engine) CreateCustomQuiz(name string, questionIDs []int) (*customquiz.CustomQuiz, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	quiz, err := customquiz.New(name, questionIDs, e.now())
	if err != nil {
		return nil, err
	}

	quizzes, err := e.prefs.CustomQuizzes()
	if err != nil {
		return nil, fmt.Errorf("load custom quizzes: %w", err)
	}

	quizzes = append(quizzes, *quiz)
	if err := e.prefs.SaveCustomQuizzes(quizzes); err != nil {
		return nil, fmt.Errorf("save custom quizzes: %w", err)
	}
	return quiz, nil
}

// CustomQuizzes lists the stored quizzes.
func (e *Engine) CustomQuizzes() ([]customquiz.CustomQuiz, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prefs.CustomQuizzes()
}

// DeleteCustomQuiz removes a quiz by id.
func (e *Engine) DeleteCustomQuiz(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	quizzes, err := e.prefs.CustomQuizzes()
	if err != nil {
		return fmt.Errorf("load custom quizzes: %w", err)
	}

	kept := quizzes[:0]
	found := false
	for _, quiz := range quizzes {
		if quiz.ID == id {
			found = true
			continue
		}
		kept = append(kept, quiz)
	}
	if !found {
		return ErrQuizNotFound
	}

	if err := e.prefs.SaveCustomQuizzes(kept); err != nil {
		return fmt.Errorf("save custom quizzes: %w", err)
	}
	return nil
}
