package customquiz_test

import (
	"testing"
	"time"

	"github.com/uwtopia/engine/internal/domain/customquiz"
)

func TestNew(t *testing.T) {
	now := time.Now()
	quiz, err := customquiz.New("Cardio review", []int{3, 1, 7}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if quiz.ID == "" {
		t.Error("expected a generated id")
	}
	if quiz.Name != "Cardio review" {
		t.Errorf("expected name %q, got %q", "Cardio review", quiz.Name)
	}
	if len(quiz.QuestionIDs) != 3 {
		t.Errorf("expected 3 question ids, got %d", len(quiz.QuestionIDs))
	}
	if !quiz.CreatedAt.Equal(now) {
		t.Errorf("expected creation time %v, got %v", now, quiz.CreatedAt)
	}
}

func TestNew_UniqueIDs(t *testing.T) {
	now := time.Now()
	a, _ := customquiz.New("A", []int{1}, now)
	b, _ := customquiz.New("B", []int{1}, now)

	if a.ID == b.ID {
		t.Errorf("expected distinct ids, both were %q", a.ID)
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := customquiz.New("", []int{1}, time.Now()); err == nil {
		t.Error("expected error for empty name")
	}
	if _, err := customquiz.New("Empty", nil, time.Now()); err == nil {
		t.Error("expected error for empty question list")
	}
}
