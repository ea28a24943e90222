package attempt

import "time"

// Attempt is one recorded answer submission. Rows are append-only: an attempt
// is never updated or deleted, and multiple attempts may exist per question.
// IsCorrect is stored redundantly so history stays stable even if the
// question catalog changes between releases.
type Attempt struct {
	ID             int64     `json:"id"`
	QuestionID     int       `json:"question_id"`
	SelectedAnswer int       `json:"selected_answer"`
	IsCorrect      bool      `json:"is_correct"`
	Timestamp      time.Time `json:"timestamp"`
	TimeSpent      int       `json:"time_spent"` // seconds on the question
}
