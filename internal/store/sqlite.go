package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/uwtopia/engine/internal/domain/attempt"
)

const schema = `
CREATE TABLE IF NOT EXISTS attempts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    question_id INTEGER NOT NULL,
    selected_answer INTEGER NOT NULL,
    is_correct INTEGER NOT NULL,
    timestamp INTEGER NOT NULL,
    time_spent INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_attempts_question_id ON attempts(question_id);
CREATE INDEX IF NOT EXISTS idx_attempts_timestamp ON attempts(timestamp);
CREATE INDEX IF NOT EXISTS idx_attempts_is_correct ON attempts(is_correct);
`

// SQLiteStore is the relational attempt log.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordAttempt appends one attempt row and returns it with its assigned id.
// On failure nothing is persisted; the caller must not assume durability.
func (s *SQLiteStore) RecordAttempt(ctx context.Context, a attempt.Attempt) (attempt.Attempt, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO attempts (question_id, selected_answer, is_correct, timestamp, time_spent) VALUES (?, ?, ?, ?, ?)",
		a.QuestionID, a.SelectedAnswer, boolToInt(a.IsCorrect), a.Timestamp.UnixMilli(), a.TimeSpent,
	)
	if err != nil {
		return attempt.Attempt{}, fmt.Errorf("record attempt: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return attempt.Attempt{}, fmt.Errorf("record attempt: %w", err)
	}

	a.ID = id
	return a, nil
}

// AllAttempts scans the full log in submission order. The corpus stays small
// enough (a few thousand questions) that no pagination is needed.
func (s *SQLiteStore) AllAttempts(ctx context.Context) ([]attempt.Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, question_id, selected_answer, is_correct, timestamp, time_spent FROM attempts ORDER BY timestamp, id",
	)
	if err != nil {
		return nil, fmt.Errorf("load attempts: %w", err)
	}
	defer rows.Close()

	return scanAttempts(rows)
}

// AttemptsForQuestion returns the attempt history of one question.
func (s *SQLiteStore) AttemptsForQuestion(ctx context.Context, questionID int) ([]attempt.Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, question_id, selected_answer, is_correct, timestamp, time_spent FROM attempts WHERE question_id = ? ORDER BY timestamp, id",
		questionID,
	)
	if err != nil {
		return nil, fmt.Errorf("load attempts: %w", err)
	}
	defer rows.Close()

	return scanAttempts(rows)
}

// CountAttempts reports the total number of recorded attempts.
func (s *SQLiteStore) CountAttempts(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM attempts").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return count, nil
}

func scanAttempts(rows *sql.Rows) ([]attempt.Attempt, error) {
	var attempts []attempt.Attempt
	for rows.Next() {
		var (
			a         attempt.Attempt
			isCorrect int
			timestamp int64
		)
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.SelectedAnswer, &isCorrect, &timestamp, &a.TimeSpent); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.IsCorrect = isCorrect != 0
		a.Timestamp = time.UnixMilli(timestamp)
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan attempts: %w", err)
	}
	return attempts, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
