// Package engine owns the single active quiz session: construction from the
// filtered catalog, the answer-locking state machine, the countdown timer,
// and crash recovery. Callers hold an *Engine handle; there is no ambient
// global session.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/uwtopia/engine/internal/domain/attempt"
	"github.com/uwtopia/engine/internal/domain/question"
	"github.com/uwtopia/engine/internal/domain/session"
	"github.com/uwtopia/engine/internal/stats"
	"github.com/uwtopia/engine/internal/store"
)

var (
	ErrNoActiveSession  = errors.New("no active session")
	ErrEmptyQuestionSet = errors.New("no questions match the requested filters")
	ErrQuizNotFound     = errors.New("custom quiz not found")
)

// Engine coordinates the live session against the attempt log and the
// preference store. All session mutations run under one mutex, so UI
// commands and timer ticks never interleave (the Go rendition of the
// original single cooperative scheduler).
type Engine struct {
	catalog  *question.Catalog
	attempts store.AttemptStore
	prefs    store.PreferenceStore
	logger   *slog.Logger

	mu   sync.Mutex
	sess *session.Session

	timerStop    chan struct{}
	tickInterval time.Duration
	now          func() time.Time
}

// Option adjusts engine construction.
type Option func(*Engine)

// WithTickInterval overrides the one-second countdown tick.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) { e.tickInterval = d }
}

func New(catalog *question.Catalog, attempts store.AttemptStore, prefs store.PreferenceStore, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		catalog:      catalog,
		attempts:     attempts,
		prefs:        prefs,
		logger:       logger,
		tickInterval: time.Second,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartOptions selects the question set for a new session.
type StartOptions struct {
	Mode         attempt.Mode
	Category     string
	TimerMinutes int    // 0 = untimed
	CustomQuizID string // non-empty = take questions from a custom quiz
}

// StartQuiz builds and activates a new session and returns a copy of it. The
// previous session, if any, is replaced only after the new one has been
// persisted; a failed start leaves engine state untouched.
func (e *Engine) StartQuiz(ctx context.Context, opts StartOptions) (*session.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	mode := opts.Mode
	if mode == "" {
		mode = attempt.ModeAll
	}
	category := opts.Category
	if category == "" {
		category = question.AllCategories
	}

	questions, err := e.buildQuestionSet(ctx, mode, category, opts.CustomQuizID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrEmptyQuestionSet
	}

	var timerSeconds *int
	if opts.TimerMinutes > 0 {
		seconds := opts.TimerMinutes * 60
		timerSeconds = &seconds
	}

	sess := session.New(questions, mode, category, timerSeconds, e.now())

	blob, err := sess.MarshalSnapshot()
	if err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	if err := e.prefs.SaveSessionBlob(blob); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	e.stopTimerLocked()
	e.sess = sess
	e.startTimerLocked()

	return sess.Clone(), nil
}

func (e *Engine) buildQuestionSet(ctx context.Context, mode attempt.Mode, category, customQuizID string) ([]question.Question, error) {
	if customQuizID != "" {
		quizzes, err := e.prefs.CustomQuizzes()
		if err != nil {
			return nil, fmt.Errorf("load custom quizzes: %w", err)
		}
		for _, quiz := range quizzes {
			if quiz.ID != customQuizID {
				continue
			}
			wanted := make(map[int]bool, len(quiz.QuestionIDs))
			for _, id := range quiz.QuestionIDs {
				wanted[id] = true
			}
			// Catalog order, not the quiz's own id order.
			var questions []question.Question
			for _, q := range e.catalog.All() {
				if wanted[q.ID] {
					questions = append(questions, q)
				}
			}
			return questions, nil
		}
		return nil, ErrQuizNotFound
	}

	attempts, err := e.attempts.AllAttempts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load attempts: %w", err)
	}
	return stats.FilterByMode(mode, e.catalog.ByCategory(category), attempts), nil
}

// SelectAnswer stores a selection for the current question. Selecting a
// locked question fails with session.ErrAlreadyLocked and changes nothing.
func (e *Engine) SelectAnswer(option int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess == nil {
		return ErrNoActiveSession
	}
	if err := e.sess.SelectAnswer(option); err != nil {
		return err
	}
	return e.persistLocked()
}

// SubmitAnswer records the current selection as an attempt and locks the
// slot. The attempt row is written first; if that write fails the slot stays
// unlocked and unchanged, so retrying is safe and yields exactly one row.
func (e *Engine) SubmitAnswer(ctx context.Context) (attempt.Attempt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess == nil {
		return attempt.Attempt{}, ErrNoActiveSession
	}
	if e.sess.Locked[e.sess.Position] {
		return attempt.Attempt{}, session.ErrAlreadyLocked
	}

	correct, err := e.sess.CorrectlyAnswered()
	if err != nil {
		return attempt.Attempt{}, err
	}

	now := e.now()
	record := attempt.Attempt{
		QuestionID:     e.sess.Current().ID,
		SelectedAnswer: *e.sess.Selected(),
		IsCorrect:      correct,
		Timestamp:      now,
		TimeSpent:      e.sess.Elapsed(now),
	}

	committed, err := e.attempts.RecordAttempt(ctx, record)
	if err != nil {
		return attempt.Attempt{}, err
	}

	if err := e.sess.Lock(); err != nil {
		return attempt.Attempt{}, err
	}

	if err := e.persistLocked(); err != nil {
		// The attempt row is durable and the lock stands; only the snapshot
		// write trails by one operation. Surface it so the user can retry a
		// later command.
		return committed, err
	}
	return committed, nil
}

// Next advances to the following question. Moving past the last question
// finishes the session instead of failing; finished reports that case.
func (e *Engine) Next(ctx context.Context) (finished bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess == nil {
		return false, ErrNoActiveSession
	}
	if e.sess.Next(e.now()) {
		return true, e.finishLocked()
	}
	return false, e.persistLocked()
}

// Previous moves back one question, clamped at the first.
func (e *Engine) Previous(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess == nil {
		return ErrNoActiveSession
	}
	e.sess.Previous(e.now())
	return e.persistLocked()
}

// Finish ends the session: the timer stops and the persisted copy is
// deleted, but the in-memory session stays readable for the results view
// until ClearSession or the next StartQuiz. Idempotent.
func (e *Engine) Finish(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess == nil {
		return ErrNoActiveSession
	}
	return e.finishLocked()
}

func (e *Engine) finishLocked() error {
	if e.sess.Finished {
		return nil
	}
	e.stopTimerLocked()
	e.sess.MarkFinished()

	if err := e.prefs.DeleteSessionBlob(); err != nil {
		return fmt.Errorf("delete session blob: %w", err)
	}
	return nil
}

// ClearSession drops the session entirely (return-home / abandon). An
// unfinished session's persisted copy is deleted as well.
func (e *Engine) ClearSession() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess == nil {
		return nil
	}
	e.stopTimerLocked()

	var err error
	if !e.sess.Finished {
		if deleteErr := e.prefs.DeleteSessionBlob(); deleteErr != nil {
			err = fmt.Errorf("delete session blob: %w", deleteErr)
		}
	}
	e.sess = nil
	return err
}

// Session returns a copy of the live session, or nil. The copy is made under
// the engine lock, so reading it never races a timer tick; all mutations go
// through engine commands.
func (e *Engine) Session() *session.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return nil
	}
	return e.sess.Clone()
}

// Results summarizes the session for the results view.
func (e *Engine) Results() (session.Summary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess == nil {
		return session.Summary{}, ErrNoActiveSession
	}
	return e.sess.Results(), nil
}

// Close stops the timer goroutine. The persisted session stays in place for
// recovery on the next start.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTimerLocked()
}

// persistLocked writes the full session snapshot. Called after every
// mutation, so the durable copy never trails memory by more than one
// operation.
func (e *Engine) persistLocked() error {
	blob, err := e.sess.MarshalSnapshot()
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	if err := e.prefs.SaveSessionBlob(blob); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}
