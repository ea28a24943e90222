package session

import (
	"errors"
	"math/rand"
	"time"

	"github.com/uwtopia/engine/internal/domain/attempt"
	"github.com/uwtopia/engine/internal/domain/question"
)

var (
	ErrAlreadyLocked = errors.New("answer is already locked")
	ErrNoSelection   = errors.New("no answer selected")
	ErrInvalidOption = errors.New("option index out of range")
)

// Session is the live quiz state: an ordered question list fixed at creation,
// the current position, and parallel answer/lock slots per question.
//
// Invariants:
//   - len(Answers) == len(Locked) == len(Questions)
//   - a Locked slot never unlocks, and its answer never changes again
type Session struct {
	Questions []question.Question
	Position  int
	Answers   []*int // nil = unanswered
	Locked    []bool

	CreatedAt         time.Time
	QuestionStartedAt time.Time

	TimerDuration  *int // seconds, nil = untimed
	TimerRemaining *int

	Mode     attempt.Mode
	Category string
	Finished bool
}

// New creates a session over the given questions in a fresh random order.
// The permutation is fixed once; the session is never reshuffled.
func New(questions []question.Question, mode attempt.Mode, category string, timerSeconds *int, now time.Time) *Session {
	shuffled := make([]question.Question, len(questions))
	copy(shuffled, questions)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	s := &Session{
		Questions:         shuffled,
		Answers:           make([]*int, len(shuffled)),
		Locked:            make([]bool, len(shuffled)),
		CreatedAt:         now,
		QuestionStartedAt: now,
		Mode:              mode,
		Category:          category,
	}

	if timerSeconds != nil && *timerSeconds > 0 {
		duration := *timerSeconds
		remaining := *timerSeconds
		s.TimerDuration = &duration
		s.TimerRemaining = &remaining
	}

	return s
}

// Clone returns a deep copy. The engine hands clones to callers so reads
// never touch state the timer goroutine is mutating.
func (s *Session) Clone() *Session {
	out := *s
	out.Questions = append([]question.Question(nil), s.Questions...)
	out.Locked = append([]bool(nil), s.Locked...)
	out.Answers = make([]*int, len(s.Answers))
	for i, a := range s.Answers {
		if a != nil {
			v := *a
			out.Answers[i] = &v
		}
	}
	if s.TimerDuration != nil {
		v := *s.TimerDuration
		out.TimerDuration = &v
	}
	if s.TimerRemaining != nil {
		v := *s.TimerRemaining
		out.TimerRemaining = &v
	}
	return &out
}

// Current returns the question at the current position.
func (s *Session) Current() question.Question {
	return s.Questions[s.Position]
}

// Selected returns the selected option at the current position, or nil.
func (s *Session) Selected() *int {
	return s.Answers[s.Position]
}

// SelectAnswer stores a selection for the current question. Re-selecting is
// allowed until the slot locks.
func (s *Session) SelectAnswer(option int) error {
	if s.Locked[s.Position] {
		return ErrAlreadyLocked
	}
	if option < 0 || option >= len(s.Current().Options) {
		return ErrInvalidOption
	}
	s.Answers[s.Position] = &option
	return nil
}

// Lock makes the current selection final. The caller must have recorded the
// attempt durably before invoking Lock.
func (s *Session) Lock() error {
	if s.Locked[s.Position] {
		return ErrAlreadyLocked
	}
	if s.Answers[s.Position] == nil {
		return ErrNoSelection
	}
	s.Locked[s.Position] = true
	return nil
}

// CorrectlyAnswered reports whether the current selection matches the
// question's correct option. ErrNoSelection if nothing is selected.
func (s *Session) CorrectlyAnswered() (bool, error) {
	selected := s.Answers[s.Position]
	if selected == nil {
		return false, ErrNoSelection
	}
	return *selected == s.Current().CorrectAnswer, nil
}

// Elapsed returns whole seconds spent on the current question.
func (s *Session) Elapsed(now time.Time) int {
	seconds := int(now.Sub(s.QuestionStartedAt).Seconds())
	if seconds < 0 {
		return 0
	}
	return seconds
}

// Next advances the position. Moving past the last question does not change
// state; it reports done=true so the caller can finish the session instead.
func (s *Session) Next(now time.Time) (done bool) {
	if s.Position >= len(s.Questions)-1 {
		return true
	}
	s.Position++
	s.QuestionStartedAt = now
	return false
}

// Previous moves the position back one question, clamped at the start.
func (s *Session) Previous(now time.Time) {
	if s.Position == 0 {
		return
	}
	s.Position--
	s.QuestionStartedAt = now
}

// MarkFinished flags the session as finished. Idempotent.
func (s *Session) MarkFinished() {
	s.Finished = true
}

// Summary is the results-view breakdown of a session. Only locked answers
// count as taken; a selection that was never submitted is skipped.
type Summary struct {
	Total     int `json:"total"`
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
	Skipped   int `json:"skipped"`
}

// Results computes the session summary.
func (s *Session) Results() Summary {
	summary := Summary{Total: len(s.Questions)}
	for i, q := range s.Questions {
		if !s.Locked[i] || s.Answers[i] == nil {
			summary.Skipped++
			continue
		}
		if *s.Answers[i] == q.CorrectAnswer {
			summary.Correct++
		} else {
			summary.Incorrect++
		}
	}
	return summary
}
