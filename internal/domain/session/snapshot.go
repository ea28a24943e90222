package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uwtopia/engine/internal/domain/attempt"
	"github.com/uwtopia/engine/internal/domain/question"
)

// SnapshotVersion is the schema version of the persisted session blob.
const SnapshotVersion = 1

// ErrCorruptSnapshot marks a persisted session blob that does not match the
// snapshot schema. Recovery treats it as "no session" rather than crashing.
var ErrCorruptSnapshot = errors.New("corrupt session snapshot")

// snapshot is the wire form of a Session. Timestamps are epoch milliseconds
// so the blob stays stable across timezone and monotonic-clock differences.
type snapshot struct {
	SchemaVersion int                 `json:"schema_version"`
	Questions     []question.Question `json:"questions"`
	Position      int                 `json:"position"`
	Answers       []*int              `json:"answers"`
	Locked        []bool              `json:"locked"`
	CreatedAt     int64               `json:"created_at"`
	QuestionStart int64               `json:"question_started_at"`
	TimerDuration *int                `json:"timer_duration,omitempty"`
	TimerRemain   *int                `json:"timer_remaining,omitempty"`
	Mode          string              `json:"mode"`
	Category      string              `json:"category"`
	Finished      bool                `json:"finished"`
}

// MarshalSnapshot serializes the session for the preference store.
func (s *Session) MarshalSnapshot() ([]byte, error) {
	return json.Marshal(snapshot{
		SchemaVersion: SnapshotVersion,
		Questions:     s.Questions,
		Position:      s.Position,
		Answers:       s.Answers,
		Locked:        s.Locked,
		CreatedAt:     s.CreatedAt.UnixMilli(),
		QuestionStart: s.QuestionStartedAt.UnixMilli(),
		TimerDuration: s.TimerDuration,
		TimerRemain:   s.TimerRemaining,
		Mode:          string(s.Mode),
		Category:      s.Category,
		Finished:      s.Finished,
	})
}

// RestoreSnapshot rebuilds a session from a persisted blob, validating the
// schema structurally. Any mismatch yields ErrCorruptSnapshot; a partially
// restored session is never returned.
func RestoreSnapshot(data []byte) (*Session, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	if snap.SchemaVersion != SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported schema version %d", ErrCorruptSnapshot, snap.SchemaVersion)
	}
	if len(snap.Answers) != len(snap.Questions) || len(snap.Locked) != len(snap.Questions) {
		return nil, fmt.Errorf("%w: slot arrays do not match question count", ErrCorruptSnapshot)
	}
	if snap.Position < 0 || (len(snap.Questions) > 0 && snap.Position >= len(snap.Questions)) {
		return nil, fmt.Errorf("%w: position %d out of range", ErrCorruptSnapshot, snap.Position)
	}
	mode, err := attempt.ParseMode(snap.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	for i, q := range snap.Questions {
		if len(q.Options) < 2 {
			return nil, fmt.Errorf("%w: question %d has no options", ErrCorruptSnapshot, q.ID)
		}
		if a := snap.Answers[i]; a != nil && (*a < 0 || *a >= len(q.Options)) {
			return nil, fmt.Errorf("%w: answer %d out of range for question %d", ErrCorruptSnapshot, *a, q.ID)
		}
	}

	return &Session{
		Questions:         snap.Questions,
		Position:          snap.Position,
		Answers:           snap.Answers,
		Locked:            snap.Locked,
		CreatedAt:         time.UnixMilli(snap.CreatedAt),
		QuestionStartedAt: time.UnixMilli(snap.QuestionStart),
		TimerDuration:     snap.TimerDuration,
		TimerRemaining:    snap.TimerRemain,
		Mode:              mode,
		Category:          snap.Category,
		Finished:          snap.Finished,
	}, nil
}
