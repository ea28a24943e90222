package store

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/uwtopia/engine/internal/domain/customquiz"
)

const prefsBucket = "prefs"

// Preference store keys. Each value is replaced whole on every write.
const (
	keyActiveSession = "activeSession"
	keyDarkMode      = "darkMode"
	keyFontSize      = "fontSize"
	keyCustomQuizzes = "customQuizzes"
)

// Font sizes accepted by SetFontSize.
const (
	FontSmall  = "small"
	FontMedium = "medium"
	FontLarge  = "large"
)

// Preferences are the user-facing settings, returned with built-in defaults
// when a stored value is absent or unreadable.
type Preferences struct {
	DarkMode bool   `json:"dark_mode"`
	FontSize string `json:"font_size"`
}

func defaultPreferences() Preferences {
	return Preferences{DarkMode: false, FontSize: FontMedium}
}

// PrefsStore is the bbolt-backed key-value blob store. Every update runs in
// its own write transaction, so each value is replaced atomically and a kill
// mid-write never leaves a torn blob behind.
type PrefsStore struct {
	db *bolt.DB
}

func NewPrefs(path string) (*PrefsStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open preference store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(prefsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open preference store: %w", err)
	}

	return &PrefsStore{db: db}, nil
}

func (s *PrefsStore) Close() error {
	return s.db.Close()
}

func (s *PrefsStore) put(key string, value []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(prefsBucket)).Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// get returns a copy of the stored value; bbolt buffers are only valid
// inside the transaction.
func (s *PrefsStore) get(key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(prefsBucket)).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		out = make([]byte, len(v))
		copy(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ── Session blob ────────────────────────────────────────────────────────────

func (s *PrefsStore) SaveSessionBlob(blob []byte) error {
	return s.put(keyActiveSession, blob)
}

func (s *PrefsStore) LoadSessionBlob() ([]byte, error) {
	return s.get(keyActiveSession)
}

// DeleteSessionBlob removes the persisted session. Idempotent.
func (s *PrefsStore) DeleteSessionBlob() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(prefsBucket)).Delete([]byte(keyActiveSession))
	})
	if err != nil {
		return fmt.Errorf("delete session blob: %w", err)
	}
	return nil
}

// ── Custom quizzes ──────────────────────────────────────────────────────────

func (s *PrefsStore) CustomQuizzes() ([]customquiz.CustomQuiz, error) {
	data, err := s.get(keyCustomQuizzes)
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var quizzes []customquiz.CustomQuiz
	if err := json.Unmarshal(data, &quizzes); err != nil {
		return nil, fmt.Errorf("decode custom quizzes: %w", err)
	}
	return quizzes, nil
}

func (s *PrefsStore) SaveCustomQuizzes(quizzes []customquiz.CustomQuiz) error {
	data, err := json.Marshal(quizzes)
	if err != nil {
		return fmt.Errorf("encode custom quizzes: %w", err)
	}
	return s.put(keyCustomQuizzes, data)
}

// ── Preferences ─────────────────────────────────────────────────────────────

// Preferences returns the stored settings. Unreadable or invalid values fall
// back to the built-in defaults; a read failure here is diagnostic only.
func (s *PrefsStore) Preferences() Preferences {
	prefs := defaultPreferences()

	if v, err := s.get(keyDarkMode); err == nil {
		prefs.DarkMode = string(v) == "true"
	}
	if v, err := s.get(keyFontSize); err == nil {
		switch string(v) {
		case FontSmall, FontMedium, FontLarge:
			prefs.FontSize = string(v)
		}
	}
	return prefs
}

func (s *PrefsStore) SetDarkMode(enabled bool) error {
	value := "false"
	if enabled {
		value = "true"
	}
	return s.put(keyDarkMode, []byte(value))
}

func (s *PrefsStore) SetFontSize(size string) error {
	switch size {
	case FontSmall, FontMedium, FontLarge:
		return s.put(keyFontSize, []byte(size))
	}
	return fmt.Errorf("invalid font size %q", size)
}
