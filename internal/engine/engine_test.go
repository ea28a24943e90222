package engine_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/uwtopia/engine/internal/domain/attempt"
	"github.com/uwtopia/engine/internal/domain/customquiz"
	"github.com/uwtopia/engine/internal/domain/question"
	"github.com/uwtopia/engine/internal/domain/session"
	"github.com/uwtopia/engine/internal/engine"
	"github.com/uwtopia/engine/internal/store"
)

// ── In-memory fakes ─────────────────────────────────────────────────────────

type fakeAttempts struct {
	mu       sync.Mutex
	rows     []attempt.Attempt
	failWith error
	nextID   int64
}

func (f *fakeAttempts) RecordAttempt(_ context.Context, a attempt.Attempt) (attempt.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return attempt.Attempt{}, f.failWith
	}
	f.nextID++
	a.ID = f.nextID
	f.rows = append(f.rows, a)
	return a, nil
}

func (f *fakeAttempts) AllAttempts(_ context.Context) ([]attempt.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]attempt.Attempt, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

type fakePrefs struct {
	mu       sync.Mutex
	blob     []byte
	quizzes  []customquiz.CustomQuiz
	darkMode bool
	fontSize string
}

func (f *fakePrefs) SaveSessionBlob(blob []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blob = append([]byte(nil), blob...)
	return nil
}

func (f *fakePrefs) LoadSessionBlob() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.blob == nil {
		return nil, store.ErrNotFound
	}
	return append([]byte(nil), f.blob...), nil
}

func (f *fakePrefs) DeleteSessionBlob() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blob = nil
	return nil
}

func (f *fakePrefs) CustomQuizzes() ([]customquiz.CustomQuiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]customquiz.CustomQuiz(nil), f.quizzes...), nil
}

func (f *fakePrefs) SaveCustomQuizzes(quizzes []customquiz.CustomQuiz) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quizzes = append([]customquiz.CustomQuiz(nil), quizzes...)
	return nil
}

func (f *fakePrefs) Preferences() store.Preferences {
	return store.Preferences{DarkMode: f.darkMode, FontSize: f.fontSize}
}

func (f *fakePrefs) SetDarkMode(enabled bool) error { f.darkMode = enabled; return nil }
func (f *fakePrefs) SetFontSize(size string) error  { f.fontSize = size; return nil }

// ── Helpers ─────────────────────────────────────────────────────────────────

func testCatalog(t *testing.T, n int) *question.Catalog {
	t.Helper()
	questions := make([]question.Question, n)
	for i := range questions {
		category := "Pharmacology"
		if i%2 == 1 {
			category = "Anatomy"
		}
		questions[i] = question.Question{
			ID:            i + 1,
			Prompt:        "Q?",
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: i % 4,
			Category:      category,
		}
	}
	catalog, err := question.NewCatalog(questions)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return catalog
}

func newEngine(t *testing.T, catalog *question.Catalog, attempts *fakeAttempts, prefs *fakePrefs, opts ...engine.Option) *engine.Engine {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := engine.New(catalog, attempts, prefs, logger, opts...)
	t.Cleanup(eng.Close)
	return eng
}

// ── StartQuiz ───────────────────────────────────────────────────────────────

func TestStartQuiz_ShufflePreservesSet(t *testing.T) {
	eng := newEngine(t, testCatalog(t, 12), &fakeAttempts{}, &fakePrefs{})

	sess, err := eng.StartQuiz(context.Background(), engine.StartOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sess.Questions) != 12 {
		t.Fatalf("expected 12 questions, got %d", len(sess.Questions))
	}

	seen := make(map[int]int)
	for _, q := range sess.Questions {
		seen[q.ID]++
	}
	for id := 1; id <= 12; id++ {
		if seen[id] != 1 {
			t.Errorf("expected question %d exactly once, got %d", id, seen[id])
		}
	}
}

func TestStartQuiz_EmptyCatalog(t *testing.T) {
	eng := newEngine(t, question.Empty(), &fakeAttempts{}, &fakePrefs{})

	_, err := eng.StartQuiz(context.Background(), engine.StartOptions{})
	if !errors.Is(err, engine.ErrEmptyQuestionSet) {
		t.Errorf("expected ErrEmptyQuestionSet, got %v", err)
	}
	if eng.Session() != nil {
		t.Error("expected no session after a failed start")
	}
}

func TestStartQuiz_ModeFilter(t *testing.T) {
	attempts := &fakeAttempts{}
	attempts.rows = []attempt.Attempt{
		{QuestionID: 1, IsCorrect: true},
		{QuestionID: 2, IsCorrect: false},
	}
	eng := newEngine(t, testCatalog(t, 3), attempts, &fakePrefs{})

	sess, err := eng.StartQuiz(context.Background(), engine.StartOptions{Mode: attempt.ModeUntaken})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sess.Questions) != 1 || sess.Questions[0].ID != 3 {
		t.Errorf("expected only untaken question 3, got %+v", sess.Questions)
	}

	if _, err := eng.StartQuiz(context.Background(), engine.StartOptions{Mode: attempt.ModeCorrect, Category: "Anatomy"}); !errors.Is(err, engine.ErrEmptyQuestionSet) {
		t.Errorf("expected ErrEmptyQuestionSet for correct anatomy questions, got %v", err)
	}
}

func TestStartQuiz_CustomQuiz(t *testing.T) {
	prefs := &fakePrefs{}
	quiz, _ := customquiz.New("Review", []int{4, 2}, time.Now())
	prefs.quizzes = []customquiz.CustomQuiz{*quiz}
	eng := newEngine(t, testCatalog(t, 5), &fakeAttempts{}, prefs)

	sess, err := eng.StartQuiz(context.Background(), engine.StartOptions{CustomQuizID: quiz.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sess.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(sess.Questions))
	}
	ids := map[int]bool{sess.Questions[0].ID: true, sess.Questions[1].ID: true}
	if !ids[2] || !ids[4] {
		t.Errorf("expected questions 2 and 4, got %+v", ids)
	}
}

func TestStartQuiz_CustomQuizNotFound(t *testing.T) {
	eng := newEngine(t, testCatalog(t, 3), &fakeAttempts{}, &fakePrefs{})

	_, err := eng.StartQuiz(context.Background(), engine.StartOptions{CustomQuizID: "missing"})
	if !errors.Is(err, engine.ErrQuizNotFound) {
		t.Errorf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestStartQuiz_PersistsBeforeReturning(t *testing.T) {
	prefs := &fakePrefs{}
	eng := newEngine(t, testCatalog(t, 3), &fakeAttempts{}, prefs)

	if _, err := eng.StartQuiz(context.Background(), engine.StartOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	blob, err := prefs.LoadSessionBlob()
	if err != nil {
		t.Fatalf("expected a persisted session blob: %v", err)
	}
	if _, err := session.RestoreSnapshot(blob); err != nil {
		t.Errorf("expected a restorable snapshot, got %v", err)
	}
}

// ── Submit ──────────────────────────────────────────────────────────────────

func TestSubmitAnswer(t *testing.T) {
	attempts := &fakeAttempts{}
	eng := newEngine(t, testCatalog(t, 3), attempts, &fakePrefs{})

	sess, err := eng.StartQuiz(context.Background(), engine.StartOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := eng.SubmitAnswer(context.Background()); !errors.Is(err, session.ErrNoSelection) {
		t.Errorf("expected ErrNoSelection, got %v", err)
	}

	if err := eng.SelectAnswer(sess.Current().CorrectAnswer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	committed, err := eng.SubmitAnswer(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !committed.IsCorrect {
		t.Error("expected a correct attempt")
	}
	if committed.QuestionID != sess.Current().ID {
		t.Errorf("expected attempt for question %d, got %d", sess.Current().ID, committed.QuestionID)
	}

	if _, err := eng.SubmitAnswer(context.Background()); !errors.Is(err, session.ErrAlreadyLocked) {
		t.Errorf("expected ErrAlreadyLocked on resubmit, got %v", err)
	}
	if len(attempts.rows) != 1 {
		t.Errorf("expected exactly 1 attempt row, got %d", len(attempts.rows))
	}
}

func TestSubmitAnswer_StoreFailureLeavesSlotUnlocked(t *testing.T) {
	attempts := &fakeAttempts{}
	eng := newEngine(t, testCatalog(t, 3), attempts, &fakePrefs{})

	if _, err := eng.StartQuiz(context.Background(), engine.StartOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := eng.SelectAnswer(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	attempts.failWith = errors.New("disk full")
	if _, err := eng.SubmitAnswer(context.Background()); err == nil {
		t.Fatal("expected submit to fail when the store fails")
	}

	cur := eng.Session()
	if cur.Locked[cur.Position] {
		t.Error("expected slot to stay unlocked after a failed record")
	}
	if cur.Selected() == nil || *cur.Selected() != 1 {
		t.Errorf("expected selection to stay 1, got %v", cur.Selected())
	}
	if len(attempts.rows) != 0 {
		t.Errorf("expected no attempt rows from the failed submit, got %d", len(attempts.rows))
	}

	// Retrying after the store recovers succeeds exactly once.
	attempts.failWith = nil
	if _, err := eng.SubmitAnswer(context.Background()); err != nil {
		t.Fatalf("unexpected error on retry: %v", err)
	}
	if len(attempts.rows) != 1 {
		t.Errorf("expected exactly 1 attempt row after retry, got %d", len(attempts.rows))
	}
	cur = eng.Session()
	if !cur.Locked[cur.Position] {
		t.Error("expected slot locked after successful retry")
	}
}

// ── Full flow ───────────────────────────────────────────────────────────────

func TestQuizFlow(t *testing.T) {
	attempts := &fakeAttempts{}
	prefs := &fakePrefs{}
	eng := newEngine(t, testCatalog(t, 3), attempts, prefs)
	ctx := context.Background()

	if _, err := eng.StartQuiz(ctx, engine.StartOptions{Mode: attempt.ModeAll, Category: question.AllCategories}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Question 1: correct answer.
	if err := eng.SelectAnswer(eng.Session().Current().CorrectAnswer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := eng.SubmitAnswer(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if finished, err := eng.Next(ctx); err != nil || finished {
		t.Fatalf("expected to advance, finished=%v err=%v", finished, err)
	}

	// Question 2: wrong answer.
	second := eng.Session().Current()
	wrong := (second.CorrectAnswer + 1) % len(second.Options)
	if err := eng.SelectAnswer(wrong); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := eng.SubmitAnswer(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if finished, err := eng.Next(ctx); err != nil || finished {
		t.Fatalf("expected to advance, finished=%v err=%v", finished, err)
	}

	// Question 3 stays unanswered.
	if err := eng.Finish(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(attempts.rows) != 2 {
		t.Fatalf("expected 2 attempt rows, got %d", len(attempts.rows))
	}
	if !attempts.rows[0].IsCorrect || attempts.rows[1].IsCorrect {
		t.Errorf("expected one correct then one incorrect attempt, got %+v", attempts.rows)
	}

	summary, err := eng.Results()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := session.Summary{Total: 3, Correct: 1, Incorrect: 1, Skipped: 1}
	if summary != want {
		t.Errorf("expected %+v, got %+v", want, summary)
	}

	if _, err := prefs.LoadSessionBlob(); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected persisted session deleted after finish, got %v", err)
	}

	// Finish is idempotent; the session stays readable for the results view.
	if err := eng.Finish(ctx); err != nil {
		t.Errorf("expected idempotent finish, got %v", err)
	}
	if eng.Session() == nil {
		t.Error("expected session to stay readable after finish")
	}
}

func TestNext_PastEndFinishes(t *testing.T) {
	prefs := &fakePrefs{}
	eng := newEngine(t, testCatalog(t, 1), &fakeAttempts{}, prefs)
	ctx := context.Background()

	if _, err := eng.StartQuiz(ctx, engine.StartOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	finished, err := eng.Next(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !finished {
		t.Error("expected Next past the last question to finish the session")
	}
	if _, err := prefs.LoadSessionBlob(); !errors.Is(err, store.ErrNotFound) {
		t.Error("expected persisted session deleted after auto-finish")
	}
}

func TestClearSession_Abandon(t *testing.T) {
	prefs := &fakePrefs{}
	eng := newEngine(t, testCatalog(t, 3), &fakeAttempts{}, prefs)

	if _, err := eng.StartQuiz(context.Background(), engine.StartOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := eng.ClearSession(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if eng.Session() != nil {
		t.Error("expected no session after clear")
	}
	if _, err := prefs.LoadSessionBlob(); !errors.Is(err, store.ErrNotFound) {
		t.Error("expected persisted session deleted on abandon")
	}
}

func TestSession_ReturnsCopy(t *testing.T) {
	eng := newEngine(t, testCatalog(t, 3), &fakeAttempts{}, &fakePrefs{})

	if _, err := eng.StartQuiz(context.Background(), engine.StartOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view := eng.Session()
	view.Position = 2
	view.Locked[0] = true
	answer := 1
	view.Answers[0] = &answer

	fresh := eng.Session()
	if fresh.Position != 0 || fresh.Locked[0] || fresh.Answers[0] != nil {
		t.Error("expected engine state to be unaffected by mutating the returned copy")
	}
}

func TestCommands_NoActiveSession(t *testing.T) {
	eng := newEngine(t, testCatalog(t, 3), &fakeAttempts{}, &fakePrefs{})
	ctx := context.Background()

	if err := eng.SelectAnswer(0); !errors.Is(err, engine.ErrNoActiveSession) {
		t.Errorf("SelectAnswer: expected ErrNoActiveSession, got %v", err)
	}
	if _, err := eng.SubmitAnswer(ctx); !errors.Is(err, engine.ErrNoActiveSession) {
		t.Errorf("SubmitAnswer: expected ErrNoActiveSession, got %v", err)
	}
	if _, err := eng.Next(ctx); !errors.Is(err, engine.ErrNoActiveSession) {
		t.Errorf("Next: expected ErrNoActiveSession, got %v", err)
	}
	if err := eng.Finish(ctx); !errors.Is(err, engine.ErrNoActiveSession) {
		t.Errorf("Finish: expected ErrNoActiveSession, got %v", err)
	}
}

// ── Custom quiz management ──────────────────────────────────────────────────

func TestCustomQuizLifecycle(t *testing.T) {
	eng := newEngine(t, testCatalog(t, 5), &fakeAttempts{}, &fakePrefs{})

	quiz, err := eng.CreateCustomQuiz("High yield", []int{1, 3, 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	quizzes, err := eng.CustomQuizzes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quizzes) != 1 || quizzes[0].ID != quiz.ID {
		t.Errorf("expected the created quiz in the list, got %+v", quizzes)
	}

	if err := eng.DeleteCustomQuiz("missing"); !errors.Is(err, engine.ErrQuizNotFound) {
		t.Errorf("expected ErrQuizNotFound, got %v", err)
	}
	if err := eng.DeleteCustomQuiz(quiz.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	quizzes, _ = eng.CustomQuizzes()
	if len(quizzes) != 0 {
		t.Errorf("expected empty list after delete, got %d", len(quizzes))
	}
}

// ── Recovery ────────────────────────────────────────────────────────────────

func TestRecover_RoundTrip(t *testing.T) {
	attempts := &fakeAttempts{}
	prefs := &fakePrefs{}
	first := newEngine(t, testCatalog(t, 3), attempts, prefs)
	ctx := context.Background()

	sess, err := first.StartQuiz(ctx, engine.StartOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := first.SelectAnswer(sess.Current().CorrectAnswer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := first.SubmitAnswer(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := first.Next(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first.Close()

	persisted, err := prefs.LoadSessionBlob()
	if err != nil {
		t.Fatalf("expected persisted blob: %v", err)
	}

	// A fresh engine over the same stores recovers the identical session.
	second := newEngine(t, testCatalog(t, 3), attempts, prefs)
	recovered, err := second.Recover()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !recovered {
		t.Fatal("expected a session to be recovered")
	}

	again, err := second.Session().MarshalSnapshot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(persisted, again) {
		t.Error("expected recovered session to match the persisted one field for field")
	}
	if second.Session().Position != 1 {
		t.Errorf("expected recovered position 1, got %d", second.Session().Position)
	}
	if !second.Session().Locked[0] {
		t.Error("expected slot 0 to stay locked after recovery")
	}
}

func TestRecover_NoBlob(t *testing.T) {
	eng := newEngine(t, testCatalog(t, 3), &fakeAttempts{}, &fakePrefs{})

	recovered, err := eng.Recover()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recovered {
		t.Error("expected nothing to recover")
	}
	if eng.Session() != nil {
		t.Error("expected no session")
	}
}

func TestRecover_CorruptBlob(t *testing.T) {
	prefs := &fakePrefs{}
	prefs.blob = []byte(`{"schema_version": 99, "garbage": true}`)
	eng := newEngine(t, testCatalog(t, 3), &fakeAttempts{}, prefs)

	recovered, err := eng.Recover()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recovered {
		t.Error("expected corrupt blob not to recover")
	}
	if prefs.blob != nil {
		t.Error("expected corrupt blob to be discarded")
	}
}
