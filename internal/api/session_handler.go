package api

import (
	"net/http"

	"github.com/uwtopia/engine/internal/domain/attempt"
	"github.com/uwtopia/engine/internal/domain/session"
	"github.com/uwtopia/engine/internal/engine"
)

// ── Request / Response types ────────────────────────────────────────────────

type StartSessionRequest struct {
	Mode         string `json:"mode"`
	Category     string `json:"category"`
	TimerMinutes int    `json:"timer_minutes,omitempty"`
	CustomQuizID string `json:"custom_quiz_id,omitempty"`
}

type SessionQuestion struct {
	ID            int      `json:"id"`
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	Category      string   `json:"category"`
}

type SessionResponse struct {
	Questions      []SessionQuestion `json:"questions"`
	Position       int               `json:"position"`
	Answers        []*int            `json:"answers"`
	Locked         []bool            `json:"locked"`
	TimerDuration  *int              `json:"timer_duration,omitempty"`
	TimerRemaining *int              `json:"timer_remaining,omitempty"`
	Mode           string            `json:"mode"`
	Category       string            `json:"category"`
	Finished       bool              `json:"finished"`
}

type SelectAnswerRequest struct {
	Option int `json:"option"`
}

type SubmitAnswerResponse struct {
	AttemptID     int64 `json:"attempt_id"`
	IsCorrect     bool  `json:"is_correct"`
	CorrectAnswer int   `json:"correct_answer"`
}

type MoveResponse struct {
	Position int  `json:"position"`
	Finished bool `json:"finished"`
}

func sessionResponse(sess *session.Session) SessionResponse {
	questions := make([]SessionQuestion, len(sess.Questions))
	for i, q := range sess.Questions {
		questions[i] = SessionQuestion{
			ID:            q.ID,
			Prompt:        q.Prompt,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			Category:      q.Category,
		}
	}

	return SessionResponse{
		Questions:      questions,
		Position:       sess.Position,
		Answers:        sess.Answers,
		Locked:         sess.Locked,
		TimerDuration:  sess.TimerDuration,
		TimerRemaining: sess.TimerRemaining,
		Mode:           string(sess.Mode),
		Category:       sess.Category,
		Finished:       sess.Finished,
	}
}

// ── Handlers ────────────────────────────────────────────────────────────────

// POST /session
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	mode := attempt.ModeAll
	if req.Mode != "" {
		parsed, err := attempt.ParseMode(req.Mode)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		mode = parsed
	}

	sess, err := h.engine.StartQuiz(r.Context(), engine.StartOptions{
		Mode:         mode,
		Category:     req.Category,
		TimerMinutes: req.TimerMinutes,
		CustomQuizID: req.CustomQuizID,
	})
	if h.handleEngineError(w, err) {
		return
	}

	respondJSON(w, http.StatusCreated, sessionResponse(sess))
}

// GET /session
func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	sess := h.engine.Session()
	if sess == nil {
		respondError(w, http.StatusNotFound, "no active session")
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(sess))
}

// POST /session/answer
func (h *Handler) selectAnswer(w http.ResponseWriter, r *http.Request) {
	var req SelectAnswerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if h.handleEngineError(w, h.engine.SelectAnswer(req.Option)) {
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(h.engine.Session()))
}

// POST /session/submit
func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	committed, err := h.engine.SubmitAnswer(r.Context())
	if h.handleEngineError(w, err) {
		return
	}

	respondJSON(w, http.StatusOK, SubmitAnswerResponse{
		AttemptID:     committed.ID,
		IsCorrect:     committed.IsCorrect,
		CorrectAnswer: h.engine.Session().Current().CorrectAnswer,
	})
}

// POST /session/next
func (h *Handler) nextQuestion(w http.ResponseWriter, r *http.Request) {
	finished, err := h.engine.Next(r.Context())
	if h.handleEngineError(w, err) {
		return
	}

	respondJSON(w, http.StatusOK, MoveResponse{
		Position: h.engine.Session().Position,
		Finished: finished,
	})
}

// POST /session/previous
func (h *Handler) previousQuestion(w http.ResponseWriter, r *http.Request) {
	if h.handleEngineError(w, h.engine.Previous(r.Context())) {
		return
	}
	respondJSON(w, http.StatusOK, MoveResponse{Position: h.engine.Session().Position})
}

// POST /session/finish
func (h *Handler) finishSession(w http.ResponseWriter, r *http.Request) {
	if h.handleEngineError(w, h.engine.Finish(r.Context())) {
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(h.engine.Session()))
}

// DELETE /session
func (h *Handler) clearSession(w http.ResponseWriter, r *http.Request) {
	if h.handleEngineError(w, h.engine.ClearSession()) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /session/results
func (h *Handler) sessionResults(w http.ResponseWriter, r *http.Request) {
	summary, err := h.engine.Results()
	if h.handleEngineError(w, err) {
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
