package api

import (
	"net/http"

	"github.com/uwtopia/engine/internal/domain/customquiz"
)

// ── Request / Response types ────────────────────────────────────────────────

type CreateQuizRequest struct {
	Name        string `json:"name"`
	QuestionIDs []int  `json:"question_ids"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// GET /quizzes
func (h *Handler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.engine.CustomQuizzes()
	if h.handleEngineError(w, err) {
		return
	}
	if quizzes == nil {
		quizzes = []customquiz.CustomQuiz{}
	}
	respondJSON(w, http.StatusOK, quizzes)
}

// POST /quizzes
func (h *Handler) createQuiz(w http.ResponseWriter, r *http.Request) {
	var req CreateQuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	quiz, err := h.engine.CreateCustomQuiz(req.Name, req.QuestionIDs)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, quiz)
}

// DELETE /quizzes/{quizID}
func (h *Handler) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	if h.handleEngineError(w, h.engine.DeleteCustomQuiz(r.PathValue("quizID"))) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
