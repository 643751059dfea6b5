package api

import (
	"net/http"

	"github.com/remaimber-it/quizengine/internal/domain/quiz"
	"github.com/remaimber-it/quizengine/internal/session"
)

// ── Request / Response types ────────────────────────────────────────────────

type StartSessionRequest struct {
	Type     string `json:"type" validate:"required"`
	Grade    *int   `json:"grade,omitempty" validate:"omitempty,oneof=10 11"`
	Category string `json:"category,omitempty" validate:"max=128"`
	Limit    *int   `json:"limit,omitempty" validate:"omitempty,max=100"`
}

func (r *StartSessionRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	if _, err := quiz.ParseSessionType(r.Type); err != nil {
		return err
	}
	return nil
}

// config converts the request; a missing limit takes the default.
func (r *StartSessionRequest) config() quiz.SessionConfig {
	cfg := quiz.DefaultConfig()
	cfg.Type = quiz.SessionType(r.Type)
	cfg.Grade = r.Grade
	cfg.Category = r.Category
	if r.Limit != nil {
		cfg.Limit = *r.Limit
	}
	return cfg
}

type AnswerRequest struct {
	OptionIndex *int `json:"option_index" validate:"required"`
}

func (r *AnswerRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	return nil
}

type QuizStateResponse struct {
	View        session.View     `json:"view"`
	LastSummary *session.Summary `json:"last_summary,omitempty"`
	Transcript  []string         `json:"transcript"`
}

type BankResponse struct {
	LessonID   string   `json:"lesson_id"`
	Title      string   `json:"title"`
	Questions  int      `json:"questions"`
	Categories []string `json:"categories"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// GET /quiz/bank
func (h *Handler) getBank(w http.ResponseWriter, r *http.Request) {
	bank := h.learners.Questions()
	respondJSON(w, http.StatusOK, BankResponse{
		LessonID:   bank.LessonID(),
		Title:      bank.Title(),
		Questions:  bank.Len(),
		Categories: bank.Categories(),
	})
}

// POST /learners/{learnerID}/quiz/sessions
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	l, ok := h.learner(w, r)
	if !ok {
		return
	}

	view := l.Quiz.StartSession(r.Context(), req.config())
	respondJSON(w, http.StatusCreated, view)
}

// GET /learners/{learnerID}/quiz
func (h *Handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	l, ok := h.existingLearner(w, r)
	if !ok {
		return
	}

	resp := QuizStateResponse{
		View:       l.Quiz.View(),
		Transcript: l.Transcript.Lines(),
	}
	if s, ok := l.Quiz.LastSummary(); ok {
		resp.LastSummary = &s
	}
	respondJSON(w, http.StatusOK, resp)
}

// POST /learners/{learnerID}/quiz/answer
func (h *Handler) answer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	l, ok := h.existingLearner(w, r)
	if !ok {
		return
	}

	res, err := l.Quiz.Answer(r.Context(), *req.OptionIndex)
	if h.handleServiceError(w, err, "question") {
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// POST /learners/{learnerID}/quiz/hint
func (h *Handler) hint(w http.ResponseWriter, r *http.Request) {
	l, ok := h.existingLearner(w, r)
	if !ok {
		return
	}

	res, err := l.Quiz.SpeakHint(r.Context())
	if h.handleServiceError(w, err, "question") {
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// POST /learners/{learnerID}/quiz/repeat
func (h *Handler) repeat(w http.ResponseWriter, r *http.Request) {
	l, ok := h.existingLearner(w, r)
	if !ok {
		return
	}

	view, err := l.Quiz.RepeatQuestion()
	if h.handleServiceError(w, err, "question") {
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// POST /learners/{learnerID}/quiz/stop
func (h *Handler) stopQuiz(w http.ResponseWriter, r *http.Request) {
	l, ok := h.existingLearner(w, r)
	if !ok {
		return
	}

	l.Quiz.Stop()
	respondJSON(w, http.StatusOK, l.Quiz.View())
}
