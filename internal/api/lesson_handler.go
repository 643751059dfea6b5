package api

import (
	"context"
	"net/http"
	"sort"

	"github.com/remaimber-it/quizengine/internal/lessonplayer"
)

// ── Request / Response types ────────────────────────────────────────────────

type LessonSummary struct {
	ID        string `json:"lesson_id"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Grade     int    `json:"grade"`
	Order     int    `json:"order"`
	Objective string `json:"objective,omitempty"`
	Segments  int    `json:"segments"`
}

type ListLessonsResponse struct {
	CourseID string          `json:"course_id"`
	Title    string          `json:"title"`
	Lessons  []LessonSummary `json:"lessons"`
}

type lessonStep func(p *lessonplayer.Player, ctx context.Context) (lessonplayer.Position, error)

var lessonActions = map[string]lessonStep{
	"start":  (*lessonplayer.Player).Start,
	"next":   (*lessonplayer.Player).Next,
	"prev":   (*lessonplayer.Player).Prev,
	"repeat": (*lessonplayer.Player).Repeat,
	"stop": func(p *lessonplayer.Player, _ context.Context) (lessonplayer.Position, error) {
		p.Stop()
		return p.Position(), nil
	},
	"reset": func(p *lessonplayer.Player, ctx context.Context) (lessonplayer.Position, error) {
		return p.Reset(ctx), nil
	},
}

// ── Handlers ────────────────────────────────────────────────────────────────

// GET /lessons
func (h *Handler) listLessons(w http.ResponseWriter, r *http.Request) {
	bank := h.learners.Lessons()
	if bank == nil {
		respondJSON(w, http.StatusOK, ListLessonsResponse{Lessons: []LessonSummary{}})
		return
	}

	lessons := make([]LessonSummary, 0, len(bank.Lessons))
	for _, u := range bank.Lessons {
		lessons = append(lessons, LessonSummary{
			ID:        u.ID,
			Title:     u.Title,
			Category:  u.Category,
			Grade:     u.Grade,
			Order:     u.Order,
			Objective: u.Objective,
			Segments:  len(u.Segments),
		})
	}
	sort.SliceStable(lessons, func(i, j int) bool { return lessons[i].Order < lessons[j].Order })

	respondJSON(w, http.StatusOK, ListLessonsResponse{
		CourseID: bank.CourseID,
		Title:    bank.Title,
		Lessons:  lessons,
	})
}

// GET /learners/{learnerID}/lesson
func (h *Handler) getLesson(w http.ResponseWriter, r *http.Request) {
	l, ok := h.learner(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, l.Lesson.Position())
}

// POST /learners/{learnerID}/lesson/{action}
func (h *Handler) lessonAction(w http.ResponseWriter, r *http.Request) {
	action, ok := lessonActions[r.PathValue("action")]
	if !ok {
		respondError(w, http.StatusNotFound, "unknown lesson action")
		return
	}

	l, ok := h.learner(w, r)
	if !ok {
		return
	}

	pos, err := action(l.Lesson, r.Context())
	if h.handleServiceError(w, err, "lesson") {
		return
	}
	respondJSON(w, http.StatusOK, pos)
}
