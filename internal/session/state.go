package session

import (
	"time"

	"github.com/remaimber-it/quizengine/internal/domain/quiz"
	"github.com/remaimber-it/quizengine/internal/engine"
)

type State string

const (
	StateIdle            State = "idle"
	StateStarting        State = "session_starting"
	StateQuestionActive  State = "question_active"
	StateAnswerCorrect   State = "answer_correct"
	StateAnswerWrong     State = "answer_wrong"
	StateSessionComplete State = "session_complete"
)

// answerable reports whether answer, hint and repeat are accepted.
func (s State) answerable() bool {
	return s == StateQuestionActive || s == StateAnswerWrong
}

type AnswerStatus string

const (
	StatusNone    AnswerStatus = "none"
	StatusCorrect AnswerStatus = "correct"
	StatusWrong   AnswerStatus = "wrong"
	StatusInvalid AnswerStatus = "invalid"
)

// QuestionView is what a learner is allowed to see of a question.
type QuestionView struct {
	ID       string   `json:"id"`
	Category string   `json:"category"`
	Text     string   `json:"question"`
	Options  []string `json:"options"`
	Grade    int      `json:"grade"`
}

func newQuestionView(q quiz.Question) *QuestionView {
	return &QuestionView{
		ID:       q.ID,
		Category: q.Category,
		Text:     q.Text,
		Options:  append([]string(nil), q.Options...),
		Grade:    q.Grade,
	}
}

// View is a snapshot of the controller, safe to hand to other goroutines.
type View struct {
	SessionID   string           `json:"session_id,omitempty"`
	State       State            `json:"state"`
	Type        quiz.SessionType `json:"type,omitempty"`
	Question    *QuestionView    `json:"question,omitempty"`
	Index       int              `json:"index"`
	Total       int              `json:"total"`
	StartedAt   time.Time        `json:"started_at,omitzero"`
	Hint        string           `json:"hint,omitempty"`
	HintsUsed   int              `json:"hints_used"`
	RepeatsUsed int              `json:"repeats_used"`
	Selected    *int             `json:"selected,omitempty"`
	Status      AnswerStatus     `json:"status"`
	Correct     int              `json:"correct"`
	Answered    int              `json:"answered"`
	Engagement  *engine.Result   `json:"engagement,omitempty"`
}

// Summary is reported once when a session runs out of questions.
type Summary struct {
	SessionID string    `json:"session_id"`
	Correct   int       `json:"correct"`
	Total     int       `json:"total"`
	Answered  int       `json:"answered"`
	EndedAt   time.Time `json:"ended_at"`
}
