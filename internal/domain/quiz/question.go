package quiz

import (
	"fmt"
	"strings"
)

// Question is a single multiple-choice item from the bundled question bank.
// Questions are immutable once loaded.
type Question struct {
	ID            string   `json:"id" validate:"required"`
	Category      string   `json:"category" validate:"required"`
	Text          string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"min=2,dive,required"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
	HintTopic     string   `json:"hint_topic,omitempty"`
	Grade         int      `json:"grade" validate:"oneof=10 11"`
}

// Evaluate reports whether selected matches the correct answer,
// ignoring case and surrounding whitespace.
func Evaluate(correctAnswer, selected string) bool {
	return normalize(correctAnswer) == normalize(selected)
}

// IsCorrect evaluates selected against the question's correct answer.
func (q Question) IsCorrect(selected string) bool {
	return Evaluate(q.CorrectAnswer, selected)
}

// clone copies q including its options.
func (q Question) clone() Question {
	q.Options = append([]string(nil), q.Options...)
	return q
}

// Option returns the option text at index and whether the index is valid.
func (q Question) Option(index int) (string, bool) {
	if index < 0 || index >= len(q.Options) {
		return "", false
	}
	return q.Options[index], true
}

// HasCorrectOption reports whether one of the options matches the correct answer.
func (q Question) HasCorrectOption() bool {
	for _, opt := range q.Options {
		if q.IsCorrect(opt) {
			return true
		}
	}
	return false
}

// SpokenOptions renders the options as "A. first. B. second" for narration.
func (q Question) SpokenOptions() string {
	parts := make([]string, len(q.Options))
	for i, opt := range q.Options {
		parts[i] = fmt.Sprintf("%s. %s", OptionLabel(i), opt)
	}
	return strings.Join(parts, ". ")
}

// OptionLabel maps 0 → "A", 1 → "B", and so on.
func OptionLabel(index int) string {
	return string(rune('A' + index))
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
