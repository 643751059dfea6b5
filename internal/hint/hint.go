// Package hint builds spoken hint prompts and talks to the LLM backends
// that answer them. Every backend failure is a *GenerateError; callers
// fall back to the question's bundled hint.
package hint

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/remaimber-it/quizengine/internal/domain/quiz"
)

// Generator turns a prompt into hint text. Implementations may call an LLM
// or return canned results (for tests).
type Generator interface {
	GenerateHint(ctx context.Context, prompt string) (string, error)
}

// GenericHint is spoken when there is neither a generated nor a bundled hint.
const GenericHint = "Think about what the key concept is and eliminate clearly wrong answers."

var ErrDisabled = errors.New("hint generation disabled")

// GenerateError is returned when a backend could not produce a hint so the
// caller can tell "model said nothing useful" from "model was unreachable".
type GenerateError struct {
	Reason  string
	Wrapped error
}

func (e *GenerateError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("hint generation failed: %s: %v", e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("hint generation failed: %s", e.Reason)
}

func (e *GenerateError) Unwrap() error {
	return e.Wrapped
}

// BuildPrompt asks for a short spoken hint that does not reveal the answer.
func BuildPrompt(q quiz.Question) string {
	return fmt.Sprintf(`You are helping a visually impaired Grade %d ICT student.
Give a short, spoken-style hint for this question WITHOUT saying the answer.
Reply with the hint only, in one or two sentences, no markdown.

Question: %s

Options:
%s`, q.Grade, q.Text, strings.Join(q.Options, "\n"))
}

// Fallback returns the bundled hint topic or the generic strategy hint.
func Fallback(q quiz.Question) string {
	if topic := strings.TrimSpace(q.HintTopic); topic != "" {
		return topic
	}
	return GenericHint
}

// Disabled is the Generator used when no provider is configured.
type Disabled struct{}

func (Disabled) GenerateHint(context.Context, string) (string, error) {
	return "", &GenerateError{Reason: "no provider configured", Wrapped: ErrDisabled}
}

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// clean strips reasoning blocks and markdown emphasis that would be read
// aloud, and rejects empty output.
func clean(raw string) (string, error) {
	text := thinkBlock.ReplaceAllString(raw, "")
	text = strings.NewReplacer("**", "", "__", "", "`", "").Replace(text)
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return "", &GenerateError{Reason: "empty response"}
	}
	return text, nil
}
