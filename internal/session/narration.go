package session

import (
	"fmt"
	"strings"

	"github.com/remaimber-it/quizengine/internal/domain/quiz"
	"github.com/remaimber-it/quizengine/internal/engine"
)

const (
	msgNoQuestions = "No questions available for this session."
	msgInvalid     = "Invalid selection."
	msgCorrect     = "Correct."
	msgWrong       = "Wrong. Try again or ask for a hint."
	msgHintsCapped = "Maximum hints reached for this question."
	msgHintPrefix  = "Hint. "
)

func introText(cfg quiz.SessionConfig, count int, level engine.Level) string {
	var base string
	switch cfg.Type {
	case quiz.SessionPractice:
		base = "Starting practice session."
	case quiz.SessionTopicDrill:
		topic := cfg.Category
		if topic == "" {
			topic = "selected topic"
		}
		base = fmt.Sprintf("Starting topic drill on %s.", topic)
	case quiz.SessionQuickRevision:
		base = "Starting quick revision."
	case quiz.SessionMockExam:
		base = "Starting mock exam."
	default:
		base = "Starting weak area practice."
	}

	noun := "questions"
	if count == 1 {
		noun = "question"
	}

	var adapt string
	switch level {
	case engine.LevelLow:
		adapt = "I will keep it short and provide extra hints."
	case engine.LevelHigh:
		adapt = "You are doing well. I will include more challenging questions."
	default:
		adapt = "Let's begin."
	}

	return fmt.Sprintf("%s This session has %d %s. %s", base, count, noun, adapt)
}

func questionText(number int, q quiz.Question) string {
	return fmt.Sprintf("Question %d. %s Options. %s.", number, sentence(q.Text), q.SpokenOptions())
}

// wrongText adds the bundled hint when the learner is struggling.
func wrongText(q quiz.Question, level engine.Level) string {
	if level == engine.LevelLow && strings.TrimSpace(q.HintTopic) != "" {
		return "Wrong. " + msgHintPrefix + sentence(q.HintTopic) + " Try again."
	}
	return msgWrong
}

func completionText(correct, total int) string {
	return fmt.Sprintf("Session completed. You answered %d out of %d correctly.", correct, total)
}

// sentence trims s and makes sure it ends with punctuation.
func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	switch s[len(s)-1] {
	case '.', '?', '!':
		return s
	}
	return s + "."
}
