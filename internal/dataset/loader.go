// Package dataset loads the bundled question and lesson banks.
// A structurally invalid file is fatal: callers get a *LoadError and the
// feature cannot start.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/remaimber-it/quizengine/internal/domain/lesson"
	"github.com/remaimber-it/quizengine/internal/domain/quiz"
)

// LoadError wraps every failure while reading or validating a dataset file.
type LoadError struct {
	Path    string
	Wrapped error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("dataset load failed: %v", e.Wrapped)
	}
	return fmt.Sprintf("dataset load failed (%s): %v", e.Path, e.Wrapped)
}

func (e *LoadError) Unwrap() error {
	return e.Wrapped
}

// questionFile mirrors large_lesson.json.
type questionFile struct {
	LessonID string           `json:"lesson_id" validate:"required"`
	Title    string           `json:"title" validate:"required"`
	Segments []lesson.Segment `json:"segments" validate:"required,dive"`
	Quiz     []quiz.Question  `json:"quiz" validate:"required,dive"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// LoadQuestionBank reads and validates a question bank file.
func LoadQuestionBank(path string) (*quiz.Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Wrapped: err}
	}
	defer f.Close()

	bank, err := ParseQuestionBank(f)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return bank, nil
}

// ParseQuestionBank decodes and validates a question bank from r.
func ParseQuestionBank(r io.Reader) (*quiz.Bank, error) {
	var raw questionFile
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, &LoadError{Wrapped: fmt.Errorf("invalid JSON: %w", err)}
	}

	if err := validate.Struct(raw); err != nil {
		return nil, &LoadError{Wrapped: describe(err)}
	}

	seen := make(map[string]struct{}, len(raw.Quiz))
	for i, q := range raw.Quiz {
		if _, dup := seen[q.ID]; dup {
			return nil, &LoadError{Wrapped: fmt.Errorf("quiz[%d]: duplicate id %q", i, q.ID)}
		}
		seen[q.ID] = struct{}{}

		if !q.HasCorrectOption() {
			return nil, &LoadError{Wrapped: fmt.Errorf("quiz[%d] (%s): correct_answer %q matches no option", i, q.ID, q.CorrectAnswer)}
		}
	}

	return quiz.NewBank(raw.LessonID, raw.Title, raw.Quiz), nil
}

// LoadLessonBank reads and validates a structured lesson bank file.
func LoadLessonBank(path string) (*lesson.Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Wrapped: err}
	}
	defer f.Close()

	bank, err := ParseLessonBank(f)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return bank, nil
}

// ParseLessonBank decodes and validates a lesson bank from r.
func ParseLessonBank(r io.Reader) (*lesson.Bank, error) {
	var bank lesson.Bank
	if err := json.NewDecoder(r).Decode(&bank); err != nil {
		return nil, &LoadError{Wrapped: fmt.Errorf("invalid JSON: %w", err)}
	}
	if bank.Lessons == nil {
		return nil, &LoadError{Wrapped: errors.New("lessons must be an array")}
	}
	if err := validate.Struct(bank); err != nil {
		return nil, &LoadError{Wrapped: describe(err)}
	}
	return &bank, nil
}

// describe flattens validator output into one readable error.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		msgs = append(msgs, fmt.Sprintf("%s failed %q", field, fe.Tag()))
	}
	return fmt.Errorf("missing or invalid fields: %s", strings.Join(msgs, "; "))
}
