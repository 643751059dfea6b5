// internal/api/handler.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/remaimber-it/quizengine/internal/lessonplayer"
	"github.com/remaimber-it/quizengine/internal/service"
	"github.com/remaimber-it/quizengine/internal/session"
	"github.com/remaimber-it/quizengine/internal/store"
)

const maxBodyBytes = 1 << 20

// Handler holds all dependencies needed by HTTP handlers.
type Handler struct {
	learners *service.Registry
	logger   *slog.Logger
}

// NewHandler creates a Handler with the given dependencies.
func NewHandler(learners *service.Registry, logger *slog.Logger) *Handler {
	return &Handler{
		learners: learners,
		logger:   logger,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

// validatable is implemented by request bodies that check themselves.
type validatable interface {
	Validate() error
}

// decodeJSON reads the request body into v. An empty body leaves v untouched.
// Returns false after writing a 400 if the body is malformed.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, v validatable) bool {
	if !decodeJSON(w, r, v) {
		return false
	}
	if err := v.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// handleServiceError maps domain errors to HTTP responses.
// Returns true if an error was handled (caller should return).
func (h *Handler) handleServiceError(w http.ResponseWriter, err error, entity string) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, service.ErrInvalidLearner):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnknownLearner), errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, entity+" not found")
	case errors.Is(err, session.ErrNoActiveQuestion):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, lessonplayer.ErrNoSegments):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("request failed", "error", err, "entity", entity)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
	return true
}

// learner resolves {learnerID}, creating the learner on first use.
func (h *Handler) learner(w http.ResponseWriter, r *http.Request) (*service.Learner, bool) {
	l, err := h.learners.Learner(r.PathValue("learnerID"))
	if h.handleServiceError(w, err, "learner") {
		return nil, false
	}
	return l, true
}

// existingLearner resolves {learnerID} without creating it.
func (h *Handler) existingLearner(w http.ResponseWriter, r *http.Request) (*service.Learner, bool) {
	l, err := h.learners.Lookup(r.PathValue("learnerID"))
	if h.handleServiceError(w, err, "learner") {
		return nil, false
	}
	return l, true
}

// ============================================================================
// Validation
// ============================================================================

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError turns validator output into a single client-facing error.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
