// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"
	"time"
)

func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Question bank
	mux.HandleFunc("GET /quiz/bank", h.getBank)

	// Quiz sessions
	mux.HandleFunc("POST /learners/{learnerID}/quiz/sessions", h.startSession)
	mux.HandleFunc("GET /learners/{learnerID}/quiz", h.getQuiz)
	mux.HandleFunc("POST /learners/{learnerID}/quiz/answer", h.answer)
	mux.HandleFunc("POST /learners/{learnerID}/quiz/hint", h.hint)
	mux.HandleFunc("POST /learners/{learnerID}/quiz/repeat", h.repeat)
	mux.HandleFunc("POST /learners/{learnerID}/quiz/stop", h.stopQuiz)

	// Stats
	mux.HandleFunc("GET /learners/{learnerID}/stats", h.getStats)

	// Lessons
	mux.HandleFunc("GET /lessons", h.listLessons)
	mux.HandleFunc("GET /learners/{learnerID}/lesson", h.getLesson)
	mux.HandleFunc("POST /learners/{learnerID}/lesson/{action}", h.lessonAction)
}

// ============================================================================
// Middleware
// ============================================================================

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Logging logs one line per request once the handler returns.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			level := slog.LevelInfo
			if rec.status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(r.Context(), level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"bytes", rec.bytes,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

// CORS allows any origin; preflight requests are answered directly.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
