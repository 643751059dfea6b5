// Package metrics exposes quiz activity as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/remaimber-it/quizengine/internal/session"
)

type Metrics struct {
	registry *prometheus.Registry

	sessionsStarted   *prometheus.CounterVec
	sessionsCompleted prometheus.Counter
	answers           *prometheus.CounterVec
	hints             *prometheus.CounterVec
	sessionAccuracy   prometheus.Histogram
	httpRequests      *prometheus.CounterVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		sessionsStarted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_sessions_started_total",
			Help: "Quiz sessions started, by session type",
		}, []string{"type"}),
		sessionsCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "quiz_sessions_completed_total",
			Help: "Quiz sessions that ran out of questions",
		}),
		answers: f.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_answers_total",
			Help: "Graded answers, by outcome",
		}, []string{"status"}), // status: correct/wrong/invalid
		hints: f.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_hints_total",
			Help: "Hint requests, by outcome",
		}, []string{"outcome"}), // outcome: spoken/refused
		sessionAccuracy: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "quiz_session_accuracy_ratio",
			Help:    "Correct answers over answers given, per completed session",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_http_requests_total",
			Help: "HTTP requests served, by method and status code",
		}, []string{"method", "code"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// InstrumentHandler counts requests passing through next.
func (m *Metrics) InstrumentHandler(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerCounter(m.httpRequests, next)
}

// Observer returns a session.Observer feeding these metrics.
func (m *Metrics) Observer() session.Observer {
	return session.ObserverFunc(m.record)
}

func (m *Metrics) record(e session.Event) {
	switch e.Kind {
	case session.EventSessionStarted:
		m.sessionsStarted.WithLabelValues(string(e.View.Type)).Inc()
	case session.EventAnswered:
		m.answers.WithLabelValues(string(e.View.Status)).Inc()
	case session.EventInvalidSelection:
		m.answers.WithLabelValues(string(session.StatusInvalid)).Inc()
	case session.EventHint:
		m.hints.WithLabelValues("spoken").Inc()
	case session.EventHintRefused:
		m.hints.WithLabelValues("refused").Inc()
	case session.EventSessionCompleted:
		if e.Summary == nil || e.Summary.Total == 0 {
			return
		}
		m.sessionsCompleted.Inc()
		if e.Summary.Answered > 0 {
			m.sessionAccuracy.Observe(float64(e.Summary.Correct) / float64(e.Summary.Answered))
		}
	}
}
