// Package service hosts one quiz controller and one lesson player per
// learner, all sharing the loaded banks and the persistence backend.
package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"sync"

	"github.com/remaimber-it/quizengine/internal/domain/lesson"
	"github.com/remaimber-it/quizengine/internal/domain/quiz"
	"github.com/remaimber-it/quizengine/internal/domain/stats"
	"github.com/remaimber-it/quizengine/internal/engine"
	"github.com/remaimber-it/quizengine/internal/hint"
	"github.com/remaimber-it/quizengine/internal/lessonplayer"
	"github.com/remaimber-it/quizengine/internal/progress"
	"github.com/remaimber-it/quizengine/internal/session"
	"github.com/remaimber-it/quizengine/internal/speech"
	"github.com/remaimber-it/quizengine/internal/store"
)

var (
	ErrUnknownLearner = errors.New("unknown learner")
	ErrInvalidLearner = errors.New("invalid learner id")
)

var learnerIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ObserverFactory builds the observer attached to a learner's controller.
type ObserverFactory func(learnerID string) session.Observer

// Config tunes the per-learner components.
type Config struct {
	Session        session.Config
	TranscriptSize int              // utterances kept per learner; 0 keeps all
	Selector       *engine.Selector // shared; nil seeds one from the clock
}

// Learner groups everything that belongs to one learner id.
type Learner struct {
	ID         string
	Quiz       *session.Controller
	Lesson     *lessonplayer.Player
	Stats      *progress.StatsStore
	Transcript *speech.Transcript
}

// Registry creates learners on first use and hands back the same
// instance afterwards.
type Registry struct {
	kv        store.KV
	questions *quiz.Bank
	lessons   *lesson.Bank
	hints     hint.Generator
	cfg       Config
	observers []ObserverFactory
	logger    *slog.Logger

	mu       sync.RWMutex
	learners map[string]*Learner
}

// NewRegistry creates a Registry. Observers are attached to every learner
// created afterwards.
func NewRegistry(kv store.KV, questions *quiz.Bank, lessons *lesson.Bank, hints hint.Generator, cfg Config, logger *slog.Logger, observers ...ObserverFactory) *Registry {
	if cfg.Selector == nil {
		cfg.Selector = engine.NewSelector(nil)
	}
	return &Registry{
		kv:        kv,
		questions: questions,
		lessons:   lessons,
		hints:     hints,
		cfg:       cfg,
		observers: observers,
		logger:    logger,
		learners:  make(map[string]*Learner),
	}
}

// Questions returns the shared question bank.
func (r *Registry) Questions() *quiz.Bank { return r.questions }

// Lessons returns the shared lesson bank.
func (r *Registry) Lessons() *lesson.Bank { return r.lessons }

// Learner returns the learner with the given id, creating it if needed.
func (r *Registry) Learner(learnerID string) (*Learner, error) {
	if !learnerIDPattern.MatchString(learnerID) {
		return nil, ErrInvalidLearner
	}

	r.mu.RLock()
	l, ok := r.learners[learnerID]
	r.mu.RUnlock()
	if ok {
		return l, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.learners[learnerID]; ok {
		return l, nil
	}
	l = r.newLearner(learnerID)
	r.learners[learnerID] = l

	r.logger.Info("learner created", "learner_id", learnerID)
	return l, nil
}

// Lookup returns an existing learner without creating one.
func (r *Registry) Lookup(learnerID string) (*Learner, error) {
	if !learnerIDPattern.MatchString(learnerID) {
		return nil, ErrInvalidLearner
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.learners[learnerID]
	if !ok {
		return nil, ErrUnknownLearner
	}
	return l, nil
}

// Len reports how many learners are live.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.learners)
}

// StopAll silences every learner's quiz and lesson narration.
func (r *Registry) StopAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.learners {
		l.Quiz.Stop()
		l.Lesson.Stop()
	}
}

func (r *Registry) newLearner(learnerID string) *Learner {
	logger := r.logger.With("learner_id", learnerID)
	transcript := speech.NewTranscript(r.cfg.TranscriptSize, speech.NewLogSpeaker(logger))
	statsStore := progress.NewStatsStore(r.kv, progress.StatsKey(learnerID), logger)

	ctrl := session.New(session.Deps{
		Bank:     r.questions,
		Stats:    statsStore,
		Selector: r.cfg.Selector,
		Hints:    r.hints,
		Speaker:  transcript,
		Logger:   logger,
	}, r.cfg.Session)
	for _, newObserver := range r.observers {
		ctrl.Subscribe(newObserver(learnerID))
	}

	var segments []lesson.Segment
	if r.lessons != nil {
		segments = r.lessons.Segments("", nil)
	}
	cursor := progress.NewCursorStore(r.kv, progress.CursorKey(learnerID), logger)

	return &Learner{
		ID:         learnerID,
		Quiz:       ctrl,
		Lesson:     lessonplayer.New(segments, cursor, transcript, logger),
		Stats:      statsStore,
		Transcript: transcript,
	}
}

// Progress returns the learner's stored stats and the engagement they imply.
func (l *Learner) Progress(ctx context.Context) (stats.Map, engine.Result) {
	m := l.Stats.GetAll(ctx)
	return m, engine.Estimate(m)
}
