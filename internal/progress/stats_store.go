// Package progress persists learner progress through a store.KV: the
// per-question statistics used for adaptation and the lesson cursor.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/remaimber-it/quizengine/internal/domain/stats"
	"github.com/remaimber-it/quizengine/internal/store"
)

const statsKeyBase = "quiz_stats_v1"

// StatsKey returns the KV key holding a learner's stats map.
// The empty learner id maps to the bare key.
func StatsKey(learnerID string) string {
	if learnerID == "" {
		return statsKeyBase
	}
	return statsKeyBase + ":" + learnerID
}

// StatsStore keeps the whole stats map for one key in memory and writes it
// back after every attempt. Only one process may write a given key.
type StatsStore struct {
	kv     store.KV
	key    string
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	loaded  bool
	cache   stats.Map
	pending []timedAttempt // applied while the stored map was unreadable
}

type timedAttempt struct {
	attempt stats.Attempt
	at      time.Time
}

type Option func(*StatsStore)

// WithClock overrides the time source used for LastAnsweredAt.
func WithClock(now func() time.Time) Option {
	return func(s *StatsStore) { s.now = now }
}

func NewStatsStore(kv store.KV, key string, logger *slog.Logger, opts ...Option) *StatsStore {
	s := &StatsStore{
		kv:     kv,
		key:    key,
		logger: logger,
		now:    time.Now,
		cache:  make(stats.Map),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAll returns a copy of every stat. Missing or unreadable data yields an
// empty map.
func (s *StatsStore) GetAll(ctx context.Context) stats.Map {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoaded(ctx)
	return s.cache.Clone()
}

// UpsertAttempt folds one answered question into its stat and persists the
// map. A failed write is logged; the in-memory update is kept.
func (s *StatsStore) UpsertAttempt(ctx context.Context, a stats.Attempt) {
	if a.QuestionID == "" {
		s.logger.Warn("ignoring attempt without question id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoaded(ctx)
	at := s.now()
	s.cache[a.QuestionID] = s.cache[a.QuestionID].Apply(a, at)

	if !s.loaded {
		// the stored map is only written after it has been read
		s.pending = append(s.pending, timedAttempt{attempt: a, at: at})
		s.logger.Warn("stats not loaded, deferring write",
			"key", s.key,
			"question_id", a.QuestionID,
			"pending", len(s.pending),
		)
		return
	}
	s.persist(ctx, a.QuestionID)
}

// persist writes the whole cached map. Caller holds s.mu.
func (s *StatsStore) persist(ctx context.Context, questionID string) {
	data, err := json.Marshal(s.cache)
	if err != nil {
		s.logger.Error("failed to encode stats", "key", s.key, "error", err)
		return
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		s.logger.Warn("failed to persist stats",
			"key", s.key,
			"question_id", questionID,
			"error", err,
		)
	}
}

// ensureLoaded reads the stored map once. A transient read failure is not
// cached so the next call retries; attempts recorded in the meantime are
// replayed on top of the stored map and written back. Caller holds s.mu.
func (s *StatsStore) ensureLoaded(ctx context.Context) {
	if s.loaded {
		return
	}

	data, err := s.kv.Get(ctx, s.key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		data = nil
	case err != nil:
		s.logger.Warn("failed to read stats", "key", s.key, "error", err)
		return
	}
	s.loaded = true

	loaded := s.decode(data)
	for _, p := range s.pending {
		loaded[p.attempt.QuestionID] = loaded[p.attempt.QuestionID].Apply(p.attempt, p.at)
	}
	s.cache = loaded

	if len(s.pending) > 0 {
		s.logger.Info("replayed deferred attempts", "key", s.key, "count", len(s.pending))
		s.pending = nil
		s.persist(ctx, "")
	}
}

// decode parses a stored map, dropping invalid entries. Absent or corrupt
// data gives an empty map.
func (s *StatsStore) decode(data []byte) stats.Map {
	out := make(stats.Map)
	if data == nil {
		return out
	}

	var decoded stats.Map
	if err := json.Unmarshal(data, &decoded); err != nil {
		s.logger.Warn("stored stats are corrupt, starting empty", "key", s.key, "error", err)
		return out
	}

	for id, st := range decoded {
		if !st.Valid() {
			s.logger.Warn("dropping invalid stat", "key", s.key, "question_id", id)
			continue
		}
		if st.ID == "" {
			st.ID = id
		}
		out[id] = st
	}
	return out
}
