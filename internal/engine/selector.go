package engine

import (
	"math/rand"
	"sync"
	"time"

	"github.com/remaimber-it/quizengine/internal/domain/quiz"
	"github.com/remaimber-it/quizengine/internal/domain/stats"
)

const (
	hardBelow    = 0.6
	easyFrom     = 0.6
	revisionFrom = 0.7
)

// Selector picks the questions for a session. It is safe for concurrent use.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector uses src for shuffling; nil seeds from the clock.
func NewSelector(src rand.Source) *Selector {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Selector{rng: rand.New(src)}
}

// Select draws up to cfg.Limit distinct questions in random order.
// topic_drill without a category, or a non-positive limit, gives nothing.
func (s *Selector) Select(questions []quiz.Question, cfg quiz.SessionConfig, m stats.Map, eng Result) []quiz.Question {
	if cfg.Limit <= 0 {
		return []quiz.Question{}
	}
	if cfg.Type == quiz.SessionTopicDrill && cfg.Category == "" {
		return []quiz.Question{}
	}

	base := filter(questions, cfg.Matches)
	return s.sample(candidatePool(base, cfg, m, eng), cfg.Limit)
}

func candidatePool(base []quiz.Question, cfg quiz.SessionConfig, m stats.Map, eng Result) []quiz.Question {
	switch cfg.Type {
	case quiz.SessionMockExam:
		return base

	case quiz.SessionQuickRevision:
		return orBase(filter(base, func(q quiz.Question) bool {
			acc, seen := m.Accuracy(q.ID)
			return !seen || acc >= revisionFrom
		}), base)

	case quiz.SessionWeakArea:
		missed := filter(base, func(q quiz.Question) bool {
			st, ok := m[q.ID]
			return ok && st.TotalAttempts > 0 && st.WrongAttempts() > st.CorrectAttempts
		})
		if len(missed) > 0 {
			return missed
		}
		if len(eng.WeakCategories) > 0 {
			weak := make(map[string]bool, len(eng.WeakCategories))
			for _, c := range eng.WeakCategories {
				weak[c] = true
			}
			return orBase(filter(base, func(q quiz.Question) bool {
				return weak[q.Category]
			}), base)
		}
		return base

	default: // practice, topic_drill
		switch eng.Difficulty {
		case DifficultyHard:
			return orBase(filter(base, func(q quiz.Question) bool {
				acc, seen := m.Accuracy(q.ID)
				return !seen || acc < hardBelow
			}), base)
		case DifficultyEasy:
			return orBase(filter(base, func(q quiz.Question) bool {
				acc, seen := m.Accuracy(q.ID)
				return !seen || acc >= easyFrom
			}), base)
		}
		return base
	}
}

// sample shuffles a copy of pool and keeps the first n.
func (s *Selector) sample(pool []quiz.Question, n int) []quiz.Question {
	shuffled := make([]quiz.Question, len(pool))
	copy(shuffled, pool)

	s.mu.Lock()
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	s.mu.Unlock()

	if n < len(shuffled) {
		shuffled = shuffled[:n]
	}
	return shuffled
}

func filter(qs []quiz.Question, keep func(quiz.Question) bool) []quiz.Question {
	out := make([]quiz.Question, 0, len(qs))
	for _, q := range qs {
		if keep(q) {
			out = append(out, q)
		}
	}
	return out
}

func orBase(pool, base []quiz.Question) []quiz.Question {
	if len(pool) == 0 {
		return base
	}
	return pool
}
