package api

import (
	"net/http"
	"sort"

	"github.com/remaimber-it/quizengine/internal/domain/stats"
	"github.com/remaimber-it/quizengine/internal/engine"
)

// ── Request / Response types ────────────────────────────────────────────────

type CategoryStats struct {
	Category string  `json:"category"`
	Attempts int     `json:"attempts"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

type StatsResponse struct {
	Questions  stats.Map       `json:"questions"`
	Categories []CategoryStats `json:"categories"`
	Engagement engine.Result   `json:"engagement"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// GET /learners/{learnerID}/stats
func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	l, ok := h.learner(w, r)
	if !ok {
		return
	}

	m, eng := l.Progress(r.Context())
	respondJSON(w, http.StatusOK, StatsResponse{
		Questions:  m,
		Categories: categoryStats(m),
		Engagement: eng,
	})
}

func categoryStats(m stats.Map) []CategoryStats {
	byCategory := make(map[string]*CategoryStats)
	for _, s := range m {
		c, ok := byCategory[s.Category]
		if !ok {
			c = &CategoryStats{Category: s.Category}
			byCategory[s.Category] = c
		}
		c.Attempts += s.TotalAttempts
		c.Correct += s.CorrectAttempts
	}

	out := make([]CategoryStats, 0, len(byCategory))
	for _, c := range byCategory {
		if c.Attempts > 0 {
			c.Accuracy = float64(c.Correct) / float64(c.Attempts)
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
