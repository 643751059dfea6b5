// Package engine holds the adaptive logic of a quiz: the engagement
// estimate computed from past statistics and the question selector that
// consumes it.
package engine

import (
	"sort"

	"github.com/remaimber-it/quizengine/internal/domain/stats"
)

type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Result is the outcome of Estimate.
type Result struct {
	Level          Level      `json:"level"`
	Difficulty     Difficulty `json:"difficulty"`
	WeakCategories []string   `json:"weak_categories"`
	Score          float64    `json:"score"`
}

const (
	slowMs = 18000.0
	fastMs = 6000.0

	weightAccuracy = 0.55
	weightSpeed    = 0.25
	weightAssist   = 0.20
	penaltyStreak  = 0.15

	maxWrongStreak = 5

	highCut   = 0.75
	mediumCut = 0.45

	weakAccuracy    = 0.6
	weakMinAttempts = 3
	maxWeak         = 3
)

// Estimate derives the learner's engagement from every recorded stat.
// It is deterministic for a given map.
func Estimate(m stats.Map) Result {
	var attempts, correct, hints, repeats int
	var timeMs int64
	for _, s := range m {
		attempts += s.TotalAttempts
		correct += s.CorrectAttempts
		hints += s.TotalHints
		repeats += s.TotalRepeats
		timeMs += s.TotalTimeMs
	}

	if attempts == 0 {
		return Result{
			Level:          LevelMedium,
			Difficulty:     DifficultyMedium,
			WeakCategories: []string{},
			Score:          mediumCut,
		}
	}

	n := float64(attempts)
	accuracy := float64(correct) / n
	avgMs := float64(timeMs) / n
	speed := clamp((slowMs-avgMs)/(slowMs-fastMs), 0, 1)
	assist := min(1, float64(hints+repeats)/n)
	streak := wrongStreak(m)

	score := clamp(
		weightAccuracy*accuracy+
			weightSpeed*speed+
			weightAssist*(1-assist)-
			penaltyStreak*float64(streak)/maxWrongStreak,
		0, 1)

	level := levelFor(score)
	return Result{
		Level:          level,
		Difficulty:     difficultyFor(level),
		WeakCategories: WeakCategories(m),
		Score:          score,
	}
}

func levelFor(score float64) Level {
	switch {
	case score >= highCut:
		return LevelHigh
	case score >= mediumCut:
		return LevelMedium
	default:
		return LevelLow
	}
}

func difficultyFor(l Level) Difficulty {
	switch l {
	case LevelLow:
		return DifficultyEasy
	case LevelHigh:
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// wrongStreak counts the most recently answered questions whose last
// attempt was wrong, stopping at the first correct one.
func wrongStreak(m stats.Map) int {
	recent := make([]stats.QuestionStat, 0, len(m))
	for _, s := range m {
		if s.TotalAttempts > 0 {
			recent = append(recent, s)
		}
	}
	sort.Slice(recent, func(i, j int) bool {
		if recent[i].LastAnsweredAt != recent[j].LastAnsweredAt {
			return recent[i].LastAnsweredAt > recent[j].LastAnsweredAt
		}
		return recent[i].ID < recent[j].ID
	})

	streak := 0
	for _, s := range recent {
		if s.LastCorrect || streak == maxWrongStreak {
			break
		}
		streak++
	}
	return streak
}

// WeakCategories lists categories answered at least three times with
// accuracy below 60%, worst first, at most three.
func WeakCategories(m stats.Map) []string {
	type agg struct {
		attempts int
		correct  int
	}
	byCat := make(map[string]*agg)
	for _, s := range m {
		if s.Category == "" {
			continue
		}
		a, ok := byCat[s.Category]
		if !ok {
			a = &agg{}
			byCat[s.Category] = a
		}
		a.attempts += s.TotalAttempts
		a.correct += s.CorrectAttempts
	}

	type weak struct {
		name string
		acc  float64
	}
	var ws []weak
	for name, a := range byCat {
		if a.attempts < weakMinAttempts {
			continue
		}
		acc := float64(a.correct) / float64(a.attempts)
		if acc < weakAccuracy {
			ws = append(ws, weak{name, acc})
		}
	}
	sort.Slice(ws, func(i, j int) bool {
		if ws[i].acc != ws[j].acc {
			return ws[i].acc < ws[j].acc
		}
		return ws[i].name < ws[j].name
	})

	out := make([]string, 0, maxWeak)
	for i := 0; i < len(ws) && i < maxWeak; i++ {
		out = append(out, ws[i].name)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
