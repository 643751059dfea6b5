package stats_test

import (
	"testing"
	"time"

	"github.com/remaimber-it/quizengine/internal/domain/stats"
)

func attempt(correct bool) stats.Attempt {
	return stats.Attempt{
		QuestionID:  "Q1",
		Category:    "Networking",
		Grade:       11,
		IsCorrect:   correct,
		TimeTakenMs: 4000,
		HintsUsed:   1,
		RepeatsUsed: 2,
	}
}

func TestApply_FirstAttempt(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	s := stats.QuestionStat{}.Apply(attempt(true), now)

	if s.ID != "Q1" || s.Category != "Networking" || s.Grade != 11 {
		t.Errorf("unexpected identity fields: %+v", s)
	}
	if s.TotalAttempts != 1 || s.CorrectAttempts != 1 {
		t.Errorf("expected 1/1 attempts, got %d/%d", s.CorrectAttempts, s.TotalAttempts)
	}
	if s.TotalTimeMs != 4000 || s.TotalHints != 1 || s.TotalRepeats != 2 {
		t.Errorf("unexpected accumulators: %+v", s)
	}
	if s.LastAnsweredAt != now.UnixMilli() || !s.LastCorrect {
		t.Errorf("unexpected last attempt fields: %+v", s)
	}
}

func TestApply_CountsMatchUpserts(t *testing.T) {
	pattern := []bool{true, false, false, true, true, false, true}
	var s stats.QuestionStat
	wantCorrect := 0

	for i, correct := range pattern {
		if correct {
			wantCorrect++
		}
		s = s.Apply(attempt(correct), time.UnixMilli(int64(i)))

		if !s.Valid() {
			t.Fatalf("invariant broken after attempt %d: %+v", i, s)
		}
	}

	if s.TotalAttempts != len(pattern) {
		t.Errorf("expected %d attempts, got %d", len(pattern), s.TotalAttempts)
	}
	if s.CorrectAttempts != wantCorrect {
		t.Errorf("expected %d correct, got %d", wantCorrect, s.CorrectAttempts)
	}
	if s.WrongAttempts() != len(pattern)-wantCorrect {
		t.Errorf("expected %d wrong, got %d", len(pattern)-wantCorrect, s.WrongAttempts())
	}
	if !s.LastCorrect {
		t.Error("expected last attempt to be recorded as correct")
	}
}

func TestApply_ClampsNegativeInputs(t *testing.T) {
	a := attempt(false)
	a.TimeTakenMs = -50
	a.HintsUsed = -1
	a.RepeatsUsed = -3

	s := stats.QuestionStat{}.Apply(a, time.Now())

	if s.TotalTimeMs != 0 || s.TotalHints != 0 || s.TotalRepeats != 0 {
		t.Errorf("expected negative inputs to clamp to zero, got %+v", s)
	}
}

func TestAccuracyAndAverage(t *testing.T) {
	var empty stats.QuestionStat
	if _, ok := empty.Accuracy(); ok {
		t.Error("expected no accuracy for unseen question")
	}
	if empty.AvgTimeMs() != 0 {
		t.Error("expected zero average time for unseen question")
	}

	s := stats.QuestionStat{TotalAttempts: 4, CorrectAttempts: 3, TotalTimeMs: 10000}
	acc, ok := s.Accuracy()
	if !ok || acc != 0.75 {
		t.Errorf("expected accuracy 0.75, got %v (%v)", acc, ok)
	}
	if s.AvgTimeMs() != 2500 {
		t.Errorf("expected 2500ms average, got %v", s.AvgTimeMs())
	}
}

func TestMap_CloneIsIndependent(t *testing.T) {
	m := stats.Map{"Q1": {ID: "Q1", TotalAttempts: 1}}
	c := m.Clone()
	c["Q1"] = stats.QuestionStat{ID: "Q1", TotalAttempts: 9}
	c["Q2"] = stats.QuestionStat{ID: "Q2"}

	if m["Q1"].TotalAttempts != 1 || len(m) != 1 {
		t.Errorf("expected original map untouched, got %+v", m)
	}
	if len(c.Values()) != 2 {
		t.Errorf("expected 2 values in clone, got %d", len(c.Values()))
	}
	if _, ok := m.Accuracy("missing"); ok {
		t.Error("expected missing question to have no accuracy")
	}
}
