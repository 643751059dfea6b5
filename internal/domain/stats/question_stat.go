package stats

import "time"

// QuestionStat tracks a learner's attempt history for a single question.
type QuestionStat struct {
	ID              string `json:"id"`
	Category        string `json:"category"`
	Grade           int    `json:"grade"`
	TotalAttempts   int    `json:"totalAttempts"`
	CorrectAttempts int    `json:"correctAttempts"`
	TotalTimeMs     int64  `json:"totalTimeMs"`
	TotalHints      int    `json:"totalHints"`
	TotalRepeats    int    `json:"totalRepeats"`
	LastAnsweredAt  int64  `json:"lastAnsweredAt"` // unix millis
	LastCorrect     bool   `json:"lastCorrect"`
}

// Map is keyed by question id.
type Map map[string]QuestionStat

// Attempt is one answered question as reported by the session controller.
type Attempt struct {
	QuestionID  string
	Category    string
	Grade       int
	IsCorrect   bool
	TimeTakenMs int64
	HintsUsed   int
	RepeatsUsed int
}

// Apply folds an attempt into the stat. A zero stat becomes the first attempt.
func (s QuestionStat) Apply(a Attempt, at time.Time) QuestionStat {
	if s.TotalAttempts == 0 {
		s.ID = a.QuestionID
		s.Category = a.Category
		s.Grade = a.Grade
	}

	s.TotalAttempts++
	if a.IsCorrect {
		s.CorrectAttempts++
	}
	s.TotalTimeMs += nonNegative64(a.TimeTakenMs)
	s.TotalHints += nonNegative(a.HintsUsed)
	s.TotalRepeats += nonNegative(a.RepeatsUsed)
	s.LastAnsweredAt = at.UnixMilli()
	s.LastCorrect = a.IsCorrect
	return s
}

// WrongAttempts is the number of incorrect attempts.
func (s QuestionStat) WrongAttempts() int {
	return s.TotalAttempts - s.CorrectAttempts
}

// Accuracy returns correct/total and false when there is no attempt yet.
func (s QuestionStat) Accuracy() (float64, bool) {
	if s.TotalAttempts == 0 {
		return 0, false
	}
	return float64(s.CorrectAttempts) / float64(s.TotalAttempts), true
}

// AvgTimeMs is the mean response time across attempts.
func (s QuestionStat) AvgTimeMs() float64 {
	if s.TotalAttempts == 0 {
		return 0
	}
	return float64(s.TotalTimeMs) / float64(s.TotalAttempts)
}

// Valid checks the counter invariants.
func (s QuestionStat) Valid() bool {
	return s.TotalAttempts >= 0 &&
		s.CorrectAttempts >= 0 &&
		s.CorrectAttempts <= s.TotalAttempts &&
		s.TotalTimeMs >= 0 &&
		s.TotalHints >= 0 &&
		s.TotalRepeats >= 0
}

// Values returns the stats as a slice, in no particular order.
func (m Map) Values() []QuestionStat {
	out := make([]QuestionStat, 0, len(m))
	for _, s := range m {
		out = append(out, s)
	}
	return out
}

// Clone returns an independent copy of the map.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Accuracy looks up a question and returns its accuracy, if seen.
func (m Map) Accuracy(questionID string) (float64, bool) {
	s, ok := m[questionID]
	if !ok {
		return 0, false
	}
	return s.Accuracy()
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func nonNegative64(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
