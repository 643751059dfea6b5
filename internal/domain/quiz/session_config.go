package quiz

import "fmt"

type SessionType string

const (
	SessionPractice      SessionType = "practice"
	SessionTopicDrill    SessionType = "topic_drill"
	SessionQuickRevision SessionType = "quick_revision"
	SessionMockExam      SessionType = "mock_exam"
	SessionWeakArea      SessionType = "weak_area"
)

// ParseSessionType validates a wire value.
func ParseSessionType(s string) (SessionType, error) {
	switch t := SessionType(s); t {
	case SessionPractice, SessionTopicDrill, SessionQuickRevision, SessionMockExam, SessionWeakArea:
		return t, nil
	}
	return "", fmt.Errorf("unknown session type %q", s)
}

// SessionConfig describes which questions a session should draw.
type SessionConfig struct {
	Type     SessionType
	Grade    *int   // nil = any grade
	Category string // "" = any category; required for topic_drill
	Limit    int    // maximum number of questions
}

// DefaultConfig returns a ten-question practice session over the whole bank.
func DefaultConfig() SessionConfig {
	return SessionConfig{
		Type:  SessionPractice,
		Limit: 10,
	}
}

// WithLimit returns a copy of c using limit.
func (c SessionConfig) WithLimit(limit int) SessionConfig {
	c.Limit = limit
	return c
}

// Matches reports whether q passes the grade and category filters.
func (c SessionConfig) Matches(q Question) bool {
	if c.Grade != nil && q.Grade != *c.Grade {
		return false
	}
	if c.Category != "" && q.Category != c.Category {
		return false
	}
	return true
}
