// Package speech provides the text-to-speech sinks the quiz and lesson
// controllers talk through. Real audio playback lives outside this module.
package speech

import (
	"log/slog"
	"sync"
)

// Speaker speaks text and can be silenced. Speak must not block on playback.
type Speaker interface {
	Speak(text string)
	Stop()
}

// Nop discards everything.
type Nop struct{}

func (Nop) Speak(string) {}
func (Nop) Stop()        {}

// LogSpeaker writes every utterance to a structured logger.
type LogSpeaker struct {
	logger *slog.Logger
}

func NewLogSpeaker(logger *slog.Logger) *LogSpeaker {
	return &LogSpeaker{logger: logger}
}

func (s *LogSpeaker) Speak(text string) {
	s.logger.Info("speak", "text", text)
}

func (s *LogSpeaker) Stop() {
	s.logger.Info("speech stopped")
}

// Transcript records utterances so they can be replayed over HTTP or
// asserted in tests. It keeps at most limit lines (0 = unbounded).
type Transcript struct {
	mu      sync.Mutex
	lines   []string
	stops   int
	limit   int
	forward Speaker
}

// NewTranscript returns a recorder that also forwards to next when non-nil.
func NewTranscript(limit int, next Speaker) *Transcript {
	return &Transcript{limit: limit, forward: next}
}

func (t *Transcript) Speak(text string) {
	t.mu.Lock()
	t.lines = append(t.lines, text)
	if t.limit > 0 && len(t.lines) > t.limit {
		t.lines = append([]string(nil), t.lines[len(t.lines)-t.limit:]...)
	}
	t.mu.Unlock()

	if t.forward != nil {
		t.forward.Speak(text)
	}
}

func (t *Transcript) Stop() {
	t.mu.Lock()
	t.stops++
	t.mu.Unlock()

	if t.forward != nil {
		t.forward.Stop()
	}
}

// Lines returns a copy of the recorded utterances, oldest first.
func (t *Transcript) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.lines...)
}

// Last returns the most recent utterance, or "".
func (t *Transcript) Last() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.lines) == 0 {
		return ""
	}
	return t.lines[len(t.lines)-1]
}

// Stops reports how many times Stop was called.
func (t *Transcript) Stops() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stops
}
