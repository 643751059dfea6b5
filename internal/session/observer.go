package session

import "time"

type EventKind string

const (
	EventSessionStarted    EventKind = "session_started"
	EventQuestionPresented EventKind = "question_presented"
	EventQuestionRepeated  EventKind = "question_repeated"
	EventHint              EventKind = "hint"
	EventHintRefused       EventKind = "hint_refused"
	EventAnswered          EventKind = "answered"
	EventInvalidSelection  EventKind = "invalid_selection"
	EventSessionCompleted  EventKind = "session_completed"
	EventStopped           EventKind = "stopped"
)

// Event is delivered to every observer after a state change.
// Summary is set only for EventSessionCompleted.
type Event struct {
	Kind    EventKind `json:"kind"`
	At      time.Time `json:"at"`
	View    View      `json:"view"`
	Summary *Summary  `json:"summary,omitempty"`
}

// Observer receives controller events. Notify is called with the
// controller lock held and must not call back into the controller.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Notify(e Event) { f(e) }
