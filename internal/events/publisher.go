// Package events fans quiz session events out over a Watermill pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/remaimber-it/quizengine/internal/id"
	"github.com/remaimber-it/quizengine/internal/session"
)

const (
	DefaultTopic = "quiz.session.events"
	eventVersion = "1"
	eventSource  = "quizengine"
)

// SessionEvent is the wire form of a session.Event. Delivery order is not
// guaranteed; Seq increases by one per event for a learner, starting at 1,
// and is the field to order a learner's events by.
type SessionEvent struct {
	ID         string           `json:"id"`
	Kind       string           `json:"kind"`
	LearnerID  string           `json:"learner_id"`
	Seq        uint64           `json:"seq"`
	SessionID  string           `json:"session_id,omitempty"`
	QuestionID string           `json:"question_id,omitempty"`
	State      string           `json:"state"`
	Status     string           `json:"status"`
	Index      int              `json:"index"`
	Total      int              `json:"total"`
	Correct    int              `json:"correct"`
	Answered   int              `json:"answered"`
	HintsUsed  int              `json:"hints_used"`
	Summary    *session.Summary `json:"summary,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}

func fromSession(learnerID string, e session.Event) SessionEvent {
	out := SessionEvent{
		ID:        id.GenerateID(),
		Kind:      string(e.Kind),
		LearnerID: learnerID,
		SessionID: e.View.SessionID,
		State:     string(e.View.State),
		Status:    string(e.View.Status),
		Index:     e.View.Index,
		Total:     e.View.Total,
		Correct:   e.View.Correct,
		Answered:  e.View.Answered,
		HintsUsed: e.View.HintsUsed,
		Summary:   e.Summary,
		Timestamp: e.At,
	}
	if e.View.Question != nil {
		out.QuestionID = e.View.Question.ID
	}
	return out
}

// NewGoChannel returns the in-process pub/sub used when no broker is configured.
// Publish does not wait for subscribers, so messages may arrive out of order.
func NewGoChannel(logger *slog.Logger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(logger))
}

// Publisher turns controller events into Watermill messages.
type Publisher struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
}

func NewPublisher(pub message.Publisher, topic string, logger *slog.Logger) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{publisher: pub, topic: topic, logger: logger}
}

// Publish sends one event. The message UUID is the event id.
func (p *Publisher) Publish(ev SessionEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal session event: %w", err)
	}

	msg := message.NewMessage(ev.ID, payload)
	msg.Metadata.Set("event_type", ev.Kind)
	msg.Metadata.Set("learner_id", ev.LearnerID)
	msg.Metadata.Set("seq", strconv.FormatUint(ev.Seq, 10))
	msg.Metadata.Set("source", eventSource)
	msg.Metadata.Set("version", eventVersion)
	msg.Metadata.Set("timestamp", ev.Timestamp.Format(time.RFC3339))

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish session event: %w", err)
	}
	return nil
}

// ForLearner returns an observer that tags every event with learnerID and
// the next sequence number. Publish failures are logged and never reach the
// controller.
func (p *Publisher) ForLearner(learnerID string) session.Observer {
	var seq atomic.Uint64
	return session.ObserverFunc(func(e session.Event) {
		ev := fromSession(learnerID, e)
		ev.Seq = seq.Add(1)
		if err := p.Publish(ev); err != nil {
			p.logger.Warn("session event dropped",
				"learner_id", learnerID,
				"event_type", ev.Kind,
				"error", err,
			)
		}
	})
}

// Consume delivers every event on topic to handle until ctx is done.
// Messages whose handler fails are nacked. Events reach handle in arrival
// order, which need not match Seq.
func Consume(ctx context.Context, sub message.Subscriber, topic string, handle func(SessionEvent) error) error {
	if topic == "" {
		topic = DefaultTopic
	}
	msgs, err := sub.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var ev SessionEvent
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				msg.Ack() // poison message, never retry
				continue
			}
			if err := handle(ev); err != nil {
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}
}
