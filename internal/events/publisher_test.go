package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remaimber-it/quizengine/internal/events"
	"github.com/remaimber-it/quizengine/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingPublisher captures messages instead of sending them.
type recordingPublisher struct {
	topics []string
	msgs   []*message.Message
	err    error
}

func (r *recordingPublisher) Publish(topic string, msgs ...*message.Message) error {
	if r.err != nil {
		return r.err
	}
	for _, m := range msgs {
		r.topics = append(r.topics, topic)
		r.msgs = append(r.msgs, m)
	}
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func answeredEvent() session.Event {
	return session.Event{
		Kind: session.EventAnswered,
		At:   time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC),
		View: session.View{
			SessionID: "sess-1",
			State:     session.StateAnswerCorrect,
			Status:    session.StatusCorrect,
			Question:  &session.QuestionView{ID: "NET_01"},
			Index:     2,
			Total:     5,
			Correct:   3,
			Answered:  4,
		},
	}
}

func TestForLearner_PublishesOneMessagePerEvent(t *testing.T) {
	rec := &recordingPublisher{}
	obs := events.NewPublisher(rec, "", discardLogger()).ForLearner("amaya")

	obs.Notify(answeredEvent())

	require.Len(t, rec.msgs, 1)
	assert.Equal(t, events.DefaultTopic, rec.topics[0])

	msg := rec.msgs[0]
	assert.Equal(t, "answered", msg.Metadata.Get("event_type"))
	assert.Equal(t, "amaya", msg.Metadata.Get("learner_id"))

	var ev events.SessionEvent
	require.NoError(t, json.Unmarshal(msg.Payload, &ev))
	assert.Equal(t, msg.UUID, ev.ID)
	assert.Equal(t, "NET_01", ev.QuestionID)
	assert.Equal(t, "sess-1", ev.SessionID)
	assert.Equal(t, 3, ev.Correct)
	assert.Equal(t, "answer_correct", ev.State)
}

func TestForLearner_NumbersEventsPerLearner(t *testing.T) {
	rec := &recordingPublisher{}
	pub := events.NewPublisher(rec, "", discardLogger())
	amaya := pub.ForLearner("amaya")
	kofi := pub.ForLearner("kofi")

	amaya.Notify(answeredEvent())
	amaya.Notify(answeredEvent())
	kofi.Notify(answeredEvent())
	amaya.Notify(answeredEvent())

	require.Len(t, rec.msgs, 4)
	var got []uint64
	for _, msg := range rec.msgs {
		var ev events.SessionEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &ev))
		assert.Equal(t, strconv.FormatUint(ev.Seq, 10), msg.Metadata.Get("seq"))
		got = append(got, ev.Seq)
	}
	assert.Equal(t, []uint64{1, 2, 1, 3}, got)
}

func TestForLearner_SwallowsPublishErrors(t *testing.T) {
	rec := &recordingPublisher{err: errors.New("broker down")}
	obs := events.NewPublisher(rec, "t", discardLogger()).ForLearner("amaya")

	assert.NotPanics(t, func() { obs.Notify(answeredEvent()) })
	assert.Empty(t, rec.msgs)
}

func TestGoChannel_RoundTrip(t *testing.T) {
	pubsub := events.NewGoChannel(discardLogger())
	defer pubsub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan events.SessionEvent, 1)
	consumed := make(chan error, 1)
	go func() {
		consumed <- events.Consume(ctx, pubsub, "quiz.test", func(ev events.SessionEvent) error {
			select {
			case received <- ev:
			case <-ctx.Done():
			}
			return nil
		})
	}()

	pub := events.NewPublisher(pubsub, "quiz.test", discardLogger())
	ev := events.SessionEvent{ID: "evt-1", Kind: "session_completed", LearnerID: "amaya",
		Summary: &session.Summary{Correct: 5, Total: 5, Answered: 5}}

	// the subscription is set up asynchronously; retry until it is live
	require.Eventually(t, func() bool {
		if err := pub.Publish(ev); err != nil {
			return false
		}
		select {
		case got := <-received:
			assert.Equal(t, "evt-1", got.ID)
			assert.Equal(t, 5, got.Summary.Correct)
			return true
		case <-time.After(20 * time.Millisecond):
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-consumed:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop after cancel")
	}
}
