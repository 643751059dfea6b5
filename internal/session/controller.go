// Package session runs one adaptive quiz at a time for a single learner:
// it picks questions, narrates them, grades answers, records attempts and
// hands out hints.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/remaimber-it/quizengine/internal/domain/quiz"
	"github.com/remaimber-it/quizengine/internal/domain/stats"
	"github.com/remaimber-it/quizengine/internal/engine"
	"github.com/remaimber-it/quizengine/internal/hint"
	"github.com/remaimber-it/quizengine/internal/id"
	"github.com/remaimber-it/quizengine/internal/speech"
)

var ErrNoActiveQuestion = errors.New("no active question")

// StatsStore is the slice of progress.StatsStore the controller needs.
type StatsStore interface {
	GetAll(ctx context.Context) stats.Map
	UpsertAttempt(ctx context.Context, a stats.Attempt)
}

type Config struct {
	AdvanceDelay  time.Duration // pause after a correct answer; <= 0 advances inline
	IntroDelay    time.Duration // pause between intro and first question; <= 0 presents inline
	RepromptDelay time.Duration // pause before re-reading a missed question; <= 0 re-reads inline
	HintCap       int           // hints per question
}

func DefaultConfig() Config {
	return Config{
		AdvanceDelay:  600 * time.Millisecond,
		IntroDelay:    800 * time.Millisecond,
		RepromptDelay: 700 * time.Millisecond,
		HintCap:       2,
	}
}

const (
	lowLimitCap   = 5
	highLimitStep = 5
	maxLimit      = 40
)

// Deps are the collaborators of a Controller. Nil Selector, Hints,
// Speaker and Logger get harmless defaults.
type Deps struct {
	Bank     *quiz.Bank
	Stats    StatsStore
	Selector *engine.Selector
	Hints    hint.Generator
	Speaker  speech.Speaker
	Logger   *slog.Logger
}

type Option func(*Controller)

// WithClock overrides time.Now for response timing.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller owns all run state; every method is safe for concurrent use
// and user actions are serialised on its mutex.
type Controller struct {
	bank     *quiz.Bank
	stats    StatsStore
	selector *engine.Selector
	hints    hint.Generator
	speaker  speech.Speaker
	logger   *slog.Logger
	cfg      Config
	now      func() time.Time

	mu          sync.Mutex
	observers   []Observer
	run         *run
	timer       *time.Timer
	lastSummary *Summary
}

// run is the state of one started session.
type run struct {
	token      string
	cfg        quiz.SessionConfig
	engagement engine.Result
	questions  []quiz.Question
	state      State

	idx         int
	startedAt   time.Time // response time is measured from here
	presentedAt time.Time // last time the question was spoken
	hints       int
	repeats     int
	lastHint    string
	selected    *int
	status      AnswerStatus

	correct  int
	answered int
}

func New(d Deps, cfg Config, opts ...Option) *Controller {
	if d.Selector == nil {
		d.Selector = engine.NewSelector(nil)
	}
	if d.Hints == nil {
		d.Hints = hint.Disabled{}
	}
	if d.Speaker == nil {
		d.Speaker = speech.Nop{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if cfg.HintCap <= 0 {
		cfg.HintCap = DefaultConfig().HintCap
	}

	c := &Controller{
		bank:     d.Bank,
		stats:    d.Stats,
		selector: d.Selector,
		hints:    d.Hints,
		speaker:  d.Speaker,
		logger:   d.Logger,
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers an observer for every subsequent event.
func (c *Controller) Subscribe(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// View returns the current snapshot.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// LastSummary returns the summary of the most recently completed session.
func (c *Controller) LastSummary() (Summary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastSummary == nil {
		return Summary{}, false
	}
	return *c.lastSummary, true
}

// ============================================================================
// Session lifecycle
// ============================================================================

// StartSession discards any running session and starts a new one.
// A session with nothing to ask completes immediately with a total of zero.
func (c *Controller) StartSession(ctx context.Context, cfg quiz.SessionConfig) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimerLocked()
	r := &run{token: id.GenerateID(), cfg: cfg, state: StateStarting, status: StatusNone}
	c.run = r

	statsMap := c.stats.GetAll(ctx)
	r.engagement = engine.Estimate(statsMap)

	r.cfg = cfg.WithLimit(adjustLimit(cfg.Limit, r.engagement.Level))
	r.questions = c.selector.Select(c.bank.Questions(), r.cfg, statsMap, r.engagement)

	c.logger.Info("quiz session starting",
		"session_id", r.token,
		"type", cfg.Type,
		"engagement", r.engagement.Level,
		"difficulty", r.engagement.Difficulty,
		"requested", cfg.Limit,
		"selected", len(r.questions),
	)

	if len(r.questions) == 0 {
		c.speaker.Speak(msgNoQuestions)
		c.completeLocked()
		return c.viewLocked()
	}

	c.speaker.Speak(introText(r.cfg, len(r.questions), r.engagement.Level))
	c.notifyLocked(EventSessionStarted, nil)

	c.scheduleLocked(c.cfg.IntroDelay, r, StateStarting, c.presentLocked)
	return c.viewLocked()
}

// adjustLimit shortens sessions for struggling learners and lengthens them
// for confident ones.
func adjustLimit(limit int, level engine.Level) int {
	if limit <= 0 {
		return limit
	}
	switch level {
	case engine.LevelLow:
		return min(lowLimitCap, limit)
	case engine.LevelHigh:
		return min(limit+highLimitStep, maxLimit)
	}
	return limit
}

// Stop silences speech. Run state and pending timers are left alone.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.speaker.Stop()
	if c.run != nil {
		if c.run.state == StateAnswerWrong {
			c.stopTimerLocked()
		}
		c.notifyLocked(EventStopped, nil)
	}
}

// ============================================================================
// Question actions
// ============================================================================

// RepeatQuestion speaks the current question again and cancels a pending
// re-read. The response timer keeps running from the first presentation.
func (c *Controller) RepeatQuestion() (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, q, err := c.activeLocked()
	if err != nil {
		return c.viewLocked(), err
	}

	c.stopTimerLocked()
	r.repeats++
	r.presentedAt = c.now()
	c.speaker.Speak(questionText(r.idx+1, q))
	c.notifyLocked(EventQuestionRepeated, nil)
	return c.viewLocked(), nil
}

type HintSource string

const (
	HintGenerated HintSource = "generated"
	HintBundled   HintSource = "bundled"
	HintGeneric   HintSource = "generic"
)

type HintResult struct {
	Text      string     `json:"text"`
	Source    HintSource `json:"source,omitempty"`
	HintsUsed int        `json:"hints_used"`
	Refused   bool       `json:"refused"`
	Stale     bool       `json:"stale"`
}

// SpeakHint consumes one hint for the current question. Generation runs
// without the lock; if the learner has moved on by the time it returns the
// hint is reported as stale and not spoken.
func (c *Controller) SpeakHint(ctx context.Context) (HintResult, error) {
	c.mu.Lock()
	r, q, err := c.activeLocked()
	if err != nil {
		c.mu.Unlock()
		return HintResult{}, err
	}
	if r.hints >= c.cfg.HintCap {
		c.speaker.Speak(msgHintsCapped)
		c.notifyLocked(EventHintRefused, nil)
		used := r.hints
		c.mu.Unlock()
		return HintResult{Text: msgHintsCapped, HintsUsed: used, Refused: true}, nil
	}
	c.stopTimerLocked()
	r.hints++
	token, idx, used := r.token, r.idx, r.hints
	c.mu.Unlock()

	text, source := c.generateHint(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()

	res := HintResult{Text: text, Source: source, HintsUsed: used}
	if c.run == nil || c.run.token != token || c.run.idx != idx || !c.run.state.answerable() {
		c.logger.Debug("discarding stale hint", "session_id", token, "question_id", q.ID)
		res.Stale = true
		return res, nil
	}

	c.run.lastHint = text
	c.speaker.Speak(msgHintPrefix + text)
	c.notifyLocked(EventHint, nil)
	return res, nil
}

func (c *Controller) generateHint(ctx context.Context, q quiz.Question) (string, HintSource) {
	text, err := c.hints.GenerateHint(ctx, hint.BuildPrompt(q))
	if err == nil && text != "" {
		return text, HintGenerated
	}
	if err != nil && !errors.Is(err, hint.ErrDisabled) {
		c.logger.Warn("hint generation failed, using fallback",
			"question_id", q.ID,
			"error", err,
		)
	}
	if q.HintTopic != "" {
		return hint.Fallback(q), HintBundled
	}
	return hint.GenericHint, HintGeneric
}

type AnswerResult struct {
	Status  AnswerStatus `json:"status"`
	Correct bool         `json:"correct"`
	View    View         `json:"view"`
}

// Answer grades the option at optionIndex. An index outside the options is
// an invalid selection and changes nothing.
func (c *Controller) Answer(ctx context.Context, optionIndex int) (AnswerResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, q, err := c.activeLocked()
	if err != nil {
		return AnswerResult{View: c.viewLocked()}, err
	}

	selected, ok := q.Option(optionIndex)
	if !ok {
		c.speaker.Speak(msgInvalid)
		c.notifyLocked(EventInvalidSelection, nil)
		return AnswerResult{Status: StatusInvalid, View: c.viewLocked()}, nil
	}

	elapsed := c.now().Sub(r.startedAt).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}
	correct := q.IsCorrect(selected)

	c.stats.UpsertAttempt(ctx, stats.Attempt{
		QuestionID:  q.ID,
		Category:    q.Category,
		Grade:       q.Grade,
		IsCorrect:   correct,
		TimeTakenMs: elapsed,
		HintsUsed:   r.hints,
		RepeatsUsed: r.repeats,
	})

	r.answered++
	r.selected = &optionIndex

	if !correct {
		r.state = StateAnswerWrong
		r.status = StatusWrong
		c.speaker.Speak(wrongText(q, r.engagement.Level))
		c.notifyLocked(EventAnswered, nil)

		view := c.viewLocked()
		c.scheduleLocked(c.cfg.RepromptDelay, r, StateAnswerWrong, func() {
			c.speaker.Speak(questionText(r.idx+1, q))
		})
		return AnswerResult{Status: StatusWrong, View: view}, nil
	}

	r.correct++
	r.state = StateAnswerCorrect
	r.status = StatusCorrect
	c.speaker.Speak(msgCorrect)
	c.notifyLocked(EventAnswered, nil)

	view := c.viewLocked()
	c.scheduleLocked(c.cfg.AdvanceDelay, r, StateAnswerCorrect, c.advanceLocked)
	return AnswerResult{Status: StatusCorrect, Correct: true, View: view}, nil
}

// ============================================================================
// Internal transitions (caller holds c.mu)
// ============================================================================

func (c *Controller) activeLocked() (*run, quiz.Question, error) {
	r := c.run
	if r == nil || !r.state.answerable() || r.idx >= len(r.questions) {
		return nil, quiz.Question{}, ErrNoActiveQuestion
	}
	return r, r.questions[r.idx], nil
}

func (c *Controller) presentLocked() {
	r := c.run
	q := r.questions[r.idx]

	now := c.now()
	r.state = StateQuestionActive
	r.startedAt = now
	r.presentedAt = now
	r.hints = 0
	r.repeats = 0
	r.lastHint = ""
	r.selected = nil
	r.status = StatusNone

	c.speaker.Speak(questionText(r.idx+1, q))
	c.notifyLocked(EventQuestionPresented, nil)
}

func (c *Controller) advanceLocked() {
	r := c.run
	r.idx++
	if r.idx >= len(r.questions) {
		c.completeLocked()
		return
	}
	c.presentLocked()
}

func (c *Controller) completeLocked() {
	r := c.run
	r.state = StateSessionComplete

	summary := &Summary{
		SessionID: r.token,
		Correct:   r.correct,
		Total:     len(r.questions),
		Answered:  r.answered,
		EndedAt:   c.now(),
	}
	c.lastSummary = summary

	if summary.Total > 0 {
		c.speaker.Speak(completionText(summary.Correct, summary.Total))
	}
	c.notifyLocked(EventSessionCompleted, summary)

	c.logger.Info("quiz session completed",
		"session_id", r.token,
		"correct", summary.Correct,
		"total", summary.Total,
		"answered", summary.Answered,
	)
	c.run = nil
}

// scheduleLocked runs fn after delay if the session is still r, on the same
// question, in the expected state. A non-positive delay runs fn now.
func (c *Controller) scheduleLocked(delay time.Duration, r *run, want State, fn func()) {
	c.stopTimerLocked()
	if delay <= 0 {
		fn()
		return
	}

	token, idx := r.token, r.idx
	c.timer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		cur := c.run
		if cur == nil || cur.token != token || cur.idx != idx || cur.state != want {
			return
		}
		c.timer = nil
		fn()
	})
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) notifyLocked(kind EventKind, summary *Summary) {
	if len(c.observers) == 0 {
		return
	}
	e := Event{Kind: kind, At: c.now(), View: c.viewLocked(), Summary: summary}
	for _, o := range c.observers {
		o.Notify(e)
	}
}

func (c *Controller) viewLocked() View {
	r := c.run
	if r == nil {
		return View{State: StateIdle, Status: StatusNone}
	}

	eng := r.engagement
	eng.WeakCategories = append([]string(nil), eng.WeakCategories...)
	v := View{
		SessionID:   r.token,
		State:       r.state,
		Type:        r.cfg.Type,
		Index:       r.idx,
		Total:       len(r.questions),
		StartedAt:   r.startedAt,
		Hint:        r.lastHint,
		HintsUsed:   r.hints,
		RepeatsUsed: r.repeats,
		Status:      r.status,
		Correct:     r.correct,
		Answered:    r.answered,
		Engagement:  &eng,
	}
	if r.selected != nil {
		sel := *r.selected
		v.Selected = &sel
	}
	if r.idx < len(r.questions) && r.state != StateStarting {
		v.Question = newQuestionView(r.questions[r.idx])
	}
	return v
}
