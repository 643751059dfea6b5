// Package lessonplayer narrates lesson segments in course order and
// remembers where each learner stopped.
package lessonplayer

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/remaimber-it/quizengine/internal/domain/lesson"
	"github.com/remaimber-it/quizengine/internal/speech"
)

var ErrNoSegments = errors.New("lesson has no segments")

// CursorStore is satisfied by *progress.CursorStore.
type CursorStore interface {
	Load(ctx context.Context) (lesson.Cursor, bool)
	Save(ctx context.Context, segmentIndex int)
	Clear(ctx context.Context)
}

// Position describes the segment under the cursor.
type Position struct {
	Index   int             `json:"index"`
	Total   int             `json:"total"`
	Segment *lesson.Segment `json:"segment,omitempty"`
	AtStart bool            `json:"at_start"`
	AtEnd   bool            `json:"at_end"`
}

type Player struct {
	cursor  CursorStore
	speaker speech.Speaker
	logger  *slog.Logger

	mu  sync.Mutex
	seq *lesson.Sequencer
}

func New(segments []lesson.Segment, cursor CursorStore, speaker speech.Speaker, logger *slog.Logger) *Player {
	return &Player{
		cursor:  cursor,
		speaker: speaker,
		logger:  logger,
		seq:     lesson.NewSequencer(segments),
	}
}

// Start resumes from the saved cursor, or the first segment.
func (p *Player) Start(ctx context.Context) (Position, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.seq.Total() == 0 {
		return Position{}, ErrNoSegments
	}
	if cur, ok := p.cursor.Load(ctx); ok {
		p.seq.Seek(cur.SegmentIndex)
		p.logger.Debug("resuming lesson", "segment_index", p.seq.Index())
	}
	return p.speakAndSaveLocked(ctx, true), nil
}

func (p *Player) Next(ctx context.Context) (Position, error) {
	return p.move(ctx, (*lesson.Sequencer).Next)
}

func (p *Player) Prev(ctx context.Context) (Position, error) {
	return p.move(ctx, (*lesson.Sequencer).Prev)
}

// Repeat speaks the current segment again without moving.
func (p *Player) Repeat(ctx context.Context) (Position, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.seq.Total() == 0 {
		return Position{}, ErrNoSegments
	}
	return p.speakAndSaveLocked(ctx, false), nil
}

func (p *Player) Stop() {
	p.speaker.Stop()
}

// Reset rewinds to the first segment and forgets the saved cursor.
func (p *Player) Reset(ctx context.Context) Position {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq.Seek(0)
	p.cursor.Clear(ctx)
	return p.positionLocked()
}

func (p *Player) Position() Position {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

func (p *Player) move(ctx context.Context, step func(*lesson.Sequencer) (lesson.Segment, bool)) (Position, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := step(p.seq); !ok {
		return Position{}, ErrNoSegments
	}
	return p.speakAndSaveLocked(ctx, true), nil
}

func (p *Player) speakAndSaveLocked(ctx context.Context, save bool) Position {
	if seg, ok := p.seq.Current(); ok {
		p.speaker.Speak(seg.Text)
	}
	if save {
		p.cursor.Save(ctx, p.seq.Index())
	}
	return p.positionLocked()
}

func (p *Player) positionLocked() Position {
	pos := Position{
		Index:   p.seq.Index(),
		Total:   p.seq.Total(),
		AtStart: p.seq.Index() == 0,
		AtEnd:   p.seq.Total() == 0 || p.seq.Index() == p.seq.Total()-1,
	}
	if seg, ok := p.seq.Current(); ok {
		pos.Segment = &seg
	}
	return pos
}
