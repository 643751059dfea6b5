package lessonplayer_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/remaimber-it/quizengine/internal/domain/lesson"
	"github.com/remaimber-it/quizengine/internal/lessonplayer"
	"github.com/remaimber-it/quizengine/internal/speech"
)

type memCursor struct {
	saved   *lesson.Cursor
	saves   int
	cleared int
}

func (m *memCursor) Load(context.Context) (lesson.Cursor, bool) {
	if m.saved == nil {
		return lesson.Cursor{}, false
	}
	return *m.saved, true
}

func (m *memCursor) Save(_ context.Context, idx int) {
	m.saves++
	m.saved = &lesson.Cursor{SegmentIndex: idx}
}

func (m *memCursor) Clear(context.Context) {
	m.cleared++
	m.saved = nil
}

var segments = []lesson.Segment{
	{ID: "S1", Type: "intro", Text: "Welcome."},
	{ID: "S2", Type: "definition", Text: "A network connects devices."},
	{ID: "S3", Type: "recap", Text: "That is all."},
}

func newPlayer(cur *memCursor) (*lessonplayer.Player, *speech.Transcript) {
	tr := speech.NewTranscript(0, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return lessonplayer.New(segments, cur, tr, logger), tr
}

func TestPlayer_StartFromBeginning(t *testing.T) {
	cur := &memCursor{}
	p, tr := newPlayer(cur)

	pos, err := p.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pos.Index != 0 || !pos.AtStart || pos.Total != 3 {
		t.Errorf("unexpected position %+v", pos)
	}
	if tr.Last() != "Welcome." {
		t.Errorf("expected first segment spoken, got %q", tr.Last())
	}
	if cur.saved == nil || cur.saved.SegmentIndex != 0 {
		t.Errorf("expected cursor saved at 0, got %+v", cur.saved)
	}
}

func TestPlayer_ResumesFromCursor(t *testing.T) {
	cur := &memCursor{saved: &lesson.Cursor{SegmentIndex: 1}}
	p, tr := newPlayer(cur)

	pos, _ := p.Start(context.Background())

	if pos.Index != 1 || tr.Last() != "A network connects devices." {
		t.Errorf("expected resume at S2, got %+v / %q", pos, tr.Last())
	}
}

func TestPlayer_ResumeClampsOutOfRangeCursor(t *testing.T) {
	cur := &memCursor{saved: &lesson.Cursor{SegmentIndex: 40}}
	p, _ := newPlayer(cur)

	pos, _ := p.Start(context.Background())

	if pos.Index != 2 || !pos.AtEnd {
		t.Errorf("expected clamp to last segment, got %+v", pos)
	}
}

func TestPlayer_NavigateAndRepeat(t *testing.T) {
	cur := &memCursor{}
	p, tr := newPlayer(cur)
	ctx := context.Background()
	p.Start(ctx)

	p.Next(ctx)
	p.Next(ctx)
	pos, _ := p.Next(ctx)
	if pos.Index != 2 || tr.Last() != "That is all." {
		t.Errorf("expected to stay on last segment, got %+v", pos)
	}

	pos, _ = p.Prev(ctx)
	if pos.Index != 1 || cur.saved.SegmentIndex != 1 {
		t.Errorf("expected prev to S2 and saved, got %+v / %+v", pos, cur.saved)
	}

	saves := cur.saves
	pos, _ = p.Repeat(ctx)
	if pos.Index != 1 || tr.Last() != "A network connects devices." {
		t.Errorf("expected repeat of S2, got %+v", pos)
	}
	if cur.saves != saves {
		t.Error("repeat should not rewrite the cursor")
	}
}

func TestPlayer_StopAndReset(t *testing.T) {
	cur := &memCursor{}
	p, tr := newPlayer(cur)
	ctx := context.Background()
	p.Start(ctx)
	p.Next(ctx)

	p.Stop()
	if tr.Stops() != 1 {
		t.Errorf("expected one stop, got %d", tr.Stops())
	}

	pos := p.Reset(ctx)
	if pos.Index != 0 || cur.cleared != 1 || cur.saved != nil {
		t.Errorf("expected reset to 0 and cleared cursor, got %+v", pos)
	}
}

func TestPlayer_Empty(t *testing.T) {
	p := lessonplayer.New(nil, &memCursor{}, speech.Nop{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	if _, err := p.Start(ctx); !errors.Is(err, lessonplayer.ErrNoSegments) {
		t.Errorf("expected ErrNoSegments from Start, got %v", err)
	}
	if _, err := p.Next(ctx); !errors.Is(err, lessonplayer.ErrNoSegments) {
		t.Errorf("expected ErrNoSegments from Next, got %v", err)
	}
	if _, err := p.Repeat(ctx); !errors.Is(err, lessonplayer.ErrNoSegments) {
		t.Errorf("expected ErrNoSegments from Repeat, got %v", err)
	}
}
