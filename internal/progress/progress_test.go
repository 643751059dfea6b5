package progress_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/remaimber-it/quizengine/internal/domain/stats"
	"github.com/remaimber-it/quizengine/internal/progress"
	"github.com/remaimber-it/quizengine/internal/store"
)

// memKV is an in-memory store.KV whose reads and writes can be made to fail.
type memKV struct {
	mu      sync.Mutex
	data    map[string][]byte
	getErr  error
	setErr  error
	setCall int
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCall++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newStore(kv store.KV) *progress.StatsStore {
	return progress.NewStatsStore(kv, progress.StatsKey(""), discardLogger(),
		progress.WithClock(func() time.Time { return fixedNow }))
}

func TestStatsKey(t *testing.T) {
	if progress.StatsKey("") != "quiz_stats_v1" {
		t.Errorf("unexpected bare key %q", progress.StatsKey(""))
	}
	if progress.StatsKey("amaya") != "quiz_stats_v1:amaya" {
		t.Errorf("unexpected learner key %q", progress.StatsKey("amaya"))
	}
}

func TestStatsStore_EmptyWhenAbsent(t *testing.T) {
	s := newStore(newMemKV())

	if got := s.GetAll(context.Background()); len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
}

func TestStatsStore_UpsertCreatesAndAccumulates(t *testing.T) {
	kv := newMemKV()
	s := newStore(kv)
	ctx := context.Background()

	s.UpsertAttempt(ctx, stats.Attempt{QuestionID: "Q1", Category: "Networks", Grade: 10,
		IsCorrect: true, TimeTakenMs: 4000, HintsUsed: 1})
	s.UpsertAttempt(ctx, stats.Attempt{QuestionID: "Q1", Category: "Networks", Grade: 10,
		IsCorrect: false, TimeTakenMs: 6000, RepeatsUsed: 2})

	st := s.GetAll(ctx)["Q1"]
	if st.TotalAttempts != 2 || st.CorrectAttempts != 1 {
		t.Errorf("expected 2 attempts / 1 correct, got %d / %d", st.TotalAttempts, st.CorrectAttempts)
	}
	if st.TotalTimeMs != 10000 || st.TotalHints != 1 || st.TotalRepeats != 2 {
		t.Errorf("unexpected totals: %+v", st)
	}
	if st.LastCorrect {
		t.Error("expected lastCorrect false after a wrong answer")
	}
	if st.LastAnsweredAt != fixedNow.UnixMilli() {
		t.Errorf("expected LastAnsweredAt %d, got %d", fixedNow.UnixMilli(), st.LastAnsweredAt)
	}

	var persisted stats.Map
	if err := json.Unmarshal(kv.data["quiz_stats_v1"], &persisted); err != nil {
		t.Fatalf("persisted data is not JSON: %v", err)
	}
	if persisted["Q1"].TotalAttempts != 2 {
		t.Errorf("expected persisted attempts 2, got %d", persisted["Q1"].TotalAttempts)
	}
}

func TestStatsStore_ReloadsFromKV(t *testing.T) {
	kv := newMemKV()
	ctx := context.Background()

	newStore(kv).UpsertAttempt(ctx, stats.Attempt{QuestionID: "Q1", IsCorrect: true})

	fresh := newStore(kv)
	if got := fresh.GetAll(ctx)["Q1"].CorrectAttempts; got != 1 {
		t.Errorf("expected reloaded correct attempts 1, got %d", got)
	}
}

func TestStatsStore_CorruptDataIsEmpty(t *testing.T) {
	kv := newMemKV()
	kv.data["quiz_stats_v1"] = []byte("{not json")
	s := newStore(kv)
	ctx := context.Background()

	if got := s.GetAll(ctx); len(got) != 0 {
		t.Fatalf("expected empty map for corrupt data, got %v", got)
	}

	s.UpsertAttempt(ctx, stats.Attempt{QuestionID: "Q9", IsCorrect: true})
	if got := s.GetAll(ctx); len(got) != 1 {
		t.Errorf("expected corrupt data to be replaced, got %v", got)
	}
}

func TestStatsStore_DropsInvalidEntries(t *testing.T) {
	kv := newMemKV()
	kv.data["quiz_stats_v1"] = []byte(`{
		"ok":  {"id":"ok","totalAttempts":2,"correctAttempts":1},
		"bad": {"id":"bad","totalAttempts":1,"correctAttempts":3}
	}`)

	got := newStore(kv).GetAll(context.Background())
	if _, ok := got["bad"]; ok {
		t.Error("expected invalid stat to be dropped")
	}
	if _, ok := got["ok"]; !ok {
		t.Error("expected valid stat to be kept")
	}
}

func TestStatsStore_WriteFailureKeepsMemory(t *testing.T) {
	kv := newMemKV()
	kv.setErr = errors.New("disk full")
	s := newStore(kv)
	ctx := context.Background()

	s.UpsertAttempt(ctx, stats.Attempt{QuestionID: "Q1", IsCorrect: true})

	if kv.setCall != 1 {
		t.Errorf("expected one write attempt, got %d", kv.setCall)
	}
	if got := s.GetAll(ctx)["Q1"].TotalAttempts; got != 1 {
		t.Errorf("expected in-memory attempt to survive write failure, got %d", got)
	}
}

func TestStatsStore_ReadFailureRetries(t *testing.T) {
	kv := newMemKV()
	kv.data["quiz_stats_v1"] = []byte(`{"Q1":{"id":"Q1","totalAttempts":1,"correctAttempts":1}}`)
	kv.getErr = errors.New("timeout")
	s := newStore(kv)
	ctx := context.Background()

	if got := s.GetAll(ctx); len(got) != 0 {
		t.Fatalf("expected empty map on read failure, got %v", got)
	}

	kv.getErr = nil
	if got := s.GetAll(ctx); len(got) != 1 {
		t.Errorf("expected stats after read recovers, got %v", got)
	}
}

func TestStatsStore_ReadFailureDoesNotOverwriteHistory(t *testing.T) {
	kv := newMemKV()
	kv.data["quiz_stats_v1"] = []byte(`{
		"Q1":{"id":"Q1","totalAttempts":7,"correctAttempts":5},
		"Q2":{"id":"Q2","totalAttempts":2,"correctAttempts":0}}`)
	kv.getErr = errors.New("timeout")
	s := newStore(kv)
	ctx := context.Background()

	s.UpsertAttempt(ctx, stats.Attempt{QuestionID: "Q3", IsCorrect: true})
	s.UpsertAttempt(ctx, stats.Attempt{QuestionID: "Q1", IsCorrect: true})

	if kv.setCall != 0 {
		t.Fatalf("expected no write while stats are unreadable, got %d", kv.setCall)
	}
	if got := s.GetAll(ctx); got["Q3"].TotalAttempts != 1 {
		t.Errorf("expected deferred attempt to be visible in memory, got %v", got)
	}

	kv.getErr = nil
	got := s.GetAll(ctx)
	if len(got) != 3 {
		t.Fatalf("expected stored and deferred stats merged, got %v", got)
	}
	if got["Q1"].TotalAttempts != 8 || got["Q1"].CorrectAttempts != 6 {
		t.Errorf("expected Q1 history plus replayed attempt, got %+v", got["Q1"])
	}

	var persisted stats.Map
	if err := json.Unmarshal(kv.data["quiz_stats_v1"], &persisted); err != nil {
		t.Fatalf("stored stats unreadable: %v", err)
	}
	if len(persisted) != 3 || persisted["Q2"].TotalAttempts != 2 || persisted["Q3"].TotalAttempts != 1 {
		t.Errorf("expected merged map persisted, got %v", persisted)
	}

	fresh := newStore(kv)
	if n := len(fresh.GetAll(ctx)); n != 3 {
		t.Errorf("expected 3 stats after reload, got %d", n)
	}
}

func TestStatsStore_GetAllReturnsCopy(t *testing.T) {
	s := newStore(newMemKV())
	ctx := context.Background()
	s.UpsertAttempt(ctx, stats.Attempt{QuestionID: "Q1"})

	m := s.GetAll(ctx)
	delete(m, "Q1")

	if _, ok := s.GetAll(ctx)["Q1"]; !ok {
		t.Error("mutating the returned map must not affect the store")
	}
}

func TestStatsStore_IgnoresAttemptWithoutID(t *testing.T) {
	kv := newMemKV()
	s := newStore(kv)

	s.UpsertAttempt(context.Background(), stats.Attempt{IsCorrect: true})

	if kv.setCall != 0 {
		t.Errorf("expected no write, got %d", kv.setCall)
	}
}

func TestCursorStore_RoundTrip(t *testing.T) {
	kv := newMemKV()
	c := progress.NewCursorStore(kv, progress.CursorKey("amaya"), discardLogger())
	ctx := context.Background()

	if _, ok := c.Load(ctx); ok {
		t.Fatal("expected no cursor initially")
	}

	c.Save(ctx, 4)
	cur, ok := c.Load(ctx)
	if !ok || cur.SegmentIndex != 4 {
		t.Errorf("expected cursor at 4, got %+v (ok=%v)", cur, ok)
	}
	if _, stored := kv.data["lesson_cursor_v1:amaya"]; !stored {
		t.Error("expected cursor under learner key")
	}
}

func TestCursorStore_ClearWithoutDeleter(t *testing.T) {
	kv := newMemKV()
	c := progress.NewCursorStore(kv, progress.CursorKey(""), discardLogger())
	ctx := context.Background()

	c.Save(ctx, 2)
	c.Clear(ctx)

	if _, ok := c.Load(ctx); ok {
		t.Error("expected cleared cursor to be ignored")
	}
}

func TestCursorStore_CorruptIsIgnored(t *testing.T) {
	kv := newMemKV()
	kv.data["lesson_cursor_v1"] = []byte(`{"segmentIndex":-3}`)
	c := progress.NewCursorStore(kv, progress.CursorKey(""), discardLogger())

	if _, ok := c.Load(context.Background()); ok {
		t.Error("expected negative index to be rejected")
	}
}
