package progress

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/remaimber-it/quizengine/internal/domain/lesson"
	"github.com/remaimber-it/quizengine/internal/store"
)

const cursorKeyBase = "lesson_cursor_v1"

func CursorKey(learnerID string) string {
	if learnerID == "" {
		return cursorKeyBase
	}
	return cursorKeyBase + ":" + learnerID
}

// CursorStore remembers the last lesson segment a learner heard.
// Every failure is non-fatal: Load falls back to the start and writes are
// logged and dropped.
type CursorStore struct {
	kv     store.KV
	key    string
	logger *slog.Logger
	now    func() time.Time
}

func NewCursorStore(kv store.KV, key string, logger *slog.Logger) *CursorStore {
	return &CursorStore{kv: kv, key: key, logger: logger, now: time.Now}
}

// Load returns the saved cursor, or false when there is none.
func (c *CursorStore) Load(ctx context.Context) (lesson.Cursor, bool) {
	data, err := c.kv.Get(ctx, c.key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.logger.Warn("failed to read lesson cursor", "key", c.key, "error", err)
		}
		return lesson.Cursor{}, false
	}

	var cur lesson.Cursor
	if err := json.Unmarshal(data, &cur); err != nil || cur.SegmentIndex < 0 {
		c.logger.Warn("stored lesson cursor is corrupt", "key", c.key, "error", err)
		return lesson.Cursor{}, false
	}
	return cur, true
}

func (c *CursorStore) Save(ctx context.Context, segmentIndex int) {
	data, err := json.Marshal(lesson.Cursor{
		SegmentIndex: segmentIndex,
		UpdatedAt:    c.now().UnixMilli(),
	})
	if err != nil {
		c.logger.Error("failed to encode lesson cursor", "error", err)
		return
	}
	if err := c.kv.Set(ctx, c.key, data); err != nil {
		c.logger.Warn("failed to save lesson cursor", "key", c.key, "error", err)
	}
}

// Clear forgets the cursor. Stores without delete support get an empty
// value, which Load treats as corrupt and ignores.
func (c *CursorStore) Clear(ctx context.Context) {
	var err error
	if d, ok := c.kv.(store.Deleter); ok {
		err = d.Delete(ctx, c.key)
		if errors.Is(err, store.ErrNotFound) {
			err = nil
		}
	} else {
		err = c.kv.Set(ctx, c.key, []byte{})
	}
	if err != nil {
		c.logger.Warn("failed to clear lesson cursor", "key", c.key, "error", err)
	}
}
