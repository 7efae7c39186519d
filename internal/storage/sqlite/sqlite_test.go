package sqlite

import (
	"clipboard-history/internal/storage"
	"clipboard-history/pkg/types"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tickClock advances one millisecond per reading so creation order is strict.
type tickClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func setupTestDB(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := New(storage.Config{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err, "failed to create storage")
	t.Cleanup(func() { _ = store.Close() })

	clock := &tickClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	store.history.now = clock.Now

	return store
}

func contents(entries []types.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Content
	}
	return out
}

func TestHistory_BasicOperations(t *testing.T) {
	store := setupTestDB(t)
	h := store.History()
	ctx := context.Background()

	id, err := h.Insert(ctx, "test content", types.KindText)
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := h.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "test content", got.Content)
	assert.Equal(t, types.KindText, got.Kind)
	assert.False(t, got.Pinned)

	entries, err := h.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, h.Delete(ctx, id))
	_, err = h.Get(ctx, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestHistory_Deduplication(t *testing.T) {
	store := setupTestDB(t)
	h := store.History()
	ctx := context.Background()

	first, err := h.Insert(ctx, "foo", types.KindText)
	require.NoError(t, err)
	_, err = h.Insert(ctx, "bar", types.KindText)
	require.NoError(t, err)
	second, err := h.Insert(ctx, "foo", types.KindText)
	require.NoError(t, err)

	assert.Greater(t, second, first, "re-insert gets a fresh identifier")

	entries, err := h.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"foo", "bar"}, contents(entries))

	// same content with a different kind is a distinct entry
	_, err = h.Insert(ctx, "foo", types.KindImage)
	require.NoError(t, err)
	entries, err = h.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestHistory_DuplicateResetsPin(t *testing.T) {
	store := setupTestDB(t)
	h := store.History()
	ctx := context.Background()

	id, err := h.Insert(ctx, "keep", types.KindText)
	require.NoError(t, err)
	require.NoError(t, h.TogglePin(ctx, id))

	_, err = h.Insert(ctx, "keep", types.KindText)
	require.NoError(t, err)

	entries, err := h.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Pinned)
}

func TestHistory_Retention(t *testing.T) {
	store := setupTestDB(t)
	h := store.History()
	ctx := context.Background()

	require.NoError(t, h.EnforceRetention(ctx, 2))
	for _, c := range []string{"a", "b", "c"} {
		_, err := h.Insert(ctx, c, types.KindText)
		require.NoError(t, err)
	}

	entries, err := h.List(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, contents(entries))
}

func TestHistory_RetentionIgnoresPinned(t *testing.T) {
	store := setupTestDB(t)
	h := store.History()
	ctx := context.Background()

	x, err := h.Insert(ctx, "x", types.KindText)
	require.NoError(t, err)
	require.NoError(t, h.TogglePin(ctx, x))

	require.NoError(t, h.EnforceRetention(ctx, 0))
	_, err = h.Insert(ctx, "y", types.KindText)
	require.NoError(t, err)

	entries, err := h.List(ctx, 100)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "x", entries[0].Content)
	assert.True(t, entries[0].Pinned)

	// default limit with a zero cap still shows the pinned entry
	entries, err = h.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, contents(entries))
}

func TestHistory_CapShrinkKeepsPinned(t *testing.T) {
	store := setupTestDB(t)
	h := store.History()
	ctx := context.Background()

	var ids []uint64
	for i := 0; i < 6; i++ {
		id, err := h.Insert(ctx, fmt.Sprintf("item %d", i), types.KindText)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	// pin the oldest
	require.NoError(t, h.TogglePin(ctx, ids[0]))

	require.NoError(t, h.EnforceRetention(ctx, 2))
	assert.Equal(t, 2, h.Cap())

	entries, err := h.List(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"item 0", "item 5", "item 4"}, contents(entries))

	assert.ErrorIs(t, h.EnforceRetention(ctx, -1), storage.ErrInvalidCap)
}

func TestHistory_ListOrdering(t *testing.T) {
	store := setupTestDB(t)
	h := store.History()
	ctx := context.Background()

	ids := map[string]uint64{}
	for _, c := range []string{"a", "b", "c", "d"} {
		id, err := h.Insert(ctx, c, types.KindText)
		require.NoError(t, err)
		ids[c] = id
	}
	require.NoError(t, h.TogglePin(ctx, ids["a"]))
	require.NoError(t, h.TogglePin(ctx, ids["c"]))

	entries, err := h.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "d", "b"}, contents(entries))

	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if prev.Pinned == cur.Pinned {
			assert.False(t, cur.CreatedAt.After(prev.CreatedAt), "newest first within a group")
		} else {
			assert.True(t, prev.Pinned, "pinned before unpinned")
		}
	}

	// the limit counts pinned entries
	entries, err = h.List(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, contents(entries))
}

func TestHistory_IdempotentDeleteAndPin(t *testing.T) {
	store := setupTestDB(t)
	h := store.History()
	ctx := context.Background()

	_, err := h.Insert(ctx, "only", types.KindText)
	require.NoError(t, err)
	before, err := h.List(ctx, 0)
	require.NoError(t, err)

	assert.NoError(t, h.Delete(ctx, 9999))
	assert.NoError(t, h.TogglePin(ctx, 9999))

	after, err := h.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestHistory_Clear(t *testing.T) {
	store := setupTestDB(t)
	h := store.History()
	ctx := context.Background()

	pinned, err := h.Insert(ctx, "pinned", types.KindText)
	require.NoError(t, err)
	require.NoError(t, h.TogglePin(ctx, pinned))
	_, err = h.Insert(ctx, "loose", types.KindText)
	require.NoError(t, err)

	require.NoError(t, h.Clear(ctx))

	entries, err := h.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"pinned"}, contents(entries))
}

func TestHistory_InvalidInput(t *testing.T) {
	store := setupTestDB(t)
	h := store.History()
	ctx := context.Background()

	_, err := h.Insert(ctx, "", types.KindText)
	assert.ErrorIs(t, err, storage.ErrEmptyContent)

	_, err = h.Insert(ctx, "x", types.Kind(0))
	assert.ErrorIs(t, err, storage.ErrInvalidKind)

	_, err = h.Insert(ctx, strings.Repeat("a", storage.MaxContentSize+1), types.KindText)
	assert.ErrorIs(t, err, storage.ErrContentTooLarge)
}

func TestHistory_StorageErrorOnClosedDB(t *testing.T) {
	store := setupTestDB(t)
	require.NoError(t, store.Close())

	_, err := store.History().Insert(context.Background(), "x", types.KindText)
	var se *types.StorageError
	require.True(t, errors.As(err, &se), "expected StorageError, got %v", err)
	assert.Equal(t, "insert", se.Op)
}

func TestHistory_ConcurrentInserts(t *testing.T) {
	store := setupTestDB(t)
	h := store.History()
	ctx := context.Background()
	require.NoError(t, h.EnforceRetention(ctx, 10))

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				// every worker writes the same few values to race the dedup path
				_, err := h.Insert(ctx, fmt.Sprintf("v%d", i%5), types.KindText)
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	entries, err := h.List(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, entries, 5)

	seen := map[string]bool{}
	for _, e := range entries {
		assert.False(t, seen[e.Content], "duplicate %q", e.Content)
		seen[e.Content] = true
	}
}

func TestConfig_Defaults(t *testing.T) {
	store := setupTestDB(t)

	cfg, err := store.Config().Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.DefaultAppConfig(), cfg)
}

func TestConfig_RoundTrip(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	want := types.AppConfig{
		MaxHistoryCount: 30,
		Hotkey:          "Ctrl+Alt+V",
		Theme:           types.ThemeDeepPurple,
	}
	require.NoError(t, store.Config().Update(ctx, want))

	got, err := store.Config().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// a second update overwrites rather than duplicating keys
	want.MaxHistoryCount = 5
	require.NoError(t, store.Config().Update(ctx, want))
	got, err = store.Config().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestConfig_LegacyAndCorruptValues(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	rows := []storage.ConfigModel{
		{Key: storage.KeyMaxHistoryCount, Value: "lots"},
		{Key: storage.KeyThemePreset, Value: "dark"},
	}
	require.NoError(t, store.db.Create(&rows).Error)

	got, err := store.Config().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultMaxHistoryCount, got.MaxHistoryCount)
	assert.Equal(t, types.ThemeDeepPurple, got.Theme)
	assert.Equal(t, types.DefaultHotkey, got.Hotkey)
}

func TestHistory_UnknownKindRow(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	h := store.History()

	_, err := h.Insert(ctx, "good", types.KindText)
	require.NoError(t, err)

	bad := storage.EntryModel{Content: "clip", Kind: "video", CreatedAt: time.Now()}
	require.NoError(t, store.db.Create(&bad).Error)

	entries, err := h.List(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, contents(entries))

	_, err = h.Get(ctx, bad.ID)
	var storageErr *types.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "get", storageErr.Op)
	assert.Contains(t, err.Error(), "video")
}
