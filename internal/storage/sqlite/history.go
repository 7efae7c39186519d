package sqlite

import (
	"clipboard-history/internal/storage"
	"clipboard-history/pkg/types"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"
)

// evictSQL deletes every unpinned entry past the newest ? ones.
const evictSQL = `DELETE FROM clipboard_entries WHERE id IN (
	SELECT id FROM clipboard_entries
	WHERE pinned = ?
	ORDER BY created_at DESC, id DESC
	LIMIT -1 OFFSET ?
)`

// HistoryStore implements storage.HistoryStore on SQLite.
type HistoryStore struct {
	db  *gorm.DB
	now func() time.Time

	mu  sync.Mutex // serializes every operation; guards cap
	cap int
}

var _ storage.HistoryStore = (*HistoryStore)(nil)

func newHistoryStore(db *gorm.DB, now func() time.Time) *HistoryStore {
	return &HistoryStore{
		db:  db,
		now: now,
		cap: types.DefaultMaxHistoryCount,
	}
}

// Insert implements storage.HistoryStore interface
func (s *HistoryStore) Insert(ctx context.Context, content string, kind types.Kind) (uint64, error) {
	if !kind.Valid() {
		return 0, storage.ErrInvalidKind
	}
	if content == "" {
		return 0, storage.ErrEmptyContent
	}
	if len(content) > storage.MaxContentSize {
		return 0, storage.ErrContentTooLarge
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	model := &storage.EntryModel{
		Content:   content,
		Kind:      kind.String(),
		CreatedAt: s.now().UTC(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("kind = ? AND content = ?", model.Kind, content).
			Delete(&storage.EntryModel{}).Error; err != nil {
			return fmt.Errorf("failed to remove duplicate: %w", err)
		}
		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to create entry: %w", err)
		}
		return evictUnpinned(tx, s.cap)
	})
	if err != nil {
		return 0, &types.StorageError{Op: "insert", Err: err}
	}

	return model.ID, nil
}

// List implements storage.HistoryStore interface
func (s *HistoryStore) List(ctx context.Context, limit int) ([]types.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = s.cap
	}

	query := s.db.WithContext(ctx).Model(&storage.EntryModel{}).
		Order("pinned DESC").
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	} else {
		// a zero cap retains pinned entries only
		query = query.Where("pinned = ?", true)
	}

	var models []storage.EntryModel
	if err := query.Find(&models).Error; err != nil {
		return nil, &types.StorageError{Op: "list", Err: err}
	}

	entries := make([]types.Entry, 0, len(models))
	for i := range models {
		e, err := models[i].ToEntry()
		if err != nil {
			slog.Warn("skipping unreadable history entry", "err", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Get implements storage.HistoryStore interface
func (s *HistoryStore) Get(ctx context.Context, id uint64) (types.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var model storage.EntryModel
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.Entry{}, storage.ErrNotFound
	}
	if err != nil {
		return types.Entry{}, &types.StorageError{Op: "get", Err: err}
	}
	e, err := model.ToEntry()
	if err != nil {
		return types.Entry{}, &types.StorageError{Op: "get", Err: err}
	}
	return e, nil
}

// Delete implements storage.HistoryStore interface
func (s *HistoryStore) Delete(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&storage.EntryModel{}).Error; err != nil {
		return &types.StorageError{Op: "delete", Err: err}
	}
	return nil
}

// TogglePin implements storage.HistoryStore interface
func (s *HistoryStore) TogglePin(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.WithContext(ctx).Model(&storage.EntryModel{}).
		Where("id = ?", id).
		Update("pinned", gorm.Expr("NOT pinned")).Error
	if err != nil {
		return &types.StorageError{Op: "toggle pin", Err: err}
	}
	return nil
}

// EnforceRetention implements storage.HistoryStore interface
func (s *HistoryStore) EnforceRetention(ctx context.Context, cap int) error {
	if cap < 0 {
		return storage.ErrInvalidCap
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cap = cap
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return evictUnpinned(tx, cap)
	})
	if err != nil {
		return &types.StorageError{Op: "enforce retention", Err: err}
	}
	return nil
}

// Clear implements storage.HistoryStore interface
func (s *HistoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.WithContext(ctx).Where("pinned = ?", false).Delete(&storage.EntryModel{}).Error; err != nil {
		return &types.StorageError{Op: "clear", Err: err}
	}
	return nil
}

// Cap implements storage.HistoryStore interface
func (s *HistoryStore) Cap() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cap
}

func evictUnpinned(tx *gorm.DB, cap int) error {
	if err := tx.Exec(evictSQL, false, cap).Error; err != nil {
		return fmt.Errorf("failed to evict old entries: %w", err)
	}
	return nil
}
