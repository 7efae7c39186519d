package sqlite

import (
	"clipboard-history/internal/storage"
	"clipboard-history/pkg/types"
	"context"
	"log/slog"
	"strconv"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConfigStore implements storage.ConfigStore as key/value rows.
type ConfigStore struct {
	db *gorm.DB
	mu sync.Mutex
}

var _ storage.ConfigStore = (*ConfigStore)(nil)

func newConfigStore(db *gorm.DB) *ConfigStore {
	return &ConfigStore{db: db}
}

// Get implements storage.ConfigStore interface
func (s *ConfigStore) Get(ctx context.Context) (types.AppConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []storage.ConfigModel
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return types.AppConfig{}, &types.StorageError{Op: "get config", Err: err}
	}

	cfg := types.DefaultAppConfig()
	for _, row := range rows {
		switch row.Key {
		case storage.KeyMaxHistoryCount:
			n, err := strconv.Atoi(row.Value)
			if err != nil || n <= 0 {
				slog.Warn("invalid stored max history count, using default",
					"value", row.Value, "default", types.DefaultMaxHistoryCount)
				continue
			}
			cfg.MaxHistoryCount = n
		case storage.KeyHotkey:
			cfg.Hotkey = row.Value
		case storage.KeyThemePreset:
			theme, err := types.ParseTheme(row.Value)
			if err != nil {
				slog.Warn("invalid stored theme, using default", "value", row.Value)
			}
			cfg.Theme = theme
		}
	}
	return cfg, nil
}

// Update implements storage.ConfigStore interface
func (s *ConfigStore) Update(ctx context.Context, cfg types.AppConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := []storage.ConfigModel{
		{Key: storage.KeyMaxHistoryCount, Value: strconv.Itoa(cfg.MaxHistoryCount)},
		{Key: storage.KeyHotkey, Value: cfg.Hotkey},
		{Key: storage.KeyThemePreset, Value: string(cfg.Theme)},
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).Create(&rows).Error
	})
	if err != nil {
		return &types.StorageError{Op: "update config", Err: err}
	}
	return nil
}
