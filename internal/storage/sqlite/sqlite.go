package sqlite

import (
	"clipboard-history/internal/storage"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteStorage owns the database holding both the history and the config
// tables. Each store it hands out serializes its own access.
type SQLiteStorage struct {
	db      *gorm.DB
	history *HistoryStore
	config  *ConfigStore
}

// New opens (creating if needed) the SQLite database at config.DBPath.
func New(config storage.Config) (*SQLiteStorage, error) {
	if err := os.MkdirAll(filepath.Dir(config.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := config.DBPath + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database handle: %w", err)
	}
	// SQLite doesn't handle multiple writers well
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Auto-migrate the schema
	if err := db.AutoMigrate(&storage.EntryModel{}, &storage.ConfigModel{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &SQLiteStorage{
		db:      db,
		history: newHistoryStore(db, time.Now),
		config:  newConfigStore(db),
	}, nil
}

// History returns the clipboard history store.
func (s *SQLiteStorage) History() *HistoryStore { return s.history }

// Config returns the app config store.
func (s *SQLiteStorage) Config() *ConfigStore { return s.config }

// Close closes the underlying database.
func (s *SQLiteStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
