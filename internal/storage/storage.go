package storage

import (
	"clipboard-history/pkg/types"
	"context"
)

// HistoryStore defines the interface for clipboard history persistence.
// Implementations serialize every call; each call is atomic.
type HistoryStore interface {
	// Insert stores content as the newest unpinned entry, replacing any entry
	// with the same content and kind, then enforces retention.
	Insert(ctx context.Context, content string, kind types.Kind) (uint64, error)

	// List returns entries pinned first, then newest first. A limit <= 0
	// means the current retention cap.
	List(ctx context.Context, limit int) ([]types.Entry, error)

	// Get retrieves one entry by ID.
	Get(ctx context.Context, id uint64) (types.Entry, error)

	// Delete removes an entry. Deleting a missing ID succeeds.
	Delete(ctx context.Context, id uint64) error

	// TogglePin flips the pinned flag. Toggling a missing ID succeeds.
	TogglePin(ctx context.Context, id uint64) error

	// EnforceRetention records cap and evicts unpinned entries beyond the
	// cap most recent ones.
	EnforceRetention(ctx context.Context, cap int) error

	// Clear removes every unpinned entry.
	Clear(ctx context.Context) error

	// Cap returns the retention cap currently in force.
	Cap() int
}

// ConfigStore defines the interface for the AppConfig singleton.
type ConfigStore interface {
	// Get returns the stored config, with defaults for anything never written.
	Get(ctx context.Context) (types.AppConfig, error)

	// Update persists every field atomically.
	Update(ctx context.Context, cfg types.AppConfig) error
}

// Config holds storage configuration
type Config struct {
	DBPath string // Path to SQLite database
}
