package storage

import "errors"

const (
	// MaxContentSize bounds a single entry's encoded content.
	MaxContentSize = 100 * 1024 * 1024 // 100MB

	// Config keys
	KeyMaxHistoryCount = "max_history_count"
	KeyHotkey          = "hotkey"
	KeyThemePreset     = "theme_preset"
)

// Storage errors
var (
	ErrNotFound        = errors.New("entry not found")
	ErrContentTooLarge = errors.New("content size exceeds maximum allowed size")
	ErrEmptyContent    = errors.New("empty content")
	ErrInvalidKind     = errors.New("invalid content kind")
	ErrInvalidCap      = errors.New("retention cap must not be negative")
)
