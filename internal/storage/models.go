package storage

import (
	"clipboard-history/pkg/types"
	"fmt"
	"time"
)

// EntryModel is the clipboard_entries row.
type EntryModel struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Content   string    `gorm:"type:text;not null;index:idx_entries_identity,priority:2"`
	Kind      string    `gorm:"type:text;not null;index:idx_entries_identity,priority:1"`
	CreatedAt time.Time `gorm:"not null;index:idx_entries_order,priority:2"`
	Pinned    bool      `gorm:"not null;default:false;index:idx_entries_order,priority:1"`
}

func (EntryModel) TableName() string { return "clipboard_entries" }

// ToEntry converts the row, failing on a kind this version does not know.
func (em *EntryModel) ToEntry() (types.Entry, error) {
	kind, err := types.ParseKind(em.Kind)
	if err != nil {
		return types.Entry{}, fmt.Errorf("entry %d: %w", em.ID, err)
	}
	return types.Entry{
		ID:        em.ID,
		Content:   em.Content,
		Kind:      kind,
		CreatedAt: em.CreatedAt,
		Pinned:    em.Pinned,
	}, nil
}

// ConfigModel is one app_config key/value row.
type ConfigModel struct {
	Key   string `gorm:"primaryKey;type:text"`
	Value string `gorm:"type:text;not null"`
}

func (ConfigModel) TableName() string { return "app_config" }
