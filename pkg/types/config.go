package types

import "fmt"

const (
	DefaultMaxHistoryCount = 50
	DefaultHotkey          = "CommandOrControl+Shift+V"
)

// Theme is a UI colour preset. The engine only stores it.
type Theme string

const (
	ThemeDefault        Theme = "default"
	ThemePurpleGradient Theme = "purple-gradient"
	ThemeDeepPurple     Theme = "deep-purple"
	ThemeMidnightBlue   Theme = "midnight-blue"
)

// Themes lists every accepted preset.
var Themes = []Theme{ThemeDefault, ThemePurpleGradient, ThemeDeepPurple, ThemeMidnightBlue}

func (t Theme) Valid() bool {
	for _, known := range Themes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseTheme maps a stored value to a preset. The retired "dark" and "light"
// presets map to their replacements.
func ParseTheme(s string) (Theme, error) {
	switch s {
	case "dark":
		return ThemeDeepPurple, nil
	case "light":
		return ThemeDefault, nil
	}
	if t := Theme(s); t.Valid() {
		return t, nil
	}
	return ThemeDefault, fmt.Errorf("unknown theme preset %q", s)
}

// AppConfig is the user-facing configuration singleton.
type AppConfig struct {
	MaxHistoryCount int    `json:"max_history_count"`
	Hotkey          string `json:"hotkey"`
	Theme           Theme  `json:"theme"`
}

// DefaultAppConfig is what a fresh install reads.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		MaxHistoryCount: DefaultMaxHistoryCount,
		Hotkey:          DefaultHotkey,
		Theme:           ThemeDefault,
	}
}
