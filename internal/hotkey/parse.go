// Package hotkey parses key-combo strings such as "CommandOrControl+Shift+V".
// OS registration lives in the native subpackage.
package hotkey

import (
	"errors"
	"fmt"
	"strings"
)

// Modifier is a platform-neutral modifier key. Combo.Mods is a bit set.
type Modifier uint8

const (
	// ModCommandOrControl is Command on macOS and Control elsewhere.
	ModCommandOrControl Modifier = 1 << iota
	ModCommand
	ModControl
	ModShift
	ModAlt
)

// modifierOrder fixes the canonical spelling order.
var modifierOrder = []struct {
	mod  Modifier
	name string
}{
	{ModCommandOrControl, "CommandOrControl"},
	{ModCommand, "Command"},
	{ModControl, "Control"},
	{ModAlt, "Alt"},
	{ModShift, "Shift"},
}

var modifierNames = map[string]Modifier{
	"commandorcontrol": ModCommandOrControl,
	"cmdorctrl":        ModCommandOrControl,
	"command":          ModCommand,
	"cmd":              ModCommand,
	"super":            ModCommand,
	"meta":             ModCommand,
	"control":          ModControl,
	"ctrl":             ModControl,
	"shift":            ModShift,
	"alt":              ModAlt,
	"option":           ModAlt,
}

// keyNames maps lower-case spellings to the canonical key name.
var keyNames = func() map[string]string {
	m := map[string]string{
		"space":  "Space",
		"enter":  "Enter",
		"return": "Enter",
		"escape": "Escape",
		"esc":    "Escape",
		"tab":    "Tab",
		"delete": "Delete",
		"up":     "Up",
		"down":   "Down",
		"left":   "Left",
		"right":  "Right",
	}
	for c := 'a'; c <= 'z'; c++ {
		m[string(c)] = strings.ToUpper(string(c))
	}
	for c := '0'; c <= '9'; c++ {
		m[string(c)] = string(c)
	}
	for i := 1; i <= 12; i++ {
		m[fmt.Sprintf("f%d", i)] = fmt.Sprintf("F%d", i)
	}
	return m
}()

// Combo is a parsed hotkey: a set of modifiers plus exactly one key.
type Combo struct {
	Mods Modifier
	Key  string
}

// Has reports whether mod is part of the combo.
func (c Combo) Has(mod Modifier) bool { return c.Mods&mod != 0 }

// String returns the canonical spelling, e.g. "CommandOrControl+Shift+V".
func (c Combo) String() string {
	parts := make([]string, 0, len(modifierOrder)+1)
	for _, m := range modifierOrder {
		if c.Has(m.mod) {
			parts = append(parts, m.name)
		}
	}
	return strings.Join(append(parts, c.Key), "+")
}

// Parse reads a "+"-separated combo. Tokens are case-insensitive.
func Parse(s string) (Combo, error) {
	if strings.TrimSpace(s) == "" {
		return Combo{}, errors.New("empty hotkey")
	}

	var c Combo
	for _, raw := range strings.Split(s, "+") {
		tok := strings.ToLower(strings.TrimSpace(raw))
		if tok == "" {
			return Combo{}, fmt.Errorf("hotkey %q has an empty token", s)
		}

		if mod, ok := modifierNames[tok]; ok {
			if c.Has(mod) {
				return Combo{}, fmt.Errorf("hotkey %q repeats modifier %q", s, raw)
			}
			c.Mods |= mod
			continue
		}

		key, ok := keyNames[tok]
		if !ok {
			return Combo{}, fmt.Errorf("hotkey %q has unknown key %q", s, raw)
		}
		if c.Key != "" {
			return Combo{}, fmt.Errorf("hotkey %q has more than one key", s)
		}
		c.Key = key
	}

	if c.Key == "" {
		return Combo{}, fmt.Errorf("hotkey %q has no key", s)
	}
	return c, nil
}
