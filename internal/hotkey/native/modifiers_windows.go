//go:build windows

package native

import (
	"clipboard-history/internal/hotkey"

	xhotkey "golang.design/x/hotkey"
)

var platformModifiers = map[hotkey.Modifier]xhotkey.Modifier{
	hotkey.ModCommandOrControl: xhotkey.ModCtrl,
	hotkey.ModCommand:          xhotkey.ModWin,
	hotkey.ModControl:          xhotkey.ModCtrl,
	hotkey.ModShift:            xhotkey.ModShift,
	hotkey.ModAlt:              xhotkey.ModAlt,
}
