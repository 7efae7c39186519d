//go:build darwin

package native

import (
	"clipboard-history/internal/hotkey"

	xhotkey "golang.design/x/hotkey"
)

var platformModifiers = map[hotkey.Modifier]xhotkey.Modifier{
	hotkey.ModCommandOrControl: xhotkey.ModCmd,
	hotkey.ModCommand:          xhotkey.ModCmd,
	hotkey.ModControl:          xhotkey.ModCtrl,
	hotkey.ModShift:            xhotkey.ModShift,
	hotkey.ModAlt:              xhotkey.ModOption,
}
