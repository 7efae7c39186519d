//go:build linux && x11

package native

import (
	"clipboard-history/internal/hotkey"

	xhotkey "golang.design/x/hotkey"
)

// X11 maps Alt to Mod1 and Super to Mod4 on common keyboard layouts.
var platformModifiers = map[hotkey.Modifier]xhotkey.Modifier{
	hotkey.ModCommandOrControl: xhotkey.ModCtrl,
	hotkey.ModCommand:          xhotkey.Mod4,
	hotkey.ModControl:          xhotkey.ModCtrl,
	hotkey.ModShift:            xhotkey.ModShift,
	hotkey.ModAlt:              xhotkey.Mod1,
}
