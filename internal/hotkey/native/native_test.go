//go:build darwin || windows

package native

import (
	"clipboard-history/internal/hotkey"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xhotkey "golang.design/x/hotkey"
)

func TestTranslate(t *testing.T) {
	c, err := hotkey.Parse("CmdOrCtrl+Control+Shift+V")
	require.NoError(t, err)

	mods, key, err := translate(c)
	require.NoError(t, err)
	assert.Equal(t, xhotkey.KeyV, key)
	assert.Contains(t, mods, xhotkey.ModShift)

	// CommandOrControl and Control are the same key outside macOS.
	if runtime.GOOS == "darwin" {
		assert.Len(t, mods, 3)
	} else {
		assert.Len(t, mods, 2)
	}
}

func TestTranslate_UnknownKey(t *testing.T) {
	_, _, err := translate(hotkey.Combo{Key: "F13"})
	assert.Error(t, err)
}
