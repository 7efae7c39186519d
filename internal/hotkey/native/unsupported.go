//go:build !darwin && !windows && !(linux && x11)

package native

import (
	"clipboard-history/internal/hotkey"
	"errors"
)

// ErrUnsupported is returned by Register in builds without OS hotkey support.
var ErrUnsupported = errors.New("global hotkeys are not available in this build")

// Registrar validates combos and reports that global hotkeys are unavailable.
type Registrar struct{}

func NewRegistrar() *Registrar { return &Registrar{} }

func (*Registrar) Register(combo string, _ func()) error {
	if _, err := hotkey.Parse(combo); err != nil {
		return err
	}
	return ErrUnsupported
}

func (*Registrar) Unregister(string) error { return nil }
