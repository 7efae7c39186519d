//go:build darwin || windows || (linux && x11)

// Package native registers global hotkeys with the operating system through
// golang.design/x/hotkey. On Linux it needs an X11 display and is only built
// with the x11 tag; without it Register reports hotkeys as unavailable.
package native

import (
	"clipboard-history/internal/hotkey"
	"fmt"
	"log/slog"
	"sync"

	xhotkey "golang.design/x/hotkey"
)

var keys = map[string]xhotkey.Key{
	"A": xhotkey.KeyA, "B": xhotkey.KeyB, "C": xhotkey.KeyC, "D": xhotkey.KeyD,
	"E": xhotkey.KeyE, "F": xhotkey.KeyF, "G": xhotkey.KeyG, "H": xhotkey.KeyH,
	"I": xhotkey.KeyI, "J": xhotkey.KeyJ, "K": xhotkey.KeyK, "L": xhotkey.KeyL,
	"M": xhotkey.KeyM, "N": xhotkey.KeyN, "O": xhotkey.KeyO, "P": xhotkey.KeyP,
	"Q": xhotkey.KeyQ, "R": xhotkey.KeyR, "S": xhotkey.KeyS, "T": xhotkey.KeyT,
	"U": xhotkey.KeyU, "V": xhotkey.KeyV, "W": xhotkey.KeyW, "X": xhotkey.KeyX,
	"Y": xhotkey.KeyY, "Z": xhotkey.KeyZ,

	"0": xhotkey.Key0, "1": xhotkey.Key1, "2": xhotkey.Key2, "3": xhotkey.Key3,
	"4": xhotkey.Key4, "5": xhotkey.Key5, "6": xhotkey.Key6, "7": xhotkey.Key7,
	"8": xhotkey.Key8, "9": xhotkey.Key9,

	"F1": xhotkey.KeyF1, "F2": xhotkey.KeyF2, "F3": xhotkey.KeyF3, "F4": xhotkey.KeyF4,
	"F5": xhotkey.KeyF5, "F6": xhotkey.KeyF6, "F7": xhotkey.KeyF7, "F8": xhotkey.KeyF8,
	"F9": xhotkey.KeyF9, "F10": xhotkey.KeyF10, "F11": xhotkey.KeyF11, "F12": xhotkey.KeyF12,

	"Space":  xhotkey.KeySpace,
	"Enter":  xhotkey.KeyReturn,
	"Escape": xhotkey.KeyEscape,
	"Tab":    xhotkey.KeyTab,
	"Delete": xhotkey.KeyDelete,
	"Up":     xhotkey.KeyUp,
	"Down":   xhotkey.KeyDown,
	"Left":   xhotkey.KeyLeft,
	"Right":  xhotkey.KeyRight,
}

// modifierOrder matches hotkey.Combo's canonical spelling order.
var modifierOrder = []hotkey.Modifier{
	hotkey.ModCommandOrControl,
	hotkey.ModCommand,
	hotkey.ModControl,
	hotkey.ModAlt,
	hotkey.ModShift,
}

// translate maps a combo onto this platform's keys, dropping modifiers that
// collapse onto the same native key.
func translate(c hotkey.Combo) ([]xhotkey.Modifier, xhotkey.Key, error) {
	key, ok := keys[c.Key]
	if !ok {
		return nil, 0, fmt.Errorf("key %q is not supported on this platform", c.Key)
	}

	seen := map[xhotkey.Modifier]bool{}
	var mods []xhotkey.Modifier
	for _, m := range modifierOrder {
		if !c.Has(m) {
			continue
		}
		nm := platformModifiers[m]
		if !seen[nm] {
			seen[nm] = true
			mods = append(mods, nm)
		}
	}
	return mods, key, nil
}

type registration struct {
	hk   *xhotkey.Hotkey
	done chan struct{}
}

// Registrar implements hotkey.Registrar against the OS.
type Registrar struct {
	mu     sync.Mutex
	active map[string]*registration // canonical combo → registration
}

func NewRegistrar() *Registrar {
	return &Registrar{active: make(map[string]*registration)}
}

func (r *Registrar) Register(combo string, onTrigger func()) error {
	c, err := hotkey.Parse(combo)
	if err != nil {
		return err
	}
	mods, key, err := translate(c)
	if err != nil {
		return err
	}

	name := c.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.active[name]; exists {
		return fmt.Errorf("hotkey %s is already registered", name)
	}

	hk := xhotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("failed to register hotkey %s: %w", name, err)
	}

	reg := &registration{hk: hk, done: make(chan struct{})}
	r.active[name] = reg

	keydown := hk.Keydown()
	go func() {
		for {
			select {
			case <-reg.done:
				return
			case _, ok := <-keydown:
				if !ok {
					return
				}
				slog.Debug("hotkey pressed", "hotkey", name)
				onTrigger()
			}
		}
	}()

	return nil
}

func (r *Registrar) Unregister(combo string) error {
	c, err := hotkey.Parse(combo)
	if err != nil {
		return err
	}
	name := c.String()

	r.mu.Lock()
	reg, ok := r.active[name]
	delete(r.active, name)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("hotkey %s is not registered", name)
	}
	close(reg.done)
	if err := reg.hk.Unregister(); err != nil {
		return fmt.Errorf("failed to unregister hotkey %s: %w", name, err)
	}
	return nil
}
