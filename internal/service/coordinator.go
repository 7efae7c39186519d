package service

import (
	"clipboard-history/internal/hotkey"
	"clipboard-history/internal/storage"
	"clipboard-history/pkg/types"
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Coordinator applies an already persisted config change to the running
// system. It owns two independent axes: the registered global hotkey and the
// retention cap pushed to the history store.
type Coordinator struct {
	registrar hotkey.Registrar
	history   storage.HistoryStore
	onTrigger func()

	mu     sync.Mutex
	active string // registered hotkey; empty when unregistered
}

func NewCoordinator(registrar hotkey.Registrar, history storage.HistoryStore, onTrigger func()) *Coordinator {
	return &Coordinator{
		registrar: registrar,
		history:   history,
		onTrigger: onTrigger,
	}
}

// Activate performs the startup registration.
func (c *Coordinator) Activate(combo string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.swapLocked(combo)
}

// Registered reports the active hotkey.
func (c *Coordinator) Registered() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active, c.active != ""
}

// Apply moves the running system from prev to next. The hotkey is swapped
// when it changed or when nothing is registered; the history is trimmed when
// the cap changed. A failure on one axis does not skip the other.
func (c *Coordinator) Apply(ctx context.Context, prev, next types.AppConfig) error {
	var errs []error

	c.mu.Lock()
	if prev.Hotkey != next.Hotkey || c.active == "" {
		slog.Info("updating hotkey", "from", prev.Hotkey, "to", next.Hotkey)
		if err := c.swapLocked(next.Hotkey); err != nil {
			errs = append(errs, err)
		}
	}
	c.mu.Unlock()

	if prev.MaxHistoryCount != next.MaxHistoryCount {
		slog.Info("applying history cap", "from", prev.MaxHistoryCount, "to", next.MaxHistoryCount)
		if err := c.history.EnforceRetention(ctx, next.MaxHistoryCount); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Release unregisters the active hotkey, if any.
func (c *Coordinator) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unregisterLocked()
}

// swapLocked drops the active registration, then parses and registers combo.
// On failure, including a malformed combo, nothing is left registered.
func (c *Coordinator) swapLocked(combo string) error {
	c.unregisterLocked()

	parsed, err := hotkey.Parse(combo)
	if err != nil {
		return &types.ConfigError{Op: types.ConfigOpValidate, Hotkey: combo, Message: "invalid hotkey", Err: err}
	}
	if err := c.registrar.Register(parsed.String(), c.onTrigger); err != nil {
		return &types.ConfigError{Op: types.ConfigOpRegister, Hotkey: combo, Message: "failed to register hotkey", Err: err}
	}
	c.active = parsed.String()
	slog.Info("hotkey registered", "hotkey", c.active)
	return nil
}

func (c *Coordinator) unregisterLocked() {
	if c.active == "" {
		return
	}
	if err := c.registrar.Unregister(c.active); err != nil {
		slog.Warn("failed to unregister hotkey", "hotkey", c.active, "err", err)
	}
	c.active = ""
}
