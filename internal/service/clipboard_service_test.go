package service

import (
	"clipboard-history/internal/storage"
	"clipboard-history/internal/storage/sqlite"
	"clipboard-history/pkg/types"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMonitor struct {
	mu      sync.Mutex
	handler func(types.Clip)
	started bool
}

func (m *fakeMonitor) Start(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
	return nil
}

func (m *fakeMonitor) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = false
	return nil
}

func (m *fakeMonitor) OnChange(handler func(types.Clip)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = handler
}

func (m *fakeMonitor) emit(kind types.Kind, content string) {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	h(types.Clip{Kind: kind, Content: content})
}

type fakeBackend struct {
	mu       sync.Mutex
	text     string
	image    []byte
	writeErr error
}

func (b *fakeBackend) Name() string                     { return "fake" }
func (b *fakeBackend) ReadText() (string, bool, error)  { return "", false, nil }
func (b *fakeBackend) ReadImage() ([]byte, bool, error) { return nil, false, nil }
func (b *fakeBackend) Close()                           {}

func (b *fakeBackend) WriteText(text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.writeErr != nil {
		return b.writeErr
	}
	b.text = text
	return nil
}

func (b *fakeBackend) WriteImage(png []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.writeErr != nil {
		return b.writeErr
	}
	b.image = png
	return nil
}

type fakeRegistrar struct {
	mu            sync.Mutex
	active        map[string]func()
	failRegister  map[string]bool
	unregisterErr error
	unregistered  []string
	registers     int
}

func newFakeRegistrar() *fakeRegistrar {
	return &fakeRegistrar{
		active:       make(map[string]func()),
		failRegister: make(map[string]bool),
	}
}

func (r *fakeRegistrar) Register(combo string, onTrigger func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registers++
	if r.failRegister[combo] {
		return fmt.Errorf("%s is taken", combo)
	}
	r.active[combo] = onTrigger
	return nil
}

func (r *fakeRegistrar) Unregister(combo string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, combo)
	r.unregistered = append(r.unregistered, combo)
	return r.unregisterErr
}

func (r *fakeRegistrar) press(combo string) {
	r.mu.Lock()
	fn := r.active[combo]
	r.mu.Unlock()
	fn()
}

func (r *fakeRegistrar) registered() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.active))
	for combo := range r.active {
		out = append(out, combo)
	}
	return out
}

func (r *fakeRegistrar) calls() (registers int, unregistered []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registers, append([]string(nil), r.unregistered...)
}

type signalLog struct {
	mu      sync.Mutex
	signals []types.Signal
}

func (l *signalLog) HandleNotification(s types.Signal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.signals = append(l.signals, s)
}

func (l *signalLog) count(s types.Signal) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, got := range l.signals {
		if got == s {
			n++
		}
	}
	return n
}

type fixture struct {
	svc       *ClipboardService
	store     *sqlite.SQLiteStorage
	monitor   *fakeMonitor
	backend   *fakeBackend
	registrar *fakeRegistrar
	signals   *signalLog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := sqlite.New(storage.Config{DBPath: filepath.Join(t.TempDir(), "svc.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	f := &fixture{
		store:     store,
		monitor:   &fakeMonitor{},
		backend:   &fakeBackend{},
		registrar: newFakeRegistrar(),
		signals:   &signalLog{},
	}
	f.svc = New(f.monitor, f.backend, store.History(), store.Config(), f.registrar)
	f.svc.RegisterHandler(f.signals)
	return f
}

func (f *fixture) start(t *testing.T) {
	t.Helper()
	require.NoError(t, f.svc.Start(context.Background()))
	t.Cleanup(func() { _ = f.svc.Stop() })
}

func TestService_StartAppliesStoredConfig(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cfg := types.DefaultAppConfig()
	cfg.MaxHistoryCount = 2
	require.NoError(t, f.store.Config().Update(ctx, cfg))
	for _, c := range []string{"a", "b", "c"} {
		_, err := f.store.History().Insert(ctx, c, types.KindText)
		require.NoError(t, err)
	}

	f.start(t)

	entries, err := f.svc.ListHistory(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.True(t, f.monitor.started)

	hk, ok := f.svc.Hotkey()
	assert.True(t, ok)
	assert.Equal(t, types.DefaultHotkey, hk)
}

func TestService_DetectedChangeIsStored(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	ctx := context.Background()

	f.monitor.emit(types.KindText, "hello")
	f.monitor.emit(types.KindText, "hello")

	entries, err := f.svc.ListHistory(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0].Content)
	assert.Equal(t, 2, f.signals.count(types.SignalHistoryChanged))
}

func TestService_OversizedContentSkipped(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	big := make([]byte, storage.MaxContentSize+1)
	f.monitor.emit(types.KindText, string(big))

	entries, err := f.svc.ListHistory(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Zero(t, f.signals.count(types.SignalHistoryChanged))
}

func TestService_HotkeyPressRequestsShow(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	f.registrar.press(types.DefaultHotkey)
	assert.Equal(t, 1, f.signals.count(types.SignalShowRequested))
}

func TestService_MutationsNotify(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	ctx := context.Background()

	id, err := f.store.History().Insert(ctx, "x", types.KindText)
	require.NoError(t, err)

	require.NoError(t, f.svc.TogglePin(ctx, id))
	entry, err := f.svc.GetEntry(ctx, id)
	require.NoError(t, err)
	assert.True(t, entry.Pinned)

	require.NoError(t, f.svc.Delete(ctx, id))
	require.NoError(t, f.svc.ClearHistory(ctx))
	assert.Equal(t, 3, f.signals.count(types.SignalHistoryChanged))

	_, err = f.svc.GetEntry(ctx, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestService_UpdateConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.AppConfig)
	}{
		{"zero cap", func(c *types.AppConfig) { c.MaxHistoryCount = 0 }},
		{"negative cap", func(c *types.AppConfig) { c.MaxHistoryCount = -3 }},
		{"unknown theme", func(c *types.AppConfig) { c.Theme = "neon" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.start(t)
			ctx := context.Background()

			cfg := types.DefaultAppConfig()
			tt.mutate(&cfg)

			err := f.svc.UpdateConfig(ctx, cfg)
			var cfgErr *types.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, types.ConfigOpValidate, cfgErr.Op)

			stored, err := f.svc.GetConfig(ctx)
			require.NoError(t, err)
			assert.Equal(t, types.DefaultAppConfig(), stored)
			assert.Empty(t, f.registrar.unregistered)
		})
	}
}

func TestService_MalformedHotkeyLeavesNoneRegistered(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	ctx := context.Background()

	cfg := types.DefaultAppConfig()
	cfg.Hotkey = "Ctrl+Bogus"
	err := f.svc.UpdateConfig(ctx, cfg)

	var cfgErr *types.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Ctrl+Bogus", cfgErr.Hotkey)

	_, ok := f.svc.Hotkey()
	assert.False(t, ok)
	assert.Empty(t, f.registrar.registered())
	_, unregistered := f.registrar.calls()
	assert.Equal(t, []string{types.DefaultHotkey}, unregistered)

	stored, err := f.svc.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ctrl+Bogus", stored.Hotkey)

	// a later valid update restores a hotkey
	require.NoError(t, f.svc.UpdateConfig(ctx, types.DefaultAppConfig()))
	hk, ok := f.svc.Hotkey()
	assert.True(t, ok)
	assert.Equal(t, types.DefaultHotkey, hk)
}

func TestService_UnchangedHotkeyStaysRegistered(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	ctx := context.Background()

	registersAtStart, _ := f.registrar.calls()

	cfg := types.DefaultAppConfig()
	cfg.Theme = types.ThemeDeepPurple
	require.NoError(t, f.svc.UpdateConfig(ctx, cfg))

	cfg.MaxHistoryCount = 5
	require.NoError(t, f.svc.UpdateConfig(ctx, cfg))

	registers, unregistered := f.registrar.calls()
	assert.Equal(t, registersAtStart, registers)
	assert.Empty(t, unregistered)
	assert.Equal(t, []string{types.DefaultHotkey}, f.registrar.registered())
}

func TestService_HotkeyFailureStillAppliesCap(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	ctx := context.Background()

	for _, c := range []string{"a", "b", "c"} {
		f.monitor.emit(types.KindText, c)
	}
	f.registrar.failRegister["Control+Alt+H"] = true

	cfg := types.DefaultAppConfig()
	cfg.Hotkey = "Ctrl+Alt+H"
	cfg.MaxHistoryCount = 1
	err := f.svc.UpdateConfig(ctx, cfg)

	var cfgErr *types.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, types.ConfigOpRegister, cfgErr.Op)
	_, ok := f.svc.Hotkey()
	assert.False(t, ok)

	entries, err := f.svc.ListHistory(ctx, 100)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "c", entries[0].Content)
	assert.Equal(t, 1, f.store.History().Cap())
}

func TestService_UpdateConfigSwapsHotkey(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	ctx := context.Background()

	cfg := types.DefaultAppConfig()
	cfg.Hotkey = "ctrl+alt+h"
	cfg.Theme = types.ThemeMidnightBlue
	require.NoError(t, f.svc.UpdateConfig(ctx, cfg))

	assert.Equal(t, []string{"Control+Alt+H"}, f.registrar.registered())
	assert.Equal(t, []string{types.DefaultHotkey}, f.registrar.unregistered)

	stored, err := f.svc.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg, stored)
}

func TestService_RegistrationFailure(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	ctx := context.Background()

	f.registrar.failRegister["Control+Alt+H"] = true

	cfg := types.DefaultAppConfig()
	cfg.Hotkey = "Ctrl+Alt+H"
	err := f.svc.UpdateConfig(ctx, cfg)

	var cfgErr *types.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, types.ConfigOpRegister, cfgErr.Op)

	_, ok := f.svc.Hotkey()
	assert.False(t, ok, "failed registration must leave no hotkey active")
	assert.Empty(t, f.registrar.registered())

	stored, err := f.svc.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ctrl+Alt+H", stored.Hotkey)

	// the same update succeeds once the combo is free
	delete(f.registrar.failRegister, "Control+Alt+H")
	require.NoError(t, f.svc.UpdateConfig(ctx, cfg))
	hk, ok := f.svc.Hotkey()
	assert.True(t, ok)
	assert.Equal(t, "Control+Alt+H", hk)
}

func TestService_UnregisterFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	f.registrar.unregisterErr = errors.New("os refused")

	cfg := types.DefaultAppConfig()
	cfg.Hotkey = "F9"
	require.NoError(t, f.svc.UpdateConfig(context.Background(), cfg))

	hk, ok := f.svc.Hotkey()
	assert.True(t, ok)
	assert.Equal(t, "F9", hk)
}

func TestService_CapChangeEnforcedImmediately(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	ctx := context.Background()

	for _, c := range []string{"a", "b", "c", "d"} {
		f.monitor.emit(types.KindText, c)
	}
	entries, err := f.svc.ListHistory(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, "d", entries[0].Content)
	require.NoError(t, f.svc.TogglePin(ctx, entries[3].ID)) // pin "a"

	before := f.signals.count(types.SignalHistoryChanged)

	cfg := types.DefaultAppConfig()
	cfg.MaxHistoryCount = 1
	require.NoError(t, f.svc.UpdateConfig(ctx, cfg))

	entries, err = f.svc.ListHistory(ctx, 100)
	require.NoError(t, err)
	got := make([]string, len(entries))
	for i, e := range entries {
		got[i] = e.Content
	}
	assert.Equal(t, []string{"a", "d"}, got)
	assert.Equal(t, 1, f.store.History().Cap())
	assert.Equal(t, before+1, f.signals.count(types.SignalHistoryChanged))
}

func TestService_CopyToClipboard(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	ctx := context.Background()

	require.NoError(t, f.svc.CopyToClipboard(ctx, "plain", types.KindText))
	assert.Equal(t, "plain", f.backend.text)

	img := types.ImagePayload{0x89, 'P', 'N', 'G'}
	require.NoError(t, f.svc.CopyToClipboard(ctx, img.Encode(), types.KindImage))
	assert.Equal(t, []byte(img), f.backend.image)

	err := f.svc.CopyToClipboard(ctx, "%%% not base64", types.KindImage)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	f.backend.writeErr = errors.New("pasteboard busy")
	err = f.svc.CopyToClipboard(ctx, "again", types.KindText)
	var ioErr *types.ClipboardIOError
	assert.ErrorAs(t, err, &ioErr)

	entries, err := f.svc.ListHistory(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries, "copying must not touch history")
}

func TestService_CopyEntry(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	ctx := context.Background()

	id, err := f.store.History().Insert(ctx, "stored", types.KindText)
	require.NoError(t, err)

	require.NoError(t, f.svc.CopyEntry(ctx, id))
	assert.Equal(t, "stored", f.backend.text)

	assert.ErrorIs(t, f.svc.CopyEntry(ctx, id+100), storage.ErrNotFound)
}
