package service

import (
	"clipboard-history/internal/clipboard"
	"clipboard-history/internal/hotkey"
	"clipboard-history/internal/storage"
	"clipboard-history/pkg/types"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrInvalidArgument marks a request the service rejected before doing any work.
var ErrInvalidArgument = errors.New("invalid argument")

// ClipboardService wires the change detector, the stores and the
// reconfiguration coordinator together and is the command surface used by the
// HTTP API, the TUI and the CLI.
type ClipboardService struct {
	monitor     clipboard.Monitor
	backend     clipboard.Backend
	history     storage.HistoryStore
	config      storage.ConfigStore
	coordinator *Coordinator

	ctx    context.Context
	cancel context.CancelFunc

	handlers []NotificationHandler
	mu       sync.RWMutex

	configMu sync.Mutex // serializes UpdateConfig
}

// New creates a new ClipboardService
func New(monitor clipboard.Monitor, backend clipboard.Backend, history storage.HistoryStore, config storage.ConfigStore, registrar hotkey.Registrar) *ClipboardService {
	ctx, cancel := context.WithCancel(context.Background())
	s := &ClipboardService{
		monitor: monitor,
		backend: backend,
		history: history,
		config:  config,
		ctx:     ctx,
		cancel:  cancel,
	}
	s.coordinator = NewCoordinator(registrar, history, func() {
		s.notify(types.SignalShowRequested)
	})
	return s
}

// RegisterHandler adds a notification handler
func (s *ClipboardService) RegisterHandler(handler NotificationHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// Start applies the stored config and begins monitoring the clipboard.
// A hotkey that cannot be registered is logged; the service keeps running
// without one.
func (s *ClipboardService) Start(ctx context.Context) error {
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := s.history.EnforceRetention(ctx, cfg.MaxHistoryCount); err != nil {
		return fmt.Errorf("failed to apply history cap: %w", err)
	}

	if err := s.coordinator.Activate(cfg.Hotkey); err != nil {
		slog.Warn("global hotkey inactive", "err", err)
	}

	s.monitor.OnChange(s.handleClipboardChange)
	if err := s.monitor.Start(s.ctx); err != nil {
		return fmt.Errorf("failed to start clipboard monitor: %w", err)
	}

	slog.Info("clipboard service started",
		"backend", s.backend.Name(),
		"max_history_count", cfg.MaxHistoryCount,
		"hotkey", cfg.Hotkey)
	return nil
}

// Stop gracefully shuts down the service
func (s *ClipboardService) Stop() error {
	s.cancel()

	if err := s.monitor.Stop(); err != nil {
		return fmt.Errorf("failed to stop clipboard monitor: %w", err)
	}
	s.coordinator.Release()
	return nil
}

// Hotkey reports the registered global hotkey.
func (s *ClipboardService) Hotkey() (string, bool) {
	return s.coordinator.Registered()
}

// BackendName names the clipboard backend in use.
func (s *ClipboardService) BackendName() string {
	return s.backend.Name()
}

func (s *ClipboardService) ListHistory(ctx context.Context, limit int) ([]types.Entry, error) {
	return s.history.List(ctx, limit)
}

func (s *ClipboardService) GetEntry(ctx context.Context, id uint64) (types.Entry, error) {
	return s.history.Get(ctx, id)
}

func (s *ClipboardService) Delete(ctx context.Context, id uint64) error {
	if err := s.history.Delete(ctx, id); err != nil {
		return err
	}
	s.notify(types.SignalHistoryChanged)
	return nil
}

func (s *ClipboardService) TogglePin(ctx context.Context, id uint64) error {
	if err := s.history.TogglePin(ctx, id); err != nil {
		return err
	}
	s.notify(types.SignalHistoryChanged)
	return nil
}

// ClearHistory removes every unpinned entry.
func (s *ClipboardService) ClearHistory(ctx context.Context) error {
	if err := s.history.Clear(ctx); err != nil {
		return err
	}
	s.notify(types.SignalHistoryChanged)
	return nil
}

func (s *ClipboardService) GetConfig(ctx context.Context) (types.AppConfig, error) {
	return s.config.Get(ctx)
}

// UpdateConfig validates and persists cfg, then applies it to the running
// system. An invalid cap or theme is rejected without side effects. The hotkey
// is only checked by the swap, so a malformed one is stored and leaves no
// hotkey registered. Once persisted, a hotkey or retention failure is returned
// but the stored config stays.
func (s *ClipboardService) UpdateConfig(ctx context.Context, cfg types.AppConfig) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	s.configMu.Lock()
	defer s.configMu.Unlock()

	prev, err := s.config.Get(ctx)
	if err != nil {
		return err
	}
	if err := s.config.Update(ctx, cfg); err != nil {
		return err
	}

	applyErr := s.coordinator.Apply(ctx, prev, cfg)
	if prev.MaxHistoryCount != cfg.MaxHistoryCount {
		s.notify(types.SignalHistoryChanged)
	}
	return applyErr
}

func validateConfig(cfg types.AppConfig) error {
	if cfg.MaxHistoryCount <= 0 {
		return &types.ConfigError{
			Op:      types.ConfigOpValidate,
			Message: fmt.Sprintf("max history count must be positive, got %d", cfg.MaxHistoryCount),
		}
	}
	if !cfg.Theme.Valid() {
		return &types.ConfigError{
			Op:      types.ConfigOpValidate,
			Message: fmt.Sprintf("unknown theme preset %q", cfg.Theme),
		}
	}
	return nil
}

// CopyToClipboard writes content to the system clipboard. The history is not
// touched; the change detector records the write on its next cycle.
func (s *ClipboardService) CopyToClipboard(ctx context.Context, content string, kind types.Kind) error {
	payload, err := types.DecodePayload(content, kind)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	switch p := payload.(type) {
	case types.TextPayload:
		err = s.backend.WriteText(string(p))
	case types.ImagePayload:
		err = s.backend.WriteImage(p)
	}
	if err != nil {
		var ioErr *types.ClipboardIOError
		if errors.As(err, &ioErr) {
			return err
		}
		return &types.ClipboardIOError{Op: "write " + kind.String(), Err: err}
	}

	slog.Debug("clipboard written", "kind", kind, "size", len(content))
	return nil
}

// CopyEntry copies a stored entry back to the system clipboard.
func (s *ClipboardService) CopyEntry(ctx context.Context, id uint64) error {
	entry, err := s.history.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.CopyToClipboard(ctx, entry.Content, entry.Kind)
}

// handleClipboardChange stores a detected clip. Oversized content is skipped.
func (s *ClipboardService) handleClipboardChange(clip types.Clip) {
	id, err := s.history.Insert(s.ctx, clip.Content, clip.Kind)
	switch {
	case errors.Is(err, storage.ErrContentTooLarge):
		slog.Warn("content too large to store", "kind", clip.Kind, "size", len(clip.Content))
		return
	case errors.Is(err, storage.ErrEmptyContent):
		return
	case err != nil:
		slog.Error("failed to store clipboard content", "kind", clip.Kind, "err", err)
		return
	}

	slog.Debug("stored clipboard content", "id", id, "kind", clip.Kind, "size", len(clip.Content))
	s.notify(types.SignalHistoryChanged)
}

func (s *ClipboardService) notify(signal types.Signal) {
	s.mu.RLock()
	handlers := make([]NotificationHandler, len(s.handlers))
	copy(handlers, s.handlers)
	s.mu.RUnlock()

	for _, h := range handlers {
		h.HandleNotification(signal)
	}
}
