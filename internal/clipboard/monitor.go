package clipboard

import (
	"clipboard-history/pkg/types"
	"context"
	"crypto/sha256"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultPollInterval is how often the clipboard is sampled.
const DefaultPollInterval = 1000 * time.Millisecond

// Monitor watches the clipboard and reports new content.
type Monitor interface {
	Start(ctx context.Context) error
	Stop() error
	OnChange(handler func(types.Clip))
}

// PollMonitor samples a Backend on a fixed interval and emits a Clip each
// time the text or the image differs from the last one seen.
type PollMonitor struct {
	backend  Backend
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	handler func(types.Clip)
	cancel  context.CancelFunc
	done    chan struct{}

	// last-seen snapshot, touched only by the poll goroutine
	lastText  string
	lastImage [sha256.Size]byte
	seenImage bool
}

// Option configures a PollMonitor.
type Option func(*PollMonitor)

// WithInterval overrides DefaultPollInterval.
func WithInterval(d time.Duration) Option {
	return func(m *PollMonitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

func NewMonitor(backend Backend, opts ...Option) *PollMonitor {
	m := &PollMonitor{
		backend:  backend,
		interval: DefaultPollInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *PollMonitor) OnChange(handler func(types.Clip)) {
	m.mu.Lock()
	m.handler = handler
	m.mu.Unlock()
}

// Start runs the poll loop in the background until ctx is cancelled or Stop
// is called.
func (m *PollMonitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return errors.New("monitor already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done

	go func() {
		defer close(done)
		m.run(ctx)
	}()

	slog.Debug("clipboard monitor started", "backend", m.backend.Name(), "interval", m.interval)
	return nil
}

// Stop cancels the poll loop and waits for it to exit.
func (m *PollMonitor) Stop() error {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

func (m *PollMonitor) run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.poll()
		}
	}
}

// poll runs one detection cycle. The text check always precedes the image
// check. A failed read skips only its own check for this cycle.
func (m *PollMonitor) poll() {
	text, ok, err := m.backend.ReadText()
	switch {
	case err != nil:
		slog.Debug("clipboard text read failed, skipping cycle", "err", err)
	case ok && text != "" && text != m.lastText:
		m.lastText = text
		m.emit(types.Clip{Kind: types.KindText, Content: text, ObservedAt: m.now()})
	}

	img, ok, err := m.backend.ReadImage()
	switch {
	case err != nil:
		slog.Debug("clipboard image read failed, skipping cycle", "err", err)
	case ok && len(img) > 0:
		fp := sha256.Sum256(img)
		if m.seenImage && fp == m.lastImage {
			return
		}
		m.lastImage, m.seenImage = fp, true
		m.emit(types.Clip{Kind: types.KindImage, Content: types.ImagePayload(img).Encode(), ObservedAt: m.now()})
	}
}

func (m *PollMonitor) emit(clip types.Clip) {
	m.mu.Lock()
	handler := m.handler
	m.mu.Unlock()

	slog.Debug("clipboard change detected", "kind", clip.Kind, "size", len(clip.Content))
	if handler != nil {
		handler(clip)
	}
}
