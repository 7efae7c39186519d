// Package tui is a terminal browser over the clipboard history.
package tui

import (
	"clipboard-history/pkg/types"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/gdamore/tcell/v2"
)

// Service is what the browser needs from the clipboard service.
type Service interface {
	ListHistory(ctx context.Context, limit int) ([]types.Entry, error)
	TogglePin(ctx context.Context, id uint64) error
	Delete(ctx context.Context, id uint64) error
	CopyEntry(ctx context.Context, id uint64) error
	GetConfig(ctx context.Context) (types.AppConfig, error)
	UpdateConfig(ctx context.Context, cfg types.AppConfig) error
}

type view int

const (
	viewHistory view = iota
	viewPinned
	viewSettings
)

var viewNames = []string{"History", "Pinned", "Settings"}

const (
	settingMaxHistory = iota
	settingHotkey
	settingTheme
)

var settingNames = []string{"max_history_count", "hotkey", "theme"}

// signalEvent carries a service notification into the event loop.
type signalEvent struct {
	tcell.EventTime
	signal types.Signal
}

// Browser lists history entries and lets the user copy, pin and delete them.
// Tab switches between all entries and pinned ones; s opens the settings.
// It implements service.NotificationHandler so it redraws when history
// changes and jumps to the top when the global hotkey is pressed.
type Browser struct {
	svc    Service
	screen tcell.Screen

	mu      sync.Mutex // guards running
	running bool

	all        []types.Entry
	entries    []types.Entry // all, narrowed by filter
	selected   int
	offset     int
	filterMode bool
	filter     string
	status     string
	view       view

	cfg     types.AppConfig
	setting int // selected settings row
	editing bool
	edit    string
}

// New initializes screen, or the terminal when screen is nil.
func New(svc Service, screen tcell.Screen) (*Browser, error) {
	if screen == nil {
		var err error
		screen, err = tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("failed to create screen: %w", err)
		}
	}

	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize screen: %w", err)
	}

	screen.SetStyle(tcell.StyleDefault.
		Background(tcell.ColorReset).
		Foreground(tcell.ColorReset))

	return &Browser{
		svc:    svc,
		screen: screen,
		cfg:    types.DefaultAppConfig(),
	}, nil
}

// HandleNotification implements service.NotificationHandler.
func (b *Browser) HandleNotification(signal types.Signal) {
	b.mu.Lock()
	running := b.running
	b.mu.Unlock()
	if !running {
		return
	}

	ev := &signalEvent{signal: signal}
	ev.SetEventNow()
	// PostEvent fails only when the queue is full; the next signal redraws.
	_ = b.screen.PostEvent(ev)
}

// Run draws and handles input until the user quits or ctx is cancelled.
func (b *Browser) Run(ctx context.Context) error {
	defer b.screen.Fini()

	b.mu.Lock()
	b.running = true
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		b.running = false
		b.mu.Unlock()
	}()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = b.screen.PostEvent(tcell.NewEventInterrupt(nil))
		case <-done:
		}
	}()

	if cfg, err := b.svc.GetConfig(ctx); err == nil {
		b.cfg = cfg
	}
	if err := b.load(ctx); err != nil {
		return err
	}

	for {
		b.draw()

		switch ev := b.screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventInterrupt:
			if ctx.Err() != nil {
				return nil
			}
		case *tcell.EventResize:
			b.screen.Sync()
		case *signalEvent:
			if ev.signal == types.SignalShowRequested {
				b.selected, b.offset = 0, 0
				if b.view == viewSettings {
					b.view, b.editing = viewHistory, false
				}
			}
			if err := b.load(ctx); err != nil {
				return err
			}
		case *tcell.EventKey:
			var quit bool
			switch {
			case b.filterMode:
				b.handleFilterKey(ev)
			case b.view == viewSettings:
				quit = b.handleSettingsKey(ctx, ev)
			default:
				quit = b.handleKey(ctx, ev)
			}
			if quit {
				return nil
			}
		}
	}
}

func (b *Browser) handleFilterKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		b.filterMode = false
		b.filter = ""
	case tcell.KeyEnter:
		b.filterMode = false
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(b.filter) > 0 {
			r := []rune(b.filter)
			b.filter = string(r[:len(r)-1])
		}
	case tcell.KeyRune:
		b.filter += string(ev.Rune())
	}
	b.applyFilter()
}

func (b *Browser) handleKey(ctx context.Context, ev *tcell.EventKey) (quit bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp, tcell.KeyCtrlP:
		b.moveSelection(-1)
	case tcell.KeyDown, tcell.KeyCtrlN:
		b.moveSelection(1)
	case tcell.KeyHome:
		b.moveSelection(-len(b.entries))
	case tcell.KeyEnd:
		b.moveSelection(len(b.entries))
	case tcell.KeyPgUp:
		b.moveSelection(-10)
	case tcell.KeyPgDn:
		b.moveSelection(10)
	case tcell.KeyEnter:
		b.act(ctx, "copied", b.svc.CopyEntry)
	case tcell.KeyTab:
		if b.view == viewHistory {
			b.setView(viewPinned)
		} else {
			b.setView(viewHistory)
		}
	case tcell.KeyDelete:
		b.act(ctx, "deleted", b.svc.Delete)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'j':
			b.moveSelection(1)
		case 'k':
			b.moveSelection(-1)
		case 'g':
			b.moveSelection(-len(b.entries))
		case 'G':
			b.moveSelection(len(b.entries))
		case 'p':
			b.act(ctx, "pin toggled", b.svc.TogglePin)
		case 'd':
			b.act(ctx, "deleted", b.svc.Delete)
		case 'r':
			if err := b.load(ctx); err != nil {
				b.status = err.Error()
			}
		case '/':
			b.filterMode = true
			b.filter = ""
		case 's':
			b.openSettings(ctx)
		case 'q':
			return true
		}
	}
	return false
}

func (b *Browser) setView(v view) {
	b.view = v
	b.selected, b.offset = 0, 0
	b.applyFilter()
}

func (b *Browser) openSettings(ctx context.Context) {
	if cfg, err := b.svc.GetConfig(ctx); err == nil {
		b.cfg = cfg
	} else {
		b.status = err.Error()
	}
	b.view = viewSettings
	b.editing = false
}

func (b *Browser) handleSettingsKey(ctx context.Context, ev *tcell.EventKey) (quit bool) {
	if b.editing {
		switch ev.Key() {
		case tcell.KeyEscape:
			b.editing = false
		case tcell.KeyEnter:
			b.editing = false
			b.saveSetting(ctx, b.edit)
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			if r := []rune(b.edit); len(r) > 0 {
				b.edit = string(r[:len(r)-1])
			}
		case tcell.KeyRune:
			b.edit += string(ev.Rune())
		}
		return false
	}

	switch ev.Key() {
	case tcell.KeyCtrlC:
		return true
	case tcell.KeyEscape, tcell.KeyTab:
		b.setView(viewHistory)
	case tcell.KeyUp, tcell.KeyCtrlP:
		b.moveSetting(-1)
	case tcell.KeyDown, tcell.KeyCtrlN:
		b.moveSetting(1)
	case tcell.KeyEnter:
		b.editSetting(ctx)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'k':
			b.moveSetting(-1)
		case 'j':
			b.moveSetting(1)
		case 's':
			b.setView(viewHistory)
		case 'q':
			return true
		}
	}
	return false
}

func (b *Browser) moveSetting(delta int) {
	b.setting = max(0, min(len(settingNames)-1, b.setting+delta))
}

// editSetting opens the selected row for typing. The theme row cycles
// through the presets instead.
func (b *Browser) editSetting(ctx context.Context) {
	if b.setting == settingTheme {
		next := types.Themes[0]
		for i, t := range types.Themes {
			if t == b.cfg.Theme {
				next = types.Themes[(i+1)%len(types.Themes)]
			}
		}
		b.saveSetting(ctx, string(next))
		return
	}
	b.editing = true
	b.edit = b.settingValue(b.setting)
}

func (b *Browser) settingValue(i int) string {
	switch i {
	case settingMaxHistory:
		return strconv.Itoa(b.cfg.MaxHistoryCount)
	case settingHotkey:
		return b.cfg.Hotkey
	default:
		return string(b.cfg.Theme)
	}
}

// saveSetting stores value in the selected row. The service keeps a config
// whose hotkey failed to register, so the stored config is re-read either way.
func (b *Browser) saveSetting(ctx context.Context, value string) {
	cfg := b.cfg
	value = strings.TrimSpace(value)
	switch b.setting {
	case settingMaxHistory:
		n, err := strconv.Atoi(value)
		if err != nil {
			b.status = fmt.Sprintf("max_history_count must be a number, got %q", value)
			return
		}
		cfg.MaxHistoryCount = n
	case settingHotkey:
		cfg.Hotkey = value
	case settingTheme:
		t, err := types.ParseTheme(value)
		if err != nil {
			b.status = err.Error()
			return
		}
		cfg.Theme = t
	}

	err := b.svc.UpdateConfig(ctx, cfg)
	if stored, gerr := b.svc.GetConfig(ctx); gerr == nil {
		b.cfg = stored
	}
	if err != nil {
		b.status = err.Error()
		return
	}
	b.status = "saved " + settingNames[b.setting]
}

// act runs op on the selected entry. Mutations reload through the
// history-changed notification.
func (b *Browser) act(ctx context.Context, done string, op func(context.Context, uint64) error) {
	if len(b.entries) == 0 {
		return
	}
	e := b.entries[b.selected]
	if err := op(ctx, e.ID); err != nil {
		b.status = err.Error()
		return
	}
	b.status = fmt.Sprintf("%s #%d", done, e.ID)
}

func (b *Browser) load(ctx context.Context) error {
	entries, err := b.svc.ListHistory(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	b.all = entries
	b.applyFilter()
	return nil
}

// applyFilter narrows all to the current tab and filter text.
func (b *Browser) applyFilter() {
	needle := strings.ToLower(b.filter)
	b.entries = b.entries[:0:0]
	for _, e := range b.all {
		if b.view == viewPinned && !e.Pinned {
			continue
		}
		if needle != "" && (e.Kind != types.KindText || !strings.Contains(strings.ToLower(e.Content), needle)) {
			continue
		}
		b.entries = append(b.entries, e)
	}
	b.moveSelection(0)
}

func (b *Browser) moveSelection(delta int) {
	b.selected += delta
	if b.selected >= len(b.entries) {
		b.selected = len(b.entries) - 1
	}
	if b.selected < 0 {
		b.selected = 0
	}

	// Adjust offset for scrolling
	_, height := b.screen.Size()
	visibleHeight := height - 5 // header and footer
	if visibleHeight < 1 {
		visibleHeight = 1
	}

	if b.selected-b.offset >= visibleHeight {
		b.offset = b.selected - visibleHeight + 1
	} else if b.selected < b.offset {
		b.offset = b.selected
	}
}

func (b *Browser) headerStyle() tcell.Style {
	switch b.cfg.Theme {
	case types.ThemePurpleGradient:
		return tcell.StyleDefault.Background(tcell.ColorMediumPurple).Foreground(tcell.ColorWhite)
	case types.ThemeDeepPurple:
		return tcell.StyleDefault.Background(tcell.ColorRebeccaPurple).Foreground(tcell.ColorWhite)
	case types.ThemeMidnightBlue:
		return tcell.StyleDefault.Background(tcell.ColorMidnightBlue).Foreground(tcell.ColorWhite)
	default:
		return tcell.StyleDefault.Reverse(true)
	}
}

func (b *Browser) draw() {
	b.screen.Clear()
	width, height := b.screen.Size()

	drawString(b.screen, 0, 0, strings.Repeat(" ", width), b.headerStyle())
	drawStringCenter(b.screen, 0, " Clipboard History ", b.headerStyle())

	helpStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	help := "↑↓/jk:Move  Enter:Copy  p:Pin  d:Delete  /:Filter  Tab:View  s:Settings  q:Quit"
	if b.view == viewSettings {
		help = "↑↓/jk:Select  Enter:Edit  Esc:Back  q:Quit"
	}
	drawStringCenter(b.screen, 1, help, helpStyle)

	if b.filterMode || b.filter != "" {
		drawString(b.screen, 0, 2, fmt.Sprintf(" Filter: %s█", b.filter), tcell.StyleDefault.Reverse(true))
	} else {
		b.drawTabs(width)
	}

	if b.view == viewSettings {
		b.drawSettings(height)
		b.screen.Show()
		return
	}

	visibleHeight := height - 5
	end := b.offset + visibleHeight
	if end > len(b.entries) {
		end = len(b.entries)
	}

	for i, e := range b.entries[b.offset:end] {
		style := tcell.StyleDefault
		if i+b.offset == b.selected {
			style = style.Reverse(true)
		}

		pin := " "
		if e.Pinned {
			pin = "*"
		}
		line := fmt.Sprintf(" %s %-5d %-5s  %s", pin, e.ID, e.Kind, Preview(e, width-20))
		drawString(b.screen, 0, i+3, line, style)
	}

	if b.status != "" {
		drawString(b.screen, 0, height-1, " "+b.status, tcell.StyleDefault.Foreground(tcell.ColorGreen))
	}
	if len(b.entries) > 0 {
		pos := fmt.Sprintf(" %d/%d ", b.selected+1, len(b.entries))
		drawString(b.screen, width-len(pos), height-1, pos, tcell.StyleDefault)
	}

	b.screen.Show()
}

func (b *Browser) drawTabs(width int) {
	drawString(b.screen, 0, 2, strings.Repeat("─", width), tcell.StyleDefault)
	x := 1
	for i, name := range viewNames {
		style := tcell.StyleDefault
		if view(i) == b.view {
			style = b.headerStyle()
		}
		label := " " + name + " "
		drawString(b.screen, x, 2, label, style)
		x += len(label) + 1
	}
}

func (b *Browser) drawSettings(height int) {
	for i, name := range settingNames {
		style := tcell.StyleDefault
		if i == b.setting {
			style = style.Reverse(true)
		}
		value := b.settingValue(i)
		if b.editing && i == b.setting {
			value = b.edit + "█"
		}
		drawString(b.screen, 0, i+3, fmt.Sprintf(" %-18s %s", name, value), style)
	}
	if b.status != "" {
		drawString(b.screen, 0, height-1, " "+b.status, tcell.StyleDefault.Foreground(tcell.ColorGreen))
	}
}

// Preview renders an entry on one line, at most max runes wide.
func Preview(e types.Entry, max int) string {
	if e.Kind == types.KindImage {
		return fmt.Sprintf("[image %s]", formatSize(len(e.Content)*3/4))
	}

	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if !unicode.IsPrint(r) {
			return -1
		}
		return r
	}, e.Content)
	s = strings.Join(strings.Fields(s), " ")

	r := []rune(s)
	if max > 3 && len(r) > max {
		return string(r[:max-3]) + "..."
	}
	return s
}

func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func drawString(s tcell.Screen, x, y int, str string, style tcell.Style) {
	for _, r := range str {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

func drawStringCenter(s tcell.Screen, y int, str string, style tcell.Style) {
	w, _ := s.Size()
	x := (w - len([]rune(str))) / 2
	if x < 0 {
		x = 0
	}
	drawString(s, x, y, str, style)
}
