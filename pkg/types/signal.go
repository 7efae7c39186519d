package types

// Signal is pushed to notification handlers.
type Signal uint8

const (
	// SignalHistoryChanged follows any insert, delete, pin or retention change.
	SignalHistoryChanged Signal = iota + 1
	// SignalShowRequested follows a global hotkey press.
	SignalShowRequested
)

func (s Signal) String() string {
	switch s {
	case SignalHistoryChanged:
		return "history_changed"
	case SignalShowRequested:
		return "show_requested"
	default:
		return "unknown"
	}
}
