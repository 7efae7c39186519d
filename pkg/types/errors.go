package types

import "fmt"

// StorageError reports a failed read or write against the durable store.
type StorageError struct {
	Op  string // Operation that failed
	Err error  // Underlying error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ConfigError ops.
const (
	ConfigOpValidate = "validate" // rejected before any side effect
	ConfigOpRegister = "register" // hotkey could not be registered
)

// ConfigError reports an invalid configuration value or a hotkey that could
// not be registered.
type ConfigError struct {
	Op      string // Operation that failed
	Hotkey  string // Hotkey involved (if applicable)
	Message string // Error message
	Err     error  // Underlying error
}

func (e *ConfigError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Hotkey != "" {
		return fmt.Sprintf("config: %s failed for hotkey %q: %s", e.Op, e.Hotkey, msg)
	}
	return fmt.Sprintf("config: %s failed: %s", e.Op, msg)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ClipboardIOError reports a transient failure talking to the OS clipboard.
type ClipboardIOError struct {
	Op  string
	Err error
}

func (e *ClipboardIOError) Error() string {
	return fmt.Sprintf("clipboard: %s failed: %v", e.Op, e.Err)
}

func (e *ClipboardIOError) Unwrap() error {
	return e.Err
}
