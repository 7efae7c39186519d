// Package clipboard reads and writes the system clipboard and watches it for
// changes. Build constraints select the backend:
//
//	backend_darwin.go  macOS via darwinkit's NSPasteboard bindings
//	backend_native.go  Linux and Windows via golang.design/x/clipboard
//	backend_other.go   everything else, headless
package clipboard

// Backend is the clipboard I/O collaborator. Reads report ok=false when the
// clipboard holds nothing of that kind; a non-nil error is a transient
// access failure.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	ReadText() (string, bool, error)
	ReadImage() ([]byte, bool, error)
	WriteText(text string) error
	WriteImage(png []byte) error

	// Close releases any resources held by the backend.
	Close()
}

// headlessBackend is a no-op clipboard backend for environments without a
// display server (headless Linux servers, containers, CI).
type headlessBackend struct{}

func (headlessBackend) Name() string                     { return "headless (no-op)" }
func (headlessBackend) ReadText() (string, bool, error)  { return "", false, nil }
func (headlessBackend) ReadImage() ([]byte, bool, error) { return nil, false, nil }
func (headlessBackend) WriteText(string) error           { return nil }
func (headlessBackend) WriteImage([]byte) error          { return nil }
func (headlessBackend) Close()                           {}

// Headless returns the no-op backend.
func Headless() Backend { return headlessBackend{} }
