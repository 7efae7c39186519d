//go:build darwin

package clipboard

import (
	"clipboard-history/pkg/types"
	"crypto/sha256"
	"errors"
	"runtime"
	"sync"

	"github.com/progrium/darwinkit/macos/appkit"
)

const (
	pasteboardTypeText = appkit.PasteboardType("public.utf8-plain-text")
	pasteboardTypePNG  = appkit.PasteboardType("public.png")
	pasteboardTypeTIFF = appkit.PasteboardType("public.tiff")
)

type darwinBackend struct {
	mu         sync.Mutex
	pasteboard appkit.Pasteboard

	// last TIFF seen and its PNG form, so an unchanged pasteboard is not
	// re-encoded every cycle
	lastTIFF [sha256.Size]byte
	lastPNG  []byte
}

func init() {
	// Ensure we're on the main thread for AppKit operations
	runtime.LockOSThread()
}

// NewBackend returns the NSPasteboard backend.
func NewBackend() Backend {
	return &darwinBackend{
		pasteboard: appkit.Pasteboard_GeneralPasteboard(),
	}
}

func (b *darwinBackend) Name() string { return "macOS pasteboard (poll)" }

func (b *darwinBackend) ReadText() (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	text := b.pasteboard.StringForType(pasteboardTypeText)
	return text, text != "", nil
}

func (b *darwinBackend) ReadImage() ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if data := b.pasteboard.DataForType(pasteboardTypePNG); len(data) > 0 {
		return data, true, nil
	}

	// Screenshots and some apps only offer TIFF.
	data := b.pasteboard.DataForType(pasteboardTypeTIFF)
	if len(data) == 0 {
		return nil, false, nil
	}
	fp := sha256.Sum256(data)
	if b.lastPNG != nil && fp == b.lastTIFF {
		return b.lastPNG, true, nil
	}
	png, err := tiffToPNG(data)
	if err != nil {
		return nil, false, &types.ClipboardIOError{Op: "read image", Err: err}
	}
	b.lastTIFF, b.lastPNG = fp, png
	return png, true, nil
}

func (b *darwinBackend) WriteText(text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pasteboard.ClearContents()
	if !b.pasteboard.SetStringForType(text, pasteboardTypeText) {
		return &types.ClipboardIOError{Op: "write text", Err: errors.New("pasteboard rejected write")}
	}
	return nil
}

func (b *darwinBackend) WriteImage(png []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pasteboard.ClearContents()
	if !b.pasteboard.SetDataForType(png, pasteboardTypePNG) {
		return &types.ClipboardIOError{Op: "write image", Err: errors.New("pasteboard rejected write")}
	}
	return nil
}

func (b *darwinBackend) Close() {}
