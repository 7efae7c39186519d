//go:build linux || windows

package clipboard

import (
	"clipboard-history/pkg/types"
	"errors"
	"log/slog"

	"golang.design/x/clipboard"
)

type nativeBackend struct{}

// NewBackend returns the golang.design clipboard backend, or the headless
// backend if the display environment is unavailable.
func NewBackend() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return Headless()
	}
	return nativeBackend{}
}

func (nativeBackend) Name() string { return "native clipboard (poll)" }

func (nativeBackend) ReadText() (string, bool, error) {
	text := clipboard.Read(clipboard.FmtText)
	if len(text) == 0 {
		return "", false, nil
	}
	return string(text), true, nil
}

func (nativeBackend) ReadImage() ([]byte, bool, error) {
	img := clipboard.Read(clipboard.FmtImage)
	if len(img) == 0 {
		return nil, false, nil
	}
	return img, true, nil
}

// Write returns a nil channel when the platform rejected the write.
func (nativeBackend) WriteText(text string) error {
	if clipboard.Write(clipboard.FmtText, []byte(text)) == nil {
		return &types.ClipboardIOError{Op: "write text", Err: errors.New("clipboard rejected write")}
	}
	return nil
}

func (nativeBackend) WriteImage(png []byte) error {
	if clipboard.Write(clipboard.FmtImage, png) == nil {
		return &types.ClipboardIOError{Op: "write image", Err: errors.New("clipboard rejected write")}
	}
	return nil
}

func (nativeBackend) Close() {}
