package clipboard

import (
	"bytes"
	"fmt"
	"image/png"

	"golang.org/x/image/tiff"
)

// tiffToPNG re-encodes a TIFF image as PNG, the one image format entries and
// backends exchange.
func tiffToPNG(data []byte) ([]byte, error) {
	img, err := tiff.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode tiff: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
