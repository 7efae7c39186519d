package types

import (
	"encoding/base64"
	"fmt"
	"time"
)

// Kind identifies what an entry's content holds.
type Kind uint8

const (
	KindText Kind = iota + 1
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k == KindText || k == KindImage
}

// ParseKind converts the persisted/wire name of a kind back into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "text":
		return KindText, nil
	case "image":
		return KindImage, nil
	default:
		return 0, fmt.Errorf("unknown content kind %q", s)
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid content kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Entry is one clipboard history record.
type Entry struct {
	ID        uint64    `json:"id"`
	Content   string    `json:"content"` // raw text, or base64 for images
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	Pinned    bool      `json:"pinned"`
}

// Clip is a change observed on the system clipboard, not yet stored.
type Clip struct {
	Kind       Kind
	Content    string
	ObservedAt time.Time
}

// Payload is a clipboard value in one of its two shapes.
type Payload interface {
	Kind() Kind
	// Encode returns the form stored in Entry.Content.
	Encode() string

	payload()
}

// TextPayload is plain clipboard text.
type TextPayload string

func (TextPayload) Kind() Kind       { return KindText }
func (p TextPayload) Encode() string { return string(p) }
func (TextPayload) payload()         {}

// ImagePayload is an opaque encoded image blob (PNG on every backend).
type ImagePayload []byte

func (ImagePayload) Kind() Kind       { return KindImage }
func (p ImagePayload) Encode() string { return base64.StdEncoding.EncodeToString(p) }
func (ImagePayload) payload()         {}

// DecodePayload turns stored content back into the payload it was encoded from.
func DecodePayload(content string, kind Kind) (Payload, error) {
	switch kind {
	case KindText:
		return TextPayload(content), nil
	case KindImage:
		blob, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return nil, fmt.Errorf("decode image content: %w", err)
		}
		return ImagePayload(blob), nil
	default:
		return nil, fmt.Errorf("invalid content kind %d", uint8(kind))
	}
}
