package smf

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Meta event types.
const (
	MetaSequenceNumber byte = 0x00
	MetaText           byte = 0x01
	MetaCopyright      byte = 0x02
	MetaTrackName      byte = 0x03
	MetaInstrumentName byte = 0x04
	MetaLyric          byte = 0x05
	MetaMarker         byte = 0x06
	MetaCuePoint       byte = 0x07
	MetaChannelPrefix  byte = 0x20
	MetaEndOfTrack     byte = 0x2F
	MetaTempo          byte = 0x51
	MetaSMPTEOffset    byte = 0x54
	MetaTimeSignature  byte = 0x58
	MetaKeySignature   byte = 0x59
	MetaSequencer      byte = 0x7F
)

// IsText reports whether the meta event carries text (types 0x01-0x0F).
func (m Meta) IsText() bool {
	return m.Type >= 0x01 && m.Type <= 0x0F
}

// Text decodes the payload of a text meta event. With a nil encoding the
// payload must already be valid UTF-8; otherwise it is converted from enc.
// Older Japanese files typically need Shift_JIS.
func (m Meta) Text(enc encoding.Encoding) (string, error) {
	if !m.IsText() {
		return "", fmt.Errorf("%w: meta type 0x%02X is not text", ErrUnsupportedEvent, m.Type)
	}
	return DecodeText(m.Data, enc)
}

// DecodeText converts data from enc to a UTF-8 string.
func DecodeText(data []byte, enc encoding.Encoding) (string, error) {
	if enc == nil {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: not valid UTF-8", ErrInvalidText)
		}
		return string(data), nil
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidText, err)
	}
	return string(out), nil
}

// TextEncoding looks up an encoding by its WHATWG name or alias, such as
// "shift_jis", "windows-1252" or "utf-8". An empty name returns nil, which
// Text treats as strict UTF-8.
func TextEncoding(name string) (encoding.Encoding, error) {
	if name == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown text encoding %q: %w", name, err)
	}
	return enc, nil
}
