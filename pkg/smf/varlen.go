package smf

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// maxVarLenBytes is the longest variable-length quantity SMF allows (28 bits).
const maxVarLenBytes = 4

// ReadVarLen decodes a variable-length quantity: base-128, most significant
// group first, with the top bit of each byte set on all but the last.
func ReadVarLen(src ByteSource) (uint32, error) {
	var value uint32
	for i := 0; i < maxVarLenBytes; i++ {
		b, err := src.ReadByte()
		if err != nil {
			return 0, err
		}
		value = value<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return value, nil
		}
	}
	return 0, fmt.Errorf("%w: variable-length quantity longer than %d bytes", ErrUnsupportedEvent, maxVarLenBytes)
}

// readUint16 reads a big-endian 16-bit value.
func readUint16(src ByteSource) (uint16, error) {
	var buf [2]byte
	if err := src.ReadFull(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

// readUint32 reads a big-endian 32-bit value.
func readUint32(src ByteSource) (uint32, error) {
	var buf [4]byte
	if err := src.ReadFull(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// readChunkID reads a four character chunk identifier. Identifiers are
// plain ASCII; anything else is reported as ErrInvalidText.
func readChunkID(src ByteSource) (string, error) {
	var buf [4]byte
	if err := src.ReadFull(buf[:]); err != nil {
		return "", err
	}
	for _, b := range buf {
		if b >= utf8.RuneSelf {
			return "", fmt.Errorf("%w: chunk id % X", ErrInvalidText, buf)
		}
	}
	return string(buf[:]), nil
}
