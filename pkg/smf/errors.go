package smf

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a reader failure.
type ErrorKind string

const (
	// Parse-time errors - no File is produced
	KindStructural ErrorKind = "STRUCTURAL"
	KindVersion    ErrorKind = "VERSION"
	KindEncoding   ErrorKind = "ENCODING"

	// Either parse-time or decode-time
	KindTruncated ErrorKind = "TRUNCATED"

	// Decode-time errors - fatal for one track only
	KindDecode ErrorKind = "DECODE"
)

var (
	// ErrHeaderInvalid is returned when the MThd chunk is malformed.
	ErrHeaderInvalid = errors.New("invalid header chunk")

	// ErrTrackInvalid is returned when a track chunk does not start with MTrk.
	ErrTrackInvalid = errors.New("invalid track chunk")

	// ErrUnsupportedVersion is returned for format values outside 0..2.
	ErrUnsupportedVersion = errors.New("unsupported format version")

	// ErrTruncated is returned when the input ends before a read is satisfied.
	ErrTruncated = errors.New("unexpected end of data")

	// ErrNoEndOfTrack is returned when a track's payload runs out on an event
	// boundary without an End-Of-Track meta event. It matches ErrTruncated.
	ErrNoEndOfTrack = fmt.Errorf("%w: track has no end-of-track event", ErrTruncated)

	// ErrUnsupportedEvent is returned for opcodes the decoder cannot handle,
	// SysEx included.
	ErrUnsupportedEvent = errors.New("unsupported event")

	// ErrInvalidText is returned when bytes expected to be text are not
	// valid in the expected encoding.
	ErrInvalidText = errors.New("invalid text encoding")
)

// Error describes where and why reading failed.
type Error struct {
	Kind   ErrorKind
	Op     string // what was being read, e.g. "header", "track 2", "event"
	Offset int64  // byte offset in the source or track, -1 if unknown
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("[%s] smf: %s at offset %d: %v", e.Kind, e.Op, e.Offset, e.Err)
	}
	return fmt.Sprintf("[%s] smf: %s: %v", e.Kind, e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsFatal reports whether the error aborts a whole parse rather than a
// single track.
func (e *Error) IsFatal() bool {
	switch e.Kind {
	case KindStructural, KindVersion, KindEncoding:
		return true
	default:
		return false
	}
}

func newError(kind ErrorKind, op string, offset int64, err error) *Error {
	return &Error{Kind: kind, Op: op, Offset: offset, Err: err}
}

// wrapRead turns a ByteSource failure into an *Error, classifying short
// reads as truncation.
func wrapRead(kind ErrorKind, op string, offset int64, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, ErrTruncated) {
		kind = KindTruncated
	}
	return newError(kind, op, offset, err)
}

// KindOf returns the ErrorKind carried by err, or "" when err is not an
// *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsTruncated reports whether err was caused by running out of data.
func IsTruncated(err error) bool {
	return errors.Is(err, ErrTruncated)
}
