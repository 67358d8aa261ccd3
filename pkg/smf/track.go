package smf

import (
	"errors"
	"fmt"
	"io"
	"iter"
)

// runningStatus is the last status byte seen on a track, split into its
// nibbles.
type runningStatus struct {
	channel byte
	opcode  byte
	valid   bool
}

// TrackStream decodes one track's events on demand. It is a forward-only
// cursor; create a new one from the same Track to traverse again.
type TrackStream struct {
	src    *BytesSource
	status runningStatus
	err    error // terminal state: io.EOF after End-Of-Track, *Error otherwise
	count  int
}

// NewTrackStream returns a decoder positioned at the start of t.
func NewTrackStream(t Track) *TrackStream {
	return &TrackStream{src: NewBytesSource(t)}
}

// Next decodes the next event. It returns io.EOF once the End-Of-Track
// meta event has been consumed. Any other error is an *Error and ends the
// stream; running out of bytes is reported as ErrTruncated (or
// ErrNoEndOfTrack on an event boundary) so it cannot be mistaken for a
// normal end. After the stream ends every call returns the same error.
func (s *TrackStream) Next() (Event, error) {
	if s.err != nil {
		return Event{}, s.err
	}
	ev, err := s.decode()
	if err != nil {
		s.err = err
		return Event{}, err
	}
	s.count++
	return ev, nil
}

// Err returns nil if the stream is still open or ended with End-Of-Track,
// and the terminal error otherwise.
func (s *TrackStream) Err() error {
	if s.err == nil || errors.Is(s.err, io.EOF) {
		return nil
	}
	return s.err
}

// Done reports whether the stream has ended, normally or not.
func (s *TrackStream) Done() bool {
	return s.err != nil
}

// All yields events until the stream ends. Check Err afterwards.
func (s *TrackStream) All() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for {
			ev, err := s.Next()
			if err != nil {
				return
			}
			if !yield(ev) {
				return
			}
		}
	}
}

func (s *TrackStream) fail(kind ErrorKind, offset int64, err error) *Error {
	return newError(kind, fmt.Sprintf("event %d", s.count), offset, err)
}

// readByte reads one byte of the current event; the track ending here is
// always a truncation.
func (s *TrackStream) readByte() (byte, error) {
	b, err := s.src.ReadByte()
	if err != nil {
		return 0, s.fail(KindTruncated, s.src.Offset(), err)
	}
	return b, nil
}

// readData reads a data byte. Data bytes have the top bit clear, so
// anything else is a status byte out of place.
func (s *TrackStream) readData() (byte, error) {
	offset := s.src.Offset()
	b, err := s.readByte()
	if err != nil {
		return 0, err
	}
	if b&0x80 != 0 {
		return 0, s.fail(KindDecode, offset, fmt.Errorf("%w: status byte 0x%02X where data byte expected", ErrUnsupportedEvent, b))
	}
	return b, nil
}

func (s *TrackStream) readVarLen() (uint32, error) {
	start := s.src.Offset()
	v, err := ReadVarLen(s.src)
	if err != nil {
		if IsTruncated(err) {
			return 0, s.fail(KindTruncated, start, err)
		}
		return 0, s.fail(KindDecode, start, err)
	}
	return v, nil
}

func (s *TrackStream) decode() (Event, error) {
	start := s.src.Offset()
	if s.src.Remaining() == 0 {
		return Event{}, s.fail(KindTruncated, start, ErrNoEndOfTrack)
	}

	delay, err := s.readVarLen()
	if err != nil {
		return Event{}, err
	}

	data1, err := s.readByte()
	if err != nil {
		return Event{}, err
	}
	if data1&0x80 != 0 {
		s.status = runningStatus{
			channel: data1 & 0x0F,
			opcode:  data1 >> 4,
			valid:   true,
		}
		if data1, err = s.readData(); err != nil {
			return Event{}, err
		}
	} else if !s.status.valid {
		return Event{}, s.fail(KindDecode, start, fmt.Errorf("%w: running status before any status byte", ErrUnsupportedEvent))
	}

	status := s.status
	var typ EventType

	switch status.opcode {
	case 0x8, 0x9, 0xA:
		velocity, err := s.readData()
		if err != nil {
			return Event{}, err
		}
		kind := Aftertouch
		switch {
		case status.opcode == 0x8:
			kind = Release
		case status.opcode == 0x9 && velocity == 0:
			kind = Release
		case status.opcode == 0x9:
			kind = Press
		}
		typ = Key{Kind: kind, Note: Note(data1), Velocity: velocity}

	case 0xB:
		value, err := s.readData()
		if err != nil {
			return Event{}, err
		}
		typ = ControlChange{Controller: data1, Value: value}

	case 0xC:
		typ = PatchChange{Program: data1}

	case 0xD:
		typ = ChannelAftertouch{Pressure: data1}

	case 0xE:
		low, err := s.readData()
		if err != nil {
			return Event{}, err
		}
		typ = PitchWheelChange{Value: uint16(data1&0x7F)<<7 | uint16(low&0x7F)}

	case 0xF:
		if status.channel != 0xF {
			return Event{}, s.fail(KindDecode, start, fmt.Errorf("%w: system message 0x%X%X", ErrUnsupportedEvent, status.opcode, status.channel))
		}
		meta, err := s.decodeMeta(data1)
		if err != nil {
			return Event{}, err
		}
		typ = meta

	default:
		return Event{}, s.fail(KindDecode, start, fmt.Errorf("%w: opcode 0x%X", ErrUnsupportedEvent, status.opcode))
	}

	return Event{Delay: delay, Channel: status.channel, Type: typ}, nil
}

// decodeMeta reads the rest of a meta event whose type byte has been read.
// End-Of-Track yields io.EOF.
func (s *TrackStream) decodeMeta(metaType byte) (EventType, error) {
	if metaType == MetaEndOfTrack {
		offset := s.src.Offset()
		terminator, err := s.readByte()
		if err != nil {
			return nil, err
		}
		if terminator != 0 {
			return nil, s.fail(KindDecode, offset, fmt.Errorf("%w: end-of-track length %d, want 0", ErrUnsupportedEvent, terminator))
		}
		return nil, io.EOF
	}

	length, err := s.readVarLen()
	if err != nil {
		return nil, err
	}
	if int(length) > s.src.Remaining() {
		return nil, s.fail(KindTruncated, s.src.Offset(), fmt.Errorf("%w: meta event declares %d bytes, %d left", ErrTruncated, length, s.src.Remaining()))
	}
	data := make([]byte, length)
	if err := s.src.ReadFull(data); err != nil {
		return nil, s.fail(KindTruncated, s.src.Offset(), err)
	}
	return Meta{Type: metaType, Data: data}, nil
}
