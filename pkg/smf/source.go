package smf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
)

// ByteSource produces bytes on demand. A read that cannot be fully
// satisfied fails with an error wrapping ErrTruncated; other I/O errors are
// passed through wrapped.
type ByteSource interface {
	// ReadByte returns the next byte.
	ReadByte() (byte, error)
	// ReadFull fills p completely or fails.
	ReadFull(p []byte) error
	// Offset returns the number of bytes consumed so far.
	Offset() int64
}

// BytesSource reads from an in-memory buffer.
type BytesSource struct {
	data []byte
	pos  int
}

// NewBytesSource returns a ByteSource over data. The slice is not copied.
func NewBytesSource(data []byte) *BytesSource {
	return &BytesSource{data: data}
}

func (s *BytesSource) ReadByte() (byte, error) {
	if s.pos >= len(s.data) {
		return 0, ErrTruncated
	}
	b := s.data[s.pos]
	s.pos++
	return b, nil
}

func (s *BytesSource) ReadFull(p []byte) error {
	if len(s.data)-s.pos < len(p) {
		s.pos = len(s.data)
		return fmt.Errorf("%w: wanted %d bytes", ErrTruncated, len(p))
	}
	copy(p, s.data[s.pos:])
	s.pos += len(p)
	return nil
}

func (s *BytesSource) Offset() int64 {
	return int64(s.pos)
}

// Remaining reports how many unread bytes are left.
func (s *BytesSource) Remaining() int {
	return len(s.data) - s.pos
}

// ReaderSource reads from an io.Reader such as an open file.
type ReaderSource struct {
	r   *bufio.Reader
	off int64
}

// NewReaderSource returns a buffered ByteSource over r.
func NewReaderSource(r io.Reader) *ReaderSource {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &ReaderSource{r: br}
}

func (s *ReaderSource) ReadByte() (byte, error) {
	b, err := s.r.ReadByte()
	if err != nil {
		return 0, readError(err)
	}
	s.off++
	return b, nil
}

func (s *ReaderSource) ReadFull(p []byte) error {
	n, err := io.ReadFull(s.r, p)
	s.off += int64(n)
	if err != nil {
		return readError(err)
	}
	return nil
}

func (s *ReaderSource) Offset() int64 {
	return s.off
}

func readError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return fmt.Errorf("read failed: %w", err)
}

// SeqSource reads from a generic byte sequence.
// Close must be called if the sequence is not read to the end.
type SeqSource struct {
	next func() (byte, bool)
	stop func()
	off  int64
}

// NewSeqSource returns a ByteSource pulling from seq.
func NewSeqSource(seq iter.Seq[byte]) *SeqSource {
	next, stop := iter.Pull(seq)
	return &SeqSource{next: next, stop: stop}
}

func (s *SeqSource) ReadByte() (byte, error) {
	b, ok := s.next()
	if !ok {
		return 0, ErrTruncated
	}
	s.off++
	return b, nil
}

func (s *SeqSource) ReadFull(p []byte) error {
	for i := range p {
		b, ok := s.next()
		if !ok {
			return fmt.Errorf("%w: wanted %d bytes, got %d", ErrTruncated, len(p), i)
		}
		p[i] = b
		s.off++
	}
	return nil
}

func (s *SeqSource) Offset() int64 {
	return s.off
}

// Close releases the underlying sequence.
func (s *SeqSource) Close() error {
	s.stop()
	return nil
}
