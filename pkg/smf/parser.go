package smf

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/zurustar/smfstream/pkg/fileutil"
	"github.com/zurustar/smfstream/pkg/logger"
)

const (
	headerChunkID  = "MThd"
	trackChunkID   = "MTrk"
	headerChunkLen = 6
	maxFormat      = 2
)

// Parse reads the header chunk and every declared track chunk from src.
// Track payloads are copied verbatim and not interpreted. On any failure
// no File is returned.
func Parse(src ByteSource) (*File, error) {
	log := logger.GetLogger()

	id, err := readChunkID(src)
	if err != nil {
		return nil, chunkIDError("header", src.Offset(), err)
	}
	if id != headerChunkID {
		return nil, newError(KindStructural, "header", 0, fmt.Errorf("%w: magic %q", ErrHeaderInvalid, id))
	}

	length, err := readUint32(src)
	if err != nil {
		return nil, wrapRead(KindStructural, "header length", src.Offset(), err)
	}
	if length != headerChunkLen {
		return nil, newError(KindStructural, "header length", 4, fmt.Errorf("%w: length %d, want %d", ErrHeaderInvalid, length, headerChunkLen))
	}

	format, err := readUint16(src)
	if err != nil {
		return nil, wrapRead(KindStructural, "format", src.Offset(), err)
	}
	if format > maxFormat {
		return nil, newError(KindVersion, "format", 8, fmt.Errorf("%w: %d", ErrUnsupportedVersion, format))
	}

	trackCount, err := readUint16(src)
	if err != nil {
		return nil, wrapRead(KindStructural, "track count", src.Offset(), err)
	}

	division, err := readUint16(src)
	if err != nil {
		return nil, wrapRead(KindStructural, "division", src.Offset(), err)
	}

	log.Debug("SMF header parsed", "format", format, "tracks", trackCount, "division", division)

	tracks := make([]Track, 0, trackCount)
	for i := 0; i < int(trackCount); i++ {
		op := fmt.Sprintf("track %d", i)
		start := src.Offset()

		id, err := readChunkID(src)
		if err != nil {
			return nil, chunkIDError(op, start, err)
		}
		if id != trackChunkID {
			return nil, newError(KindStructural, op, start, fmt.Errorf("%w: magic %q", ErrTrackInvalid, id))
		}

		length, err := readUint32(src)
		if err != nil {
			return nil, wrapRead(KindStructural, op+" length", src.Offset(), err)
		}

		payload, err := readPayload(src, length)
		if err != nil {
			return nil, wrapRead(KindStructural, op+" payload", src.Offset(), err)
		}

		log.Debug("Track chunk parsed", "index", i, "length", length)
		tracks = append(tracks, Track(payload))
	}

	return &File{
		Format:   format,
		Division: Ticks(division),
		Tracks:   tracks,
	}, nil
}

// payloadStep bounds each read so a corrupt length cannot force a huge
// allocation before the source runs dry.
const payloadStep = 64 * 1024

func readPayload(src ByteSource, length uint32) ([]byte, error) {
	if bs, ok := src.(*BytesSource); ok && int64(bs.Remaining()) < int64(length) {
		return nil, fmt.Errorf("%w: chunk declares %d bytes, %d left", ErrTruncated, length, bs.Remaining())
	}
	// int64 keeps a declared length above 2^31 positive on 32-bit targets.
	payload := make([]byte, 0, min(int64(length), payloadStep))
	for remaining := int64(length); remaining > 0; {
		n := min(remaining, payloadStep)
		start := len(payload)
		payload = append(payload, make([]byte, n)...)
		if err := src.ReadFull(payload[start:]); err != nil {
			return nil, err
		}
		remaining -= n
	}
	return payload, nil
}

func chunkIDError(op string, offset int64, err error) *Error {
	if errors.Is(err, ErrInvalidText) {
		return newError(KindEncoding, op, offset, err)
	}
	return wrapRead(KindStructural, op, offset, err)
}

// ParseBytes parses an in-memory file.
func ParseBytes(data []byte) (*File, error) {
	return Parse(NewBytesSource(data))
}

// ParseReader parses a file from r.
func ParseReader(r io.Reader) (*File, error) {
	return Parse(NewReaderSource(r))
}

// ParseFile opens and parses the file at path.
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open MIDI file: %w", err)
	}
	defer f.Close()
	return ParseReader(f)
}

// OpenFS parses name from fsys. The name is matched case-insensitively,
// which old titles with inconsistent file name casing need.
func OpenFS(fsys fs.FS, name string) (*File, error) {
	f, err := fileutil.OpenInsensitive(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to open MIDI file: %w", err)
	}
	defer f.Close()
	return ParseReader(f)
}
