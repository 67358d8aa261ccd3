package smf

import "encoding/binary"

// encodeVarLen is the inverse of ReadVarLen for values below 2^28.
func encodeVarLen(v uint32) []byte {
	out := []byte{byte(v & 0x7F)}
	for v >>= 7; v > 0; v >>= 7 {
		out = append([]byte{byte(v&0x7F) | 0x80}, out...)
	}
	return out
}

// endOfTrack is a zero-delay End-Of-Track meta event.
var endOfTrack = []byte{0x00, 0xFF, 0x2F, 0x00}

// buildHeader returns an MThd chunk.
func buildHeader(format, tracks, division uint16) []byte {
	b := []byte("MThd")
	b = binary.BigEndian.AppendUint32(b, 6)
	b = binary.BigEndian.AppendUint16(b, format)
	b = binary.BigEndian.AppendUint16(b, tracks)
	b = binary.BigEndian.AppendUint16(b, division)
	return b
}

// buildChunk wraps payload in an MTrk chunk.
func buildChunk(payload []byte) []byte {
	b := []byte("MTrk")
	b = binary.BigEndian.AppendUint32(b, uint32(len(payload)))
	return append(b, payload...)
}

// buildFile assembles a complete file with the given track payloads.
func buildFile(format, division uint16, tracks ...[]byte) []byte {
	b := buildHeader(format, uint16(len(tracks)), division)
	for _, t := range tracks {
		b = append(b, buildChunk(t)...)
	}
	return b
}

// track concatenates event byte groups.
func track(events ...[]byte) []byte {
	var out []byte
	for _, e := range events {
		out = append(out, e...)
	}
	return out
}

// collect drains s and returns its events and its terminal error.
func collect(s *TrackStream) ([]Event, error) {
	var events []Event
	for {
		ev, err := s.Next()
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
}
