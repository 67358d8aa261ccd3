package smf

import "fmt"

// Ticks counts MIDI clock ticks. Whether it is a delta or an absolute time
// depends on where it is used.
type Ticks = uint32

// KeyKind tells what happened to a key.
type KeyKind uint8

const (
	Press KeyKind = iota
	Release
	Aftertouch
)

func (k KeyKind) String() string {
	switch k {
	case Press:
		return "Press"
	case Release:
		return "Release"
	case Aftertouch:
		return "Aftertouch"
	default:
		return fmt.Sprintf("KeyKind(%d)", uint8(k))
	}
}

// EventType is the payload of an Event. It is implemented by Key,
// ControlChange, PatchChange, ChannelAftertouch, PitchWheelChange and Meta.
type EventType interface {
	eventType()
	String() string
}

// Key is a note on, note off or polyphonic aftertouch message.
type Key struct {
	Kind     KeyKind
	Note     Note
	Velocity byte
}

// ControlChange sets a controller value.
type ControlChange struct {
	Controller byte
	Value      byte
}

// PatchChange selects a program.
type PatchChange struct {
	Program byte
}

// ChannelAftertouch applies pressure to the whole channel.
type ChannelAftertouch struct {
	Pressure byte
}

// PitchWheelChange carries a 14-bit wheel position, 0x2000 being centred.
type PitchWheelChange struct {
	Value uint16
}

// Meta is a non-playback event such as a track name or tempo.
type Meta struct {
	Type byte
	Data []byte
}

func (Key) eventType()               {}
func (ControlChange) eventType()     {}
func (PatchChange) eventType()       {}
func (ChannelAftertouch) eventType() {}
func (PitchWheelChange) eventType()  {}
func (Meta) eventType()              {}

func (k Key) String() string {
	return fmt.Sprintf("Key{%s note=%s velocity=%d}", k.Kind, k.Note, k.Velocity)
}

func (c ControlChange) String() string {
	return fmt.Sprintf("ControlChange{controller=%d value=%d}", c.Controller, c.Value)
}

func (p PatchChange) String() string {
	return fmt.Sprintf("PatchChange{program=%d}", p.Program)
}

func (c ChannelAftertouch) String() string {
	return fmt.Sprintf("ChannelAftertouch{pressure=%d}", c.Pressure)
}

func (p PitchWheelChange) String() string {
	return fmt.Sprintf("PitchWheelChange{value=%d}", p.Value)
}

func (m Meta) String() string {
	if m.IsText() {
		if s, err := m.Text(nil); err == nil {
			return fmt.Sprintf("Meta{type=0x%02X text=%q}", m.Type, s)
		}
	}
	return fmt.Sprintf("Meta{type=0x%02X data=% X}", m.Type, m.Data)
}

// Event is one decoded track event.
type Event struct {
	Delay   Ticks // ticks since the previous event on the same track
	Channel byte  // 0..15
	Type    EventType
}

func (e Event) String() string {
	return fmt.Sprintf("+%d ch%d %s", e.Delay, e.Channel, e.Type)
}

// Track is the raw payload of one MTrk chunk. It is never modified after
// parsing and can be decoded any number of times.
type Track []byte

// File is a parsed Standard MIDI File. Tracks hold raw, undecoded bytes.
type File struct {
	Format   uint16
	Division Ticks
	Tracks   []Track
}

// Track returns a fresh decoder over track i.
func (f *File) Track(i int) (*TrackStream, error) {
	if i < 0 || i >= len(f.Tracks) {
		return nil, fmt.Errorf("track index %d out of range [0,%d)", i, len(f.Tracks))
	}
	return NewTrackStream(f.Tracks[i]), nil
}

// TrackStreams returns a fresh decoder for every track, in file order.
func (f *File) TrackStreams() []*TrackStream {
	streams := make([]*TrackStream, len(f.Tracks))
	for i, t := range f.Tracks {
		streams[i] = NewTrackStream(t)
	}
	return streams
}

// Merged returns a time-ordered stream over all tracks.
func (f *File) Merged() *MergedStream {
	return NewMergedStream(f.TrackStreams())
}

// TimeDivision interprets the Division field.
func (f *File) TimeDivision() Division {
	return Division(f.Division)
}
