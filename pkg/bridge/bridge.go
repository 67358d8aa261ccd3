// Package bridge forwards decoded SMF events to a software synthesizer.
// Timing is left to the caller: Dispatch sends an event immediately.
package bridge

import (
	"errors"
	"fmt"

	"github.com/sinshu/go-meltysynth/meltysynth"
	"gitlab.com/gomidi/midi/v2"

	"github.com/zurustar/smfstream/pkg/logger"
	"github.com/zurustar/smfstream/pkg/smf"
)

// ErrNotChannelMessage is returned for messages a synthesizer cannot take,
// such as meta events or system messages.
var ErrNotChannelMessage = errors.New("not a channel voice message")

// Synthesizer receives raw channel voice messages.
type Synthesizer interface {
	ProcessMidiMessage(channel int32, command int32, data1 int32, data2 int32)
}

var _ Synthesizer = (*meltysynth.Synthesizer)(nil)

// Message converts a channel event into a gomidi message. Meta events have
// no wire form here and return false.
func Message(ev smf.Event) (midi.Message, bool) {
	ch := ev.Channel & 0x0F
	switch t := ev.Type.(type) {
	case smf.Key:
		switch t.Kind {
		case smf.Press:
			return midi.NoteOn(ch, uint8(t.Note), t.Velocity), true
		case smf.Release:
			return midi.Message{0x80 | ch, uint8(t.Note) & 0x7F, t.Velocity & 0x7F}, true
		default:
			return midi.PolyAfterTouch(ch, uint8(t.Note), t.Velocity), true
		}
	case smf.ControlChange:
		return midi.ControlChange(ch, t.Controller, t.Value), true
	case smf.PatchChange:
		return midi.ProgramChange(ch, t.Program), true
	case smf.ChannelAftertouch:
		return midi.AfterTouch(ch, t.Pressure), true
	case smf.PitchWheelChange:
		return midi.Message{0xE0 | ch, byte(t.Value>>7) & 0x7F, byte(t.Value) & 0x7F}, true
	default:
		return nil, false
	}
}

// Bridge forwards messages to a Synthesizer.
type Bridge struct {
	synth Synthesizer
	sent  int
}

// NewMIDIBridge returns a bridge writing to synth, typically a
// *meltysynth.Synthesizer.
func NewMIDIBridge(synth Synthesizer) *Bridge {
	return &Bridge{synth: synth}
}

// Write forwards one channel voice message.
func (b *Bridge) Write(msg midi.Message) error {
	if len(msg) < 2 || msg[0] < 0x80 || msg[0] >= 0xF0 {
		return fmt.Errorf("%w: % X", ErrNotChannelMessage, []byte(msg))
	}
	channel := int32(msg[0] & 0x0F)
	command := int32(msg[0] & 0xF0)
	data1 := int32(msg[1])
	var data2 int32
	if len(msg) > 2 {
		data2 = int32(msg[2])
	}
	b.synth.ProcessMidiMessage(channel, command, data1, data2)
	b.sent++
	return nil
}

// Dispatch converts ev and forwards it. Meta events are skipped without
// error.
func (b *Bridge) Dispatch(ev smf.Event) error {
	msg, ok := Message(ev)
	if !ok {
		return nil
	}
	return b.Write(msg)
}

// Drain dispatches every event of a merged stream in order and returns the
// number of messages sent. Tracks that failed to decode are reported by the
// stream itself; Drain logs them and keeps going.
func (b *Bridge) Drain(m *smf.MergedStream) (int, error) {
	start := b.sent
	for te := range m.All() {
		if err := b.Dispatch(te.Event); err != nil {
			return b.sent - start, fmt.Errorf("track %d at tick %d: %w", te.Track, te.Time, err)
		}
	}
	for track, err := range m.Errs() {
		logger.GetLogger().Warn("Track ended with error during drain", "track", track, "error", err)
	}
	return b.sent - start, nil
}

// Sent returns the number of messages forwarded so far.
func (b *Bridge) Sent() int {
	return b.sent
}
