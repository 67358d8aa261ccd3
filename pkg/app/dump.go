package app

import (
	"fmt"

	"github.com/zurustar/smfstream/pkg/cli"
	"github.com/zurustar/smfstream/pkg/smf"
)

// Dump is the serialisable view of a decoded file.
type Dump struct {
	Path      string      `yaml:"path,omitempty"` // set when dumping a directory
	Error     string      `yaml:"error,omitempty"`
	Format    uint16      `yaml:"format"`
	Division  string      `yaml:"division"`
	Tracks    []TrackDump `yaml:"tracks,omitempty"`
	Merged    *MergedDump `yaml:"merged,omitempty"`
	Forwarded *int        `yaml:"forwarded,omitempty"` // messages sent to the synthesizer
}

// TrackDump lists one track's events in file order.
type TrackDump struct {
	Index  int           `yaml:"index"`
	Events []EventRecord `yaml:"events"`
	Error  string        `yaml:"error,omitempty"`
}

// MergedDump lists all tracks' events in time order.
type MergedDump struct {
	Events []EventRecord  `yaml:"events"`
	Errors map[int]string `yaml:"errors,omitempty"`
}

// EventRecord is one event with its absolute time.
type EventRecord struct {
	Track   int    `yaml:"track"`
	Time    uint64 `yaml:"time"`
	Delay   uint32 `yaml:"delay"`
	Channel uint8  `yaml:"channel"`
	Kind    string `yaml:"kind"`
	Detail  string `yaml:"detail"`
}

func (app *Application) buildDump(file *smf.File) (*Dump, error) {
	dump := &Dump{
		Format:   file.Format,
		Division: file.TimeDivision().String(),
	}

	if app.config.Merged {
		dump.Merged = app.mergedDump(file)
		return dump, nil
	}

	if app.config.Track != cli.AllTracks {
		ts, err := file.Track(app.config.Track)
		if err != nil {
			return nil, err
		}
		dump.Tracks = []TrackDump{app.trackDump(app.config.Track, ts)}
		return dump, nil
	}

	for i, ts := range file.TrackStreams() {
		dump.Tracks = append(dump.Tracks, app.trackDump(i, ts))
	}
	return dump, nil
}

func (app *Application) trackDump(index int, ts *smf.TrackStream) TrackDump {
	td := TrackDump{Index: index, Events: []EventRecord{}}
	var now uint64
	for ev := range ts.All() {
		now += uint64(ev.Delay)
		td.Events = append(td.Events, app.record(index, now, ev))
	}
	if err := ts.Err(); err != nil {
		app.log.Warn("Track decode failed", "track", index, "error", err)
		td.Error = err.Error()
	}
	return td
}

func (app *Application) mergedDump(file *smf.File) *MergedDump {
	m := file.Merged()
	md := &MergedDump{Events: []EventRecord{}}
	for te := range m.All() {
		md.Events = append(md.Events, app.record(te.Track, te.Time, te.Event))
	}
	if errs := m.Errs(); len(errs) > 0 {
		md.Errors = make(map[int]string, len(errs))
		for track, err := range errs {
			md.Errors[track] = err.Error()
		}
	}
	return md
}

func (app *Application) record(track int, time uint64, ev smf.Event) EventRecord {
	kind, detail := app.describe(ev.Type)
	return EventRecord{
		Track:   track,
		Time:    time,
		Delay:   ev.Delay,
		Channel: ev.Channel,
		Kind:    kind,
		Detail:  detail,
	}
}

// describe returns a short kind label and a human-readable payload.
func (app *Application) describe(t smf.EventType) (string, string) {
	switch v := t.(type) {
	case smf.Key:
		return v.Kind.String(), fmt.Sprintf("note=%s(%d) velocity=%d", v.Note.Name(), v.Note, v.Velocity)
	case smf.ControlChange:
		return "ControlChange", fmt.Sprintf("controller=%d value=%d", v.Controller, v.Value)
	case smf.PatchChange:
		return "PatchChange", fmt.Sprintf("program=%d", v.Program)
	case smf.ChannelAftertouch:
		return "ChannelAftertouch", fmt.Sprintf("pressure=%d", v.Pressure)
	case smf.PitchWheelChange:
		return "PitchWheelChange", fmt.Sprintf("value=%d", v.Value)
	case smf.Meta:
		if v.IsText() {
			text, err := v.Text(app.enc)
			if err == nil {
				return "Meta", fmt.Sprintf("type=0x%02X text=%q", v.Type, text)
			}
			app.log.Debug("Meta text not decodable", "type", v.Type, "error", err)
		}
		return "Meta", fmt.Sprintf("type=0x%02X data=% X", v.Type, v.Data)
	default:
		return "Unknown", fmt.Sprint(t)
	}
}
