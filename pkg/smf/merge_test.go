package smf

import (
	"errors"
	"testing"
)

// noteTrack returns a track with one note-on per delay, followed by
// End-Of-Track.
func noteTrack(channel byte, delays ...uint32) Track {
	var out []byte
	for i, d := range delays {
		out = append(out, encodeVarLen(d)...)
		out = append(out, 0x90|channel, byte(60+i), 100)
	}
	return Track(append(out, endOfTrack...))
}

func mergeAll(m *MergedStream) []TrackEvent {
	var out []TrackEvent
	for te := range m.All() {
		out = append(out, te)
	}
	return out
}

func TestMergedStreamOrdersByFirstDelay(t *testing.T) {
	f := &File{Tracks: []Track{noteTrack(0, 5), noteTrack(1, 0), noteTrack(2, 3)}}
	got := mergeAll(f.Merged())

	want := []struct {
		track int
		time  uint64
	}{{1, 0}, {2, 3}, {0, 5}}
	if len(got) != len(want) {
		t.Fatalf("got %d events, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Track != w.track || got[i].Time != w.time {
			t.Errorf("event %d: track %d at %d, want track %d at %d", i, got[i].Track, got[i].Time, w.track, w.time)
		}
	}
}

func TestMergedStreamAbsoluteTime(t *testing.T) {
	f := &File{Tracks: []Track{noteTrack(0, 10, 10, 0, 5), noteTrack(1, 15, 10)}}
	got := mergeAll(f.Merged())

	want := []struct {
		track int
		time  uint64
	}{{0, 10}, {1, 15}, {0, 20}, {0, 20}, {0, 25}, {1, 25}}
	if len(got) != len(want) {
		t.Fatalf("got %d events, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Track != w.track || got[i].Time != w.time {
			t.Errorf("event %d: track %d at %d, want track %d at %d", i, got[i].Track, got[i].Time, w.track, w.time)
		}
	}
}

func TestMergedStreamTieBreak(t *testing.T) {
	f := &File{Tracks: []Track{noteTrack(0, 4), noteTrack(1, 4), noteTrack(2, 4), noteTrack(3, 0)}}
	got := mergeAll(f.Merged())

	order := []int{3, 0, 1, 2}
	for i, track := range order {
		if got[i].Track != track {
			t.Errorf("position %d: track %d, want %d", i, got[i].Track, track)
		}
	}
}

func TestMergedStreamKeepsErrorsObservable(t *testing.T) {
	broken := Track(track(
		[]byte{0x02, 0x91, 64, 90},
		[]byte{0x01, 0xF0, 0x01, 0xF7},
	))
	empty := Track(nil)
	f := &File{Tracks: []Track{noteTrack(0, 0, 10), broken, empty, noteTrack(3, 1)}}

	m := f.Merged()
	if m.Active() != 3 {
		t.Errorf("Active() = %d, want 3", m.Active())
	}
	if !errors.Is(m.Err(2), ErrNoEndOfTrack) {
		t.Errorf("Err(2) = %v, want ErrNoEndOfTrack", m.Err(2))
	}

	got := mergeAll(m)
	if len(got) != 4 {
		t.Fatalf("got %d events, want 4", len(got))
	}
	var fromBroken int
	for _, te := range got {
		if te.Track == 1 {
			fromBroken++
		}
	}
	if fromBroken != 1 {
		t.Errorf("broken track contributed %d events, want 1", fromBroken)
	}
	if m.Active() != 0 {
		t.Errorf("Active() = %d after draining", m.Active())
	}

	if !errors.Is(m.Err(1), ErrUnsupportedEvent) {
		t.Errorf("Err(1) = %v, want ErrUnsupportedEvent", m.Err(1))
	}
	for _, track := range []int{0, 3} {
		if err := m.Err(track); err != nil {
			t.Errorf("Err(%d) = %v, want nil", track, err)
		}
	}

	errs := m.Errs()
	if len(errs) != 2 {
		t.Errorf("len(Errs()) = %d, want 2", len(errs))
	}
	delete(errs, 1)
	if m.Err(1) == nil {
		t.Error("Errs() should return a copy")
	}
}

func TestMergedStreamEmpty(t *testing.T) {
	m := NewMergedStream(nil)
	if _, ok := m.Next(); ok {
		t.Error("empty merge should yield nothing")
	}
	if len(m.Errs()) != 0 {
		t.Error("empty merge should have no errors")
	}
}

func TestMergedStreamStopsEarly(t *testing.T) {
	f := &File{Tracks: []Track{noteTrack(0, 1, 1, 1), noteTrack(1, 1, 1, 1)}}
	m := f.Merged()
	var n int
	for range m.All() {
		n++
		if n == 2 {
			break
		}
	}
	// Iteration can resume where it stopped.
	if rest := mergeAll(m); len(rest) != 4 {
		t.Errorf("got %d remaining events, want 4", len(rest))
	}
}
