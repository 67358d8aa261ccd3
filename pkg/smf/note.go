package smf

import (
	"math"
	"sync"

	"gitlab.com/gomidi/midi/v2"
)

// Note is a MIDI key number in 0..127.
type Note uint8

// Frequency returns the pitch in Hz according to the current PitchMapper.
func (n Note) Frequency() float64 {
	return currentPitchMapper().Frequency(n)
}

// Name returns the letter-octave spelling according to the current
// PitchMapper.
func (n Note) Name() string {
	return currentPitchMapper().LetterOctave(n)
}

func (n Note) String() string {
	return n.Name()
}

// FrequencyWith returns the pitch in Hz according to m, leaving the
// package-level mapper alone.
func (n Note) FrequencyWith(m PitchMapper) float64 {
	return m.Frequency(n)
}

// NameWith returns the letter-octave spelling according to m.
func (n Note) NameWith(m PitchMapper) string {
	return m.LetterOctave(n)
}

// PitchMapper converts key numbers into pitch information.
type PitchMapper interface {
	Frequency(n Note) float64
	LetterOctave(n Note) string
}

// EqualTemperament maps keys to twelve-tone equal temperament with key 69
// tuned to A4Hz. Names come from gomidi.
type EqualTemperament struct {
	A4Hz float64
}

func (t EqualTemperament) Frequency(n Note) float64 {
	a4 := t.A4Hz
	if a4 <= 0 {
		a4 = 440
	}
	return a4 * math.Pow(2, (float64(n)-69)/12)
}

func (EqualTemperament) LetterOctave(n Note) string {
	return midi.Note(n).String()
}

var (
	pitchMu     sync.RWMutex
	pitchMapper PitchMapper = EqualTemperament{A4Hz: 440}
)

// SetPitchMapper replaces the mapper used by Note.Frequency and Note.Name.
// A nil mapper restores the default. The mapper is process-wide
// presentation configuration; decoding never consults it, so streams
// share no state through it. Use FrequencyWith or NameWith for a mapper
// scoped to one caller.
func SetPitchMapper(m PitchMapper) {
	pitchMu.Lock()
	defer pitchMu.Unlock()
	if m == nil {
		m = EqualTemperament{A4Hz: 440}
	}
	pitchMapper = m
}

func currentPitchMapper() PitchMapper {
	pitchMu.RLock()
	defer pitchMu.RUnlock()
	return pitchMapper
}
