package smf

import "fmt"

// Division is the header's timing field. With the top bit clear it counts
// ticks per quarter note; with it set the high byte is a negative SMPTE
// frame rate and the low byte the ticks per frame.
type Division uint16

// TicksPerQuarterNote returns the metrical resolution. ok is false for
// SMPTE divisions.
func (d Division) TicksPerQuarterNote() (ticks uint16, ok bool) {
	if d&0x8000 != 0 {
		return 0, false
	}
	return uint16(d), true
}

// SMPTE returns frames per second and ticks per frame. ok is false for
// metrical divisions.
func (d Division) SMPTE() (fps, ticksPerFrame uint8, ok bool) {
	if d&0x8000 == 0 {
		return 0, 0, false
	}
	return uint8(-int8(d >> 8)), uint8(d & 0xFF), true
}

func (d Division) String() string {
	if tpq, ok := d.TicksPerQuarterNote(); ok {
		return fmt.Sprintf("%d ticks per quarter note", tpq)
	}
	fps, tpf, _ := d.SMPTE()
	return fmt.Sprintf("%d frames per second, %d ticks per frame", fps, tpf)
}
