package smf

import (
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// プロパティ1: 可変長数値のラウンドトリップ
// 0から2^28-1までの任意の値について、最短の符号化を読み戻すと元の値になる
func TestProperty_VarLenRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 1000

	properties := gopter.NewProperties(parameters)

	properties.Property("ReadVarLen inverts the minimal encoding", prop.ForAll(
		func(n uint32) bool {
			encoded := encodeVarLen(n)
			if len(encoded) > maxVarLenBytes {
				return false
			}
			src := NewBytesSource(encoded)
			got, err := ReadVarLen(src)
			return err == nil && got == n && src.Remaining() == 0
		},
		gen.UInt32Range(0, 1<<28-1),
	))

	properties.TestingRun(t)
}

// プロパティ2: ランニングステータスの等価性
// 同じステータスが続くイベント列は、ステータスを省略しても同じイベント列に復号される
func TestProperty_RunningStatusEquivalence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("omitting repeated status bytes does not change the events", prop.ForAll(
		func(status uint8, values []uint8, delays []uint32) bool {
			// Key, control change and pitch wheel messages carry two data bytes.
			status = []uint8{0x80, 0x90, 0xA0, 0xB0, 0xE0}[status%5] | status>>4
			var explicit, compressed []byte
			for i := 0; i+1 < len(values); i += 2 {
				delay := encodeVarLen(delays[(i/2)%len(delays)])
				explicit = append(explicit, delay...)
				explicit = append(explicit, status, values[i], values[i+1])
				compressed = append(compressed, delay...)
				if i == 0 {
					compressed = append(compressed, status)
				}
				compressed = append(compressed, values[i], values[i+1])
			}
			explicit = append(explicit, endOfTrack...)
			compressed = append(compressed, endOfTrack...)

			a, errA := collect(NewTrackStream(explicit))
			b, errB := collect(NewTrackStream(compressed))
			if !errors.Is(errA, io.EOF) || !errors.Is(errB, io.EOF) {
				return false
			}
			return reflect.DeepEqual(a, b) && len(a) == len(values)/2
		},
		gen.UInt8(),
		gen.SliceOf(gen.UInt8Range(0, 127)),
		gen.SliceOfN(4, gen.UInt32Range(0, 1<<21)),
	))

	properties.TestingRun(t)
}

// プロパティ3: ベロシティ0のノートオンは常にReleaseになる
func TestProperty_VelocityZeroNeverPress(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("note on with velocity 0 decodes as Release", prop.ForAll(
		func(channel, note uint8) bool {
			s := NewTrackStream(track([]byte{0x00, 0x90 | channel, note, 0x00}, endOfTrack))
			ev, err := s.Next()
			if err != nil {
				return false
			}
			key, ok := ev.Type.(Key)
			return ok && key.Kind == Release && key.Note == Note(note) && ev.Channel == channel
		},
		gen.UInt8Range(0, 15),
		gen.UInt8Range(0, 127),
	))

	properties.TestingRun(t)
}

// プロパティ4: マージ順序
// 任意のトラック群について、マージ結果は (時刻, トラック番号) の昇順で、全イベントを含む
func TestProperty_MergeOrdering(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("merged events are ordered by time then track", prop.ForAll(
		func(trackDelays [][]uint32) bool {
			f := &File{}
			var total int
			want := make([][]uint64, len(trackDelays))
			for i, delays := range trackDelays {
				if len(delays) > 60 {
					delays = delays[:60]
				}
				f.Tracks = append(f.Tracks, noteTrack(uint8(i%16), delays...))
				total += len(delays)
				var now uint64
				for _, d := range delays {
					now += uint64(d)
					want[i] = append(want[i], now)
				}
			}

			got := mergeAll(f.Merged())
			if len(got) != total {
				return false
			}
			seen := make([]int, len(trackDelays))
			for i, te := range got {
				if i > 0 {
					prev := got[i-1]
					if te.Time < prev.Time || (te.Time == prev.Time && te.Track < prev.Track) {
						return false
					}
				}
				// Each track's own events keep their absolute times.
				if te.Time != want[te.Track][seen[te.Track]] {
					return false
				}
				seen[te.Track]++
			}
			return true
		},
		gen.SliceOfN(6, gen.SliceOf(gen.UInt32Range(0, 50))),
	))

	properties.TestingRun(t)
}
