package smf

import (
	"container/heap"
	"iter"

	"github.com/zurustar/smfstream/pkg/logger"
)

// TrackEvent is an event taken from a merged stream.
type TrackEvent struct {
	Track int    // index of the source stream
	Time  uint64 // absolute tick time
	Event Event
}

// pending is the next event of one track, waiting in the queue.
type pending struct {
	time  uint64
	track int
	event Event
}

// eventQueue is a min-heap ordered by (time, track).
type eventQueue []pending

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].time != q[j].time {
		return q[i].time < q[j].time
	}
	return q[i].track < q[j].track
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) { *q = append(*q, x.(pending)) }

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// MergedStream interleaves several track streams into one sequence ordered
// by absolute time, ties going to the lower track index. At most one event
// per track is buffered.
type MergedStream struct {
	streams []*TrackStream
	queue   eventQueue
	errs    map[int]error
}

// NewMergedStream takes ownership of streams and reads the first event of
// each. Streams that produce no event are left out from the start.
func NewMergedStream(streams []*TrackStream) *MergedStream {
	m := &MergedStream{
		streams: streams,
		queue:   make(eventQueue, 0, len(streams)),
		errs:    make(map[int]error),
	}
	for i, s := range streams {
		ev, err := s.Next()
		if err != nil {
			m.drop(i)
			continue
		}
		// The first delay is itself an offset from the start of the track.
		m.queue = append(m.queue, pending{time: uint64(ev.Delay), track: i, event: ev})
	}
	heap.Init(&m.queue)
	return m
}

// Next returns the earliest pending event. ok is false once every track is
// exhausted.
func (m *MergedStream) Next() (te TrackEvent, ok bool) {
	if m.queue.Len() == 0 {
		return TrackEvent{}, false
	}
	top := m.queue[0]
	te = TrackEvent{Track: top.track, Time: top.time, Event: top.event}

	next, err := m.streams[top.track].Next()
	if err != nil {
		heap.Pop(&m.queue)
		m.drop(top.track)
		return te, true
	}
	m.queue[0] = pending{time: top.time + uint64(next.Delay), track: top.track, event: next}
	heap.Fix(&m.queue, 0)
	return te, true
}

// All yields merged events until every track is exhausted.
func (m *MergedStream) All() iter.Seq[TrackEvent] {
	return func(yield func(TrackEvent) bool) {
		for {
			te, ok := m.Next()
			if !ok || !yield(te) {
				return
			}
		}
	}
}

// Active returns the number of tracks still contributing events.
func (m *MergedStream) Active() int {
	return m.queue.Len()
}

// Err returns the error that ended track i, or nil if it is still active
// or ended with End-Of-Track.
func (m *MergedStream) Err(track int) error {
	return m.errs[track]
}

// Errs returns the errors of all tracks that ended abnormally, keyed by
// track index.
func (m *MergedStream) Errs() map[int]error {
	out := make(map[int]error, len(m.errs))
	for k, v := range m.errs {
		out[k] = v
	}
	return out
}

func (m *MergedStream) drop(track int) {
	err := m.streams[track].Err()
	if err == nil {
		return
	}
	m.errs[track] = err
	logger.GetLogger().Warn("Track dropped from merge", "track", track, "error", err)
}
