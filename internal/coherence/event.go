package coherence

import "time"

// Status captures the progress of one impl group.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	// StatusConflict is a finished group with at least one overlap.
	StatusConflict Status = "conflict"
)

// Event reports progress for an impl group, or for the whole check when
// Group is empty.
type Event struct {
	Group    string
	Status   Status
	Impls    int
	Pairs    int
	Overlaps int
	Elapsed  time.Duration
}

// ProgressSink consumes progress events. OnEvent may be called from several
// goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(ev Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- ev
}

func emit(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}
