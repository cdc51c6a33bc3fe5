package pipeline

import (
	"sync"
	"time"
)

// EventKind classifies a status event.
type EventKind string

const (
	EventStarted   EventKind = "started"
	EventCompleted EventKind = "completed"
	EventProgress  EventKind = "progress"
	EventFailed    EventKind = "failed"
)

// Event is one status update emitted by the pipeline.
type Event struct {
	JobID   string
	Stage   Stage
	Kind    EventKind
	Message string
	At      time.Time
	Err     error
}

// StatusSink receives status events in order.
type StatusSink interface {
	Report(Event)
}

// SinkFunc adapts a function to StatusSink.
type SinkFunc func(Event)

// Report calls f.
func (f SinkFunc) Report(e Event) { f(e) }

// MemorySink records events for later inspection.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// Report appends e.
func (s *MemorySink) Report(e Event) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

type nopSink struct{}

func (nopSink) Report(Event) {}
