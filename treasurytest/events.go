package treasurytest

import (
	"github.com/iov-one/treasury"
)

// EventRecorder is an event sink that keeps every emitted event in memory.
type EventRecorder struct {
	Events []treasury.Event
}

var _ treasury.EventSink = (*EventRecorder)(nil)

// Emit records the event.
func (r *EventRecorder) Emit(e treasury.Event) {
	r.Events = append(r.Events, e)
}

// Kinds returns the kinds of all recorded events, in emission order.
func (r *EventRecorder) Kinds() []string {
	kinds := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

// Last returns the most recent event. It returns false if nothing was
// recorded.
func (r *EventRecorder) Last() (treasury.Event, bool) {
	if len(r.Events) == 0 {
		return treasury.Event{}, false
	}
	return r.Events[len(r.Events)-1], true
}

// Reset drops all recorded events.
func (r *EventRecorder) Reset() {
	r.Events = nil
}
