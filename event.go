package treasury

import (
	"strconv"

	"github.com/tendermint/tendermint/libs/common"
)

// Event is a signal emitted for external observers once an operation has been
// committed. Attributes are kept in the order they were added.
type Event struct {
	Kind string
	Tags []common.KVPair
}

// NewEvent returns an event of given kind without attributes.
func NewEvent(kind string) Event {
	return Event{Kind: kind}
}

// WithAddress appends an address attribute.
func (e Event) WithAddress(key string, a Address) Event {
	return e.with(key, []byte(a.String()))
}

// WithUint appends a numeric attribute.
func (e Event) WithUint(key string, v uint64) Event {
	return e.with(key, []byte(strconv.FormatUint(v, 10)))
}

// WithString appends a textual attribute.
func (e Event) WithString(key, v string) Event {
	return e.with(key, []byte(v))
}

func (e Event) with(key string, value []byte) Event {
	tags := make([]common.KVPair, len(e.Tags), len(e.Tags)+1)
	copy(tags, e.Tags)
	e.Tags = append(tags, common.KVPair{Key: []byte(key), Value: value})
	return e
}

// Attr returns the value of the first attribute with given key.
func (e Event) Attr(key string) (string, bool) {
	for _, t := range e.Tags {
		if string(t.Key) == key {
			return string(t.Value), true
		}
	}
	return "", false
}

// KeyVals flattens the attributes so that they can be passed to a logger.
func (e Event) KeyVals() []interface{} {
	kv := make([]interface{}, 0, 2+2*len(e.Tags))
	kv = append(kv, "event", e.Kind)
	for _, t := range e.Tags {
		kv = append(kv, string(t.Key), string(t.Value))
	}
	return kv
}

// EventSink receives committed events.
type EventSink interface {
	Emit(Event)
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(Event)

// Emit calls the function.
func (fn EventSinkFunc) Emit(e Event) {
	fn(e)
}

// NopEventSink drops all events.
type NopEventSink struct{}

// Emit does nothing.
func (NopEventSink) Emit(Event) {}
