package dom

import "strings"

// Event is a dispatched DOM event.
type Event struct {
	Type          string
	Target        *Element
	CurrentTarget *Element

	// Detail carries caller-defined data (CustomEvent.detail).
	Detail any

	stopped bool
}

// NewEvent creates an event of the given type.
func NewEvent(typ string) *Event {
	return &Event{Type: typ}
}

// StopPropagation prevents the event from reaching further ancestors.
func (ev *Event) StopPropagation() { ev.stopped = true }

// Stopped reports whether StopPropagation was called.
func (ev *Event) Stopped() bool { return ev.stopped }

// Listener handles an event.
type Listener func(ev *Event)

// AddEventListener registers fn for events of the given type. Event types
// are case-insensitive.
func (e *Element) AddEventListener(typ string, fn Listener) {
	if fn == nil {
		return
	}
	if e.listeners == nil {
		e.listeners = make(map[string][]Listener)
	}
	typ = strings.ToLower(typ)
	e.listeners[typ] = append(e.listeners[typ], fn)
}

// ListenerCount returns the number of listeners for the event type.
func (e *Element) ListenerCount(typ string) int {
	return len(e.listeners[strings.ToLower(typ)])
}

// EventTypes returns the event types that have listeners.
func (e *Element) EventTypes() []string {
	out := make([]string, 0, len(e.listeners))
	for typ := range e.listeners {
		out = append(out, typ)
	}
	return out
}

// Dispatch delivers ev to e and then bubbles it through e's ancestors.
// It returns the number of listeners invoked.
func (e *Element) Dispatch(ev *Event) int {
	if ev == nil {
		return 0
	}
	ev.Type = strings.ToLower(ev.Type)
	ev.Target = e
	invoked := 0
	for cur := e; cur != nil && !ev.stopped; cur = cur.parent {
		ls := cur.listeners[ev.Type]
		if len(ls) == 0 {
			continue
		}
		ev.CurrentTarget = cur
		snapshot := make([]Listener, len(ls))
		copy(snapshot, ls)
		for _, fn := range snapshot {
			fn(ev)
			invoked++
		}
	}
	ev.CurrentTarget = nil
	return invoked
}

// Click dispatches a click event.
func (e *Element) Click() int {
	return e.Dispatch(NewEvent("click"))
}
