// Package input is the pointer and keyboard event abstraction the chart
// engine subscribes to. Hosts translate their native events into Events
// and deliver them through a Bus.
package input

import "gantry/internal/render"

// Kind is the type of an input event.
type Kind int

const (
	PointerDown Kind = iota
	PointerMove
	PointerUp
	PointerLeave
	PointerCancel
	Click
	DoubleClick
	KeyUp
)

var kindNames = [...]string{"pointerdown", "pointermove", "pointerup", "pointerleave", "pointercancel", "click", "dblclick", "keyup"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// KeyEscape is the key name that cancels a gesture.
const KeyEscape = "Escape"

// Event is one input event. X and Y are in chart coordinates; Target is
// the primitive under the pointer, or zero.
type Event struct {
	Kind   Kind
	X, Y   float64
	Target render.ID
	Key    string
}

// Handler receives events.
type Handler func(Event)

// Subscription is a registered handler.
type Subscription interface {
	Unsubscribe()
}

// Source delivers events to subscribers.
type Source interface {
	Subscribe(kind Kind, h Handler) Subscription
}

type entry struct {
	id      int
	kind    Kind
	handler Handler
}

// Bus is a synchronous Source. Handlers run in subscription order on the
// caller's goroutine.
type Bus struct {
	entries []entry
	next    int
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(kind Kind, h Handler) Subscription {
	b.next++
	b.entries = append(b.entries, entry{id: b.next, kind: kind, handler: h})
	return &subscription{bus: b, id: b.next}
}

// Dispatch delivers ev to every handler subscribed to its kind when
// dispatch starts. Handlers added during dispatch see only later events;
// handlers removed during dispatch are skipped.
func (b *Bus) Dispatch(ev Event) {
	snapshot := append([]entry(nil), b.entries...)
	for _, e := range snapshot {
		if e.kind != ev.Kind || !b.active(e.id) {
			continue
		}
		e.handler(ev)
	}
}

// Len is the number of live subscriptions.
func (b *Bus) Len() int {
	return len(b.entries)
}

func (b *Bus) active(id int) bool {
	for _, e := range b.entries {
		if e.id == id {
			return true
		}
	}
	return false
}

type subscription struct {
	bus *Bus
	id  int
}

func (s *subscription) Unsubscribe() {
	if s.bus == nil {
		return
	}
	entries := s.bus.entries[:0]
	for _, e := range s.bus.entries {
		if e.id != s.id {
			entries = append(entries, e)
		}
	}
	s.bus.entries = entries
	s.bus = nil
}

// Group collects subscriptions so they can be released together.
type Group []Subscription

// Add subscribes h and records the subscription.
func (g *Group) Add(src Source, kind Kind, h Handler) {
	*g = append(*g, src.Subscribe(kind, h))
}

// Unsubscribe releases every subscription in the group.
func (g *Group) Unsubscribe() {
	for _, s := range *g {
		s.Unsubscribe()
	}
	*g = nil
}
