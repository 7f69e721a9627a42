package input

import "testing"

func TestBusDeliversByKindInOrder(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.Subscribe(PointerDown, func(Event) { got = append(got, "first") })
	bus.Subscribe(PointerMove, func(Event) { got = append(got, "move") })
	bus.Subscribe(PointerDown, func(Event) { got = append(got, "second") })

	bus.Dispatch(Event{Kind: PointerDown})
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("unexpected delivery order %v", got)
	}
}

func TestSubscribeDuringDispatchSeesLaterEvents(t *testing.T) {
	bus := NewBus()
	clicks := 0
	bus.Subscribe(Click, func(Event) {
		bus.Subscribe(Click, func(Event) { clicks++ })
	})

	bus.Dispatch(Event{Kind: Click})
	if clicks != 0 {
		t.Fatalf("expected new handler to miss the current event, got %d", clicks)
	}
	bus.Dispatch(Event{Kind: Click})
	if clicks != 1 {
		t.Fatalf("expected new handler to see the next event, got %d", clicks)
	}
}

func TestUnsubscribeDuringDispatch(t *testing.T) {
	bus := NewBus()
	calls := 0
	var second Subscription
	bus.Subscribe(KeyUp, func(Event) { second.Unsubscribe() })
	second = bus.Subscribe(KeyUp, func(Event) { calls++ })

	bus.Dispatch(Event{Kind: KeyUp, Key: KeyEscape})
	if calls != 0 {
		t.Fatalf("expected removed handler to be skipped")
	}
	if bus.Len() != 1 {
		t.Fatalf("expected one live subscription, got %d", bus.Len())
	}
	second.Unsubscribe()
}

func TestGroupUnsubscribe(t *testing.T) {
	bus := NewBus()
	var g Group
	g.Add(bus, PointerUp, func(Event) {})
	g.Add(bus, PointerMove, func(Event) {})
	if bus.Len() != 2 {
		t.Fatalf("expected 2 subscriptions, got %d", bus.Len())
	}
	g.Unsubscribe()
	if bus.Len() != 0 || len(g) != 0 {
		t.Fatalf("expected all subscriptions released")
	}
}
