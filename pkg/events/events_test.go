package events

import (
	"testing"
	"time"
)

func receive(t *testing.T, sub Subscriber) *Event {
	t.Helper()
	select {
	case ev := <-sub:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
		return nil
	}
}

func expectNone(t *testing.T, sub Subscriber) {
	t.Helper()
	select {
	case ev := <-sub:
		t.Fatalf("unexpected event: %v", ev.Type)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPublishSubscribe(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	sub := b.Subscribe()

	b.Publish(&Event{
		Type:       EventObjectCreated,
		ObjectType: "Host",
		ObjectName: "web01",
	})

	ev := receive(t, sub)
	if ev.Type != EventObjectCreated {
		t.Errorf("event type = %q", ev.Type)
	}
	if ev.ObjectName != "web01" {
		t.Errorf("object name = %q", ev.ObjectName)
	}
	if ev.ID == "" {
		t.Errorf("event id not assigned")
	}
	if ev.Timestamp.IsZero() {
		t.Errorf("timestamp not assigned")
	}
}

func TestOriginEchoSuppression(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	origin := NewOrigin()
	peer := b.SubscribeFrom(origin) // the peer the change came from
	other := b.Subscribe()          // everyone else

	b.Publish(&Event{
		Type:   EventObjectSetChanged,
		Origin: origin,
	})

	// The unbound subscriber sees the change, the originating peer
	// does not.
	ev := receive(t, other)
	if !origin.Equal(ev.Origin) {
		t.Errorf("delivered event lost its origin")
	}
	expectNone(t, peer)

	// A change from elsewhere reaches the peer normally.
	b.Publish(&Event{Type: EventObjectSetChanged, Origin: NewOrigin()})
	receive(t, peer)
}

func TestOriginEquality(t *testing.T) {
	a := NewOrigin()
	b := NewOrigin()

	if !a.Equal(a) {
		t.Errorf("origin not equal to itself")
	}
	if a.Equal(b) {
		t.Errorf("distinct origins compare equal")
	}
	if a.Equal(nil) {
		t.Errorf("origin equal to nil")
	}

	var nilOrigin *Origin
	if nilOrigin.Equal(a) {
		t.Errorf("nil origin equal to origin")
	}
}

func TestUnsubscribe(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	sub := b.Subscribe()
	if b.SubscriberCount() != 1 {
		t.Fatalf("subscriber count = %d", b.SubscriberCount())
	}

	b.Unsubscribe(sub)
	if b.SubscriberCount() != 0 {
		t.Fatalf("subscriber count after unsubscribe = %d", b.SubscriberCount())
	}
}
