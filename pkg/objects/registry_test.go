package objects

import (
	"testing"
	"time"

	"github.com/vigilmon/vigil/pkg/events"
	"github.com/vigilmon/vigil/pkg/types"
)

func widgetType() *types.Type {
	return types.NewType("Widget", "Widgets", nil,
		types.Field{Name: "color", Flags: types.FieldConfig},
		types.Field{Name: "version", Flags: types.FieldConfig},
	)
}

func TestRegisterAndGet(t *testing.T) {
	reg := NewRegistry(nil)
	typ := widgetType()

	obj := New(typ, "w1", "_api", "/tmp/w1.conf", types.Attributes{"color": "red", "version": 1.5})
	if err := reg.Register(obj); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	got := reg.Get("Widget", "w1")
	if got != obj {
		t.Fatalf("Get() returned %v", got)
	}
	if got.Package() != "_api" {
		t.Errorf("Package() = %q", got.Package())
	}
	if got.SourcePath() != "/tmp/w1.conf" {
		t.Errorf("SourcePath() = %q", got.SourcePath())
	}
	if got.Version() != 1.5 {
		t.Errorf("Version() = %v", got.Version())
	}

	if reg.Get("Widget", "w2") != nil {
		t.Errorf("Get() of unknown object returned non-nil")
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d", reg.Len())
	}
}

func TestRegisterDuplicateFails(t *testing.T) {
	reg := NewRegistry(nil)
	typ := widgetType()

	if err := reg.Register(New(typ, "w1", "_api", "", nil)); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if err := reg.Register(New(typ, "w1", "_api", "", nil)); err == nil {
		t.Fatalf("duplicate Register() succeeded")
	}
}

func TestUnregister(t *testing.T) {
	reg := NewRegistry(nil)
	typ := widgetType()

	obj := New(typ, "w1", "_api", "", nil)
	if err := reg.Register(obj); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if err := reg.Unregister(obj, nil); err != nil {
		t.Fatalf("Unregister() failed: %v", err)
	}
	if reg.Get("Widget", "w1") != nil {
		t.Errorf("object still registered")
	}
	if err := reg.Unregister(obj, nil); err == nil {
		t.Errorf("second Unregister() succeeded")
	}
}

func TestLifecycleEvents(t *testing.T) {
	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	reg := NewRegistry(broker)
	sub := broker.Subscribe()
	origin := events.NewOrigin()

	obj := New(widgetType(), "w1", "_api", "", nil)
	if err := reg.Register(obj); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	reg.Activate(obj, origin)
	if !obj.Active() {
		t.Errorf("object not active after Activate()")
	}

	ev := mustReceive(t, sub)
	if ev.Type != events.EventObjectCreated {
		t.Fatalf("event type = %q", ev.Type)
	}
	if !origin.Equal(ev.Origin) {
		t.Errorf("activation event lost its origin")
	}

	reg.Deactivate(obj, origin)
	if obj.Active() {
		t.Errorf("object active after Deactivate()")
	}
	if ev := mustReceive(t, sub); ev.Type != events.EventObjectDeactivated {
		t.Fatalf("event type = %q", ev.Type)
	}

	if err := reg.Unregister(obj, origin); err != nil {
		t.Fatalf("Unregister() failed: %v", err)
	}
	if ev := mustReceive(t, sub); ev.Type != events.EventObjectDeleted {
		t.Fatalf("event type = %q", ev.Type)
	}
}

func TestExtensions(t *testing.T) {
	obj := New(widgetType(), "w1", "_api", "", nil)

	if _, ok := obj.Extension(ExtensionDeleted); ok {
		t.Fatalf("fresh object carries extension")
	}

	obj.SetExtension(ExtensionDeleted, true)
	v, ok := obj.Extension(ExtensionDeleted)
	if !ok || v != true {
		t.Errorf("Extension() = %v, %v", v, ok)
	}
}

func mustReceive(t *testing.T, sub events.Subscriber) *events.Event {
	t.Helper()
	select {
	case ev := <-sub:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
		return nil
	}
}
