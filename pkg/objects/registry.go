package objects

import (
	"fmt"
	"sync"

	"github.com/vigilmon/vigil/pkg/events"
)

// Registry holds all live configuration objects keyed by type and full name.
// Lifecycle transitions are announced through the event broker, carrying the
// origin of the change so replication listeners can suppress echoes.
type Registry struct {
	mu      sync.RWMutex
	objects map[string]map[string]*Object
	broker  *events.Broker
}

// NewRegistry creates an object registry. The broker may be nil.
func NewRegistry(broker *events.Broker) *Registry {
	return &Registry{
		objects: make(map[string]map[string]*Object),
		broker:  broker,
	}
}

// Register adds an object to the registry. Registering a second object with
// the same type and full name fails.
func (r *Registry) Register(obj *Object) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	typeName := obj.Type().Name()
	byName, ok := r.objects[typeName]
	if !ok {
		byName = make(map[string]*Object)
		r.objects[typeName] = byName
	}

	if _, exists := byName[obj.FullName()]; exists {
		return fmt.Errorf("object '%s' of type '%s' already exists", obj.FullName(), typeName)
	}

	byName[obj.FullName()] = obj
	return nil
}

// Get returns the registered object with the given type and full name, or
// nil when no such object exists.
func (r *Registry) Get(typeName, fullName string) *Object {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.objects[typeName][fullName]
}

// ListType returns all registered objects of a type
func (r *Registry) ListType(typeName string) []*Object {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byName := r.objects[typeName]
	out := make([]*Object, 0, len(byName))
	for _, obj := range byName {
		out = append(out, obj)
	}
	return out
}

// Len returns the total number of registered objects
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, byName := range r.objects {
		n += len(byName)
	}
	return n
}

// Activate marks an object active and announces it
func (r *Registry) Activate(obj *Object, origin *events.Origin) {
	obj.setActive(true)
	r.publish(events.EventObjectCreated, obj, origin)
}

// Deactivate marks an object inactive and announces it. Replication
// listeners receive the deactivation together with any extensions set on the
// object, such as the delete marker.
func (r *Registry) Deactivate(obj *Object, origin *events.Origin) {
	obj.setActive(false)
	r.publish(events.EventObjectDeactivated, obj, origin)
}

// Unregister removes an object from the registry
func (r *Registry) Unregister(obj *Object, origin *events.Origin) error {
	r.mu.Lock()

	typeName := obj.Type().Name()
	byName := r.objects[typeName]
	if _, ok := byName[obj.FullName()]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("object '%s' of type '%s' is not registered", obj.FullName(), typeName)
	}
	delete(byName, obj.FullName())
	r.mu.Unlock()

	r.publish(events.EventObjectDeleted, obj, origin)
	return nil
}

func (r *Registry) publish(eventType events.EventType, obj *Object, origin *events.Origin) {
	if r.broker == nil {
		return
	}

	r.broker.Publish(&events.Event{
		Type:       eventType,
		ObjectType: obj.Type().Name(),
		ObjectName: obj.FullName(),
		Package:    obj.Package(),
		Origin:     origin,
	})
}
