package objects

import (
	"sync"

	"github.com/vigilmon/vigil/pkg/types"
)

// ExtensionDeleted marks an object for the cluster delete event. Replication
// listeners read it when the deactivation event arrives.
const ExtensionDeleted = "object.deleted"

// Object is the live, registered instance of a configuration object. Its
// package label decides mutability: only objects in the reserved runtime
// package may be deleted through the runtime pipeline.
type Object struct {
	mu sync.RWMutex

	typ        *types.Type
	fullName   string
	pkg        string
	sourcePath string
	attrs      types.Attributes
	active     bool
	extensions map[string]any
}

// New creates an unregistered object instance
func New(typ *types.Type, fullName, pkg, sourcePath string, attrs types.Attributes) *Object {
	return &Object{
		typ:        typ,
		fullName:   fullName,
		pkg:        pkg,
		sourcePath: sourcePath,
		attrs:      attrs.Copy(),
		extensions: make(map[string]any),
	}
}

// Type returns the object's type metadata
func (o *Object) Type() *types.Type {
	return o.typ
}

// FullName returns the object's full name
func (o *Object) FullName() string {
	return o.fullName
}

// Package returns the owning config package label
func (o *Object) Package() string {
	return o.pkg
}

// SourcePath returns the path of the object's backing config file
func (o *Object) SourcePath() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.sourcePath
}

// Attrs returns a copy of the object's attributes
func (o *Object) Attrs() types.Attributes {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.attrs.Copy()
}

// Attr returns one attribute value
func (o *Object) Attr(name string) (any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.attrs[name]
	return v, ok
}

// Version returns the object's version attribute, the cluster convergence
// signal stamped at creation time.
func (o *Object) Version() float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, _ := o.attrs["version"].(float64)
	return v
}

// Active reports whether the object has been activated
func (o *Object) Active() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.active
}

func (o *Object) setActive(active bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.active = active
}

// SetExtension attaches an opaque extension value to the object
func (o *Object) SetExtension(key string, value any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.extensions[key] = value
}

// Extension returns an extension value
func (o *Object) Extension(key string) (any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.extensions[key]
	return v, ok
}
