package types

import (
	"fmt"
	"strings"
	"sync"
)

// Attributes maps dotted attribute names to values
type Attributes map[string]any

// Copy returns a shallow copy of the attribute set
func (a Attributes) Copy() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// FieldFlags describes how a field may be used
type FieldFlags int

const (
	// FieldConfig marks a field as settable from external configuration
	FieldConfig FieldFlags = 1 << iota
	// FieldState marks a field as runtime state
	FieldState
	// FieldInternal marks a field as internal use only
	FieldInternal
)

// Has reports whether all given flags are set
func (f FieldFlags) Has(flags FieldFlags) bool {
	return f&flags == flags
}

// Field describes one attribute of an object type
type Field struct {
	Name  string
	Flags FieldFlags
}

// NameComposer is the optional capability of a type to decompose a full
// object name into structured parts and to rebuild it from them. Types
// without this capability use the full name as the bare name directly.
type NameComposer interface {
	// ParseName splits a full name into its structured parts, including
	// the bare "name" part.
	ParseName(fullName string) (Attributes, error)

	// MakeName rebuilds the full name from a bare name and the structured
	// parts stored in the attribute set.
	MakeName(name string, attrs Attributes) (string, error)
}

// Type holds the metadata for one kind of configuration object
type Type struct {
	name     string
	plural   string
	fields   []Field
	fieldIDs map[string]int
	composer NameComposer
}

// NewType creates a type definition. The composer may be nil for types whose
// full name is the bare name.
func NewType(name, plural string, composer NameComposer, fields ...Field) *Type {
	t := &Type{
		name:     name,
		plural:   plural,
		fields:   fields,
		fieldIDs: make(map[string]int, len(fields)),
		composer: composer,
	}
	for i, f := range fields {
		t.fieldIDs[f.Name] = i
	}
	return t
}

// Name returns the type name
func (t *Type) Name() string {
	return t.name
}

// PluralName returns the plural type name used for directory naming
func (t *Type) PluralName() string {
	return t.plural
}

// FieldID returns the id of the named field, or -1 if unknown
func (t *Type) FieldID(name string) int {
	id, ok := t.fieldIDs[name]
	if !ok {
		return -1
	}
	return id
}

// FieldInfo returns the field metadata for a field id
func (t *Type) FieldInfo(id int) (Field, bool) {
	if id < 0 || id >= len(t.fields) {
		return Field{}, false
	}
	return t.fields[id], true
}

// Composer returns the type's name composer, if it has one
func (t *Type) Composer() (NameComposer, bool) {
	if t.composer == nil {
		return nil, false
	}
	return t.composer, true
}

// Registry holds all known object types
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Type
}

// NewRegistry creates an empty type registry
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Type)}
}

// Register adds a type definition to the registry
func (r *Registry) Register(t *Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[t.Name()] = t
}

// Lookup returns the type with the given name
func (r *Registry) Lookup(name string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// Types returns all registered types
func (r *Registry) Types() []*Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Type, 0, len(r.byName))
	for _, t := range r.byName {
		out = append(out, t)
	}
	return out
}

// BangComposer decomposes full names of the form "host[!service]!name" into
// their structured parts. Parts lists the attribute names for the leading
// segments; the final segment is always the bare name.
type BangComposer struct {
	// Parts names the attributes for the leading name segments, longest
	// form first omitted: e.g. {"host_name", "service_name"} accepts both
	// "host!name" and "host!service!name".
	Parts []string
}

// ParseName implements NameComposer
func (c *BangComposer) ParseName(fullName string) (Attributes, error) {
	segments := strings.Split(fullName, "!")
	if len(segments) < 2 || len(segments) > len(c.Parts)+1 {
		return nil, fmt.Errorf("invalid name %q: expected 2 to %d segments separated by '!'", fullName, len(c.Parts)+1)
	}
	for _, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("invalid name %q: empty segment", fullName)
		}
	}

	attrs := make(Attributes, len(segments))
	leading := segments[:len(segments)-1]

	// "host!name" on a host+service composer binds the single leading
	// segment to the first part.
	for i, seg := range leading {
		attrs[c.Parts[i]] = seg
	}
	attrs["name"] = segments[len(segments)-1]

	return attrs, nil
}

// MakeName implements NameComposer
func (c *BangComposer) MakeName(name string, attrs Attributes) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty object name")
	}

	var segments []string
	for _, part := range c.Parts {
		v, ok := attrs[part]
		if !ok {
			break
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("name part %q must be a non-empty string", part)
		}
		segments = append(segments, s)
	}
	if len(segments) == 0 {
		return "", fmt.Errorf("name part %q is required", c.Parts[0])
	}

	return strings.Join(append(segments, name), "!"), nil
}
