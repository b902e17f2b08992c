package depgraph

import (
	"sync"

	"github.com/vigilmon/vigil/pkg/objects"
)

// Graph tracks which registered objects depend on which. Edges are sourced
// externally (at config item commit time); this package only stores and
// answers reverse lookups for cascading deletion.
type Graph struct {
	mu sync.RWMutex

	// parents maps a dependency to the set of objects relying on it,
	// keyed by "<type>!<fullName>".
	parents map[string]map[string]*objects.Object

	// children is the forward direction, used to drop all edges of an
	// object on removal.
	children map[string]map[string]*objects.Object
}

// New creates an empty dependency graph
func New() *Graph {
	return &Graph{
		parents:  make(map[string]map[string]*objects.Object),
		children: make(map[string]map[string]*objects.Object),
	}
}

func key(obj *objects.Object) string {
	return obj.Type().Name() + "!" + obj.FullName()
}

// AddEdge records that dependent relies on dependency
func (g *Graph) AddEdge(dependent, dependency *objects.Object) {
	g.mu.Lock()
	defer g.mu.Unlock()

	dk := key(dependency)
	if g.parents[dk] == nil {
		g.parents[dk] = make(map[string]*objects.Object)
	}
	g.parents[dk][key(dependent)] = dependent

	ck := key(dependent)
	if g.children[ck] == nil {
		g.children[ck] = make(map[string]*objects.Object)
	}
	g.children[ck][dk] = dependency
}

// RemoveEdge removes a single edge
func (g *Graph) RemoveEdge(dependent, dependency *objects.Object) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.parents[key(dependency)], key(dependent))
	delete(g.children[key(dependent)], key(dependency))
}

// RemoveObject drops every edge touching an object
func (g *Graph) RemoveObject(obj *objects.Object) {
	g.mu.Lock()
	defer g.mu.Unlock()

	k := key(obj)

	for dk := range g.children[k] {
		delete(g.parents[dk], k)
	}
	delete(g.children, k)

	for ck := range g.parents[k] {
		delete(g.children[ck], k)
	}
	delete(g.parents, k)
}

// GetParents returns the objects that depend on obj. In deletion terms these
// are the dependents that must go before obj does.
func (g *Graph) GetParents(obj *objects.Object) []*objects.Object {
	g.mu.RLock()
	defer g.mu.RUnlock()

	byKey := g.parents[key(obj)]
	out := make([]*objects.Object, 0, len(byKey))
	for _, dependent := range byKey {
		out = append(out, dependent)
	}
	return out
}
