package runtimeconfig

import (
	"github.com/rs/zerolog"

	"github.com/vigilmon/vigil/pkg/confpkg"
	"github.com/vigilmon/vigil/pkg/depgraph"
	"github.com/vigilmon/vigil/pkg/events"
	"github.com/vigilmon/vigil/pkg/log"
	"github.com/vigilmon/vigil/pkg/objects"
	"github.com/vigilmon/vigil/pkg/storage"
	"github.com/vigilmon/vigil/pkg/types"
)

// AuthorityNotifier is the narrow interface to the cluster authority layer:
// a fire-and-forget signal that the object set changed, carrying the origin
// of the change so it is not echoed back to its source.
type AuthorityNotifier interface {
	UpdateObjectAuthority(origin *events.Origin)
}

// BrokerNotifier announces authority changes on the event broker
type BrokerNotifier struct {
	broker *events.Broker
}

// NewBrokerNotifier creates a notifier backed by the event broker
func NewBrokerNotifier(broker *events.Broker) *BrokerNotifier {
	return &BrokerNotifier{broker: broker}
}

// UpdateObjectAuthority implements AuthorityNotifier
func (n *BrokerNotifier) UpdateObjectAuthority(origin *events.Origin) {
	n.broker.Publish(&events.Event{
		Type:   events.EventObjectSetChanged,
		Origin: origin,
	})
}

// Manager is the runtime create/delete pipeline. It folds object creation
// and deletion requests into the node's live configuration: durable staged
// files, the in-memory object registry, and the cluster authority signal
// stay mutually consistent on every path, including failures.
type Manager struct {
	packages *confpkg.Store
	types    *types.Registry
	objects  *objects.Registry
	graph    *depgraph.Graph
	index    storage.Store
	notifier AuthorityNotifier
	logger   zerolog.Logger
}

// Config holds the pipeline's collaborators
type Config struct {
	Packages *confpkg.Store
	Types    *types.Registry
	Objects  *objects.Registry
	Graph    *depgraph.Graph
	Index    storage.Store     // optional: runtime object index
	Notifier AuthorityNotifier // optional: cluster authority signal
}

// NewManager creates the pipeline
func NewManager(cfg *Config) *Manager {
	return &Manager{
		packages: cfg.Packages,
		types:    cfg.Types,
		objects:  cfg.Objects,
		graph:    cfg.Graph,
		index:    cfg.Index,
		notifier: cfg.Notifier,
		logger:   log.WithComponent("runtimeconfig"),
	}
}

// Objects returns the live object registry
func (m *Manager) Objects() *objects.Registry {
	return m.objects
}

// Types returns the type metadata registry
func (m *Manager) Types() *types.Registry {
	return m.types
}

// Packages returns the staged package store
func (m *Manager) Packages() *confpkg.Store {
	return m.packages
}
