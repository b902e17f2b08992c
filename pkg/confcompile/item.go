package confcompile

import (
	"fmt"
	"sync"

	"github.com/vigilmon/vigil/pkg/depgraph"
	"github.com/vigilmon/vigil/pkg/events"
	"github.com/vigilmon/vigil/pkg/log"
	"github.com/vigilmon/vigil/pkg/objects"
	"github.com/vigilmon/vigil/pkg/types"
	"github.com/vigilmon/vigil/pkg/workqueue"
)

// ConfigItem is one candidate object produced by evaluating a unit. Commit
// turns it into a registered object; until then it has no effect on the
// registry or the filesystem.
type ConfigItem struct {
	typ           *types.Type
	name          string
	templates     []string
	attrs         types.Attributes
	ignoreOnError bool
	pkg           string
	sourcePath    string
}

// Type returns the item's object type
func (i *ConfigItem) Type() *types.Type {
	return i.typ
}

// IgnoreOnError reports whether commit failures skip the item silently
func (i *ConfigItem) IgnoreOnError() bool {
	return i.ignoreOnError
}

// FullName computes the item's full object name, recomposing it from the
// structured name parts when the type decomposes names.
func (i *ConfigItem) FullName() (string, error) {
	composer, ok := i.typ.Composer()
	if !ok {
		return i.name, nil
	}
	return composer.MakeName(i.name, i.attrs)
}

// Commit validates the item's references, registers the object, and records
// its dependency edges.
func (i *ConfigItem) Commit(reg *objects.Registry, graph *depgraph.Graph) (*objects.Object, error) {
	fullName, err := i.FullName()
	if err != nil {
		return nil, fmt.Errorf("failed to compose name for %s '%s': %w", i.typ.Name(), i.name, err)
	}

	deps, err := i.resolveDependencies(reg, fullName)
	if err != nil {
		return nil, err
	}

	obj := objects.New(i.typ, fullName, i.pkg, i.sourcePath, i.attrs)

	if err := reg.Register(obj); err != nil {
		return nil, err
	}

	for _, dep := range deps {
		graph.AddEdge(obj, dep)
	}

	return obj, nil
}

// resolveDependencies looks up the objects this item refers to. A dangling
// reference is a commit error; callers with ignore_on_error skip the item
// instead.
func (i *ConfigItem) resolveDependencies(reg *objects.Registry, fullName string) ([]*objects.Object, error) {
	var deps []*objects.Object

	hostName, _ := i.attrs["host_name"].(string)
	if hostName == "" || i.typ.Name() == "Host" {
		return nil, nil
	}

	host := reg.Get("Host", hostName)
	if host == nil {
		return nil, fmt.Errorf("%s '%s' references host '%s' which does not exist", i.typ.Name(), fullName, hostName)
	}

	serviceName, _ := i.attrs["service_name"].(string)
	if serviceName == "" {
		return []*objects.Object{host}, nil
	}

	service := reg.Get("Service", hostName+"!"+serviceName)
	if service == nil {
		return nil, fmt.Errorf("%s '%s' references service '%s!%s' which does not exist", i.typ.Name(), fullName, hostName, serviceName)
	}
	deps = append(deps, host, service)

	return deps, nil
}

// ActivationContext collects the candidate items produced while evaluating
// units, scoping an activation attempt.
type ActivationContext struct {
	mu    sync.Mutex
	items []*ConfigItem
}

// NewActivationContext creates an empty activation context
func NewActivationContext() *ActivationContext {
	return &ActivationContext{}
}

func (c *ActivationContext) add(item *ConfigItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
}

// Items returns the collected candidate items
func (c *ActivationContext) Items() []*ConfigItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*ConfigItem, len(c.items))
	copy(out, c.items)
	return out
}

// CommitItems registers the context's candidate items through the work
// queue. It returns the newly registered objects and whether every item
// committed; failures stay on the queue for the caller to drain.
func CommitItems(ctx *ActivationContext, q *workqueue.Queue, reg *objects.Registry, graph *depgraph.Graph) ([]*objects.Object, bool) {
	logger := log.WithComponent("confcompile")

	var mu sync.Mutex
	var newObjs []*objects.Object

	for _, item := range ctx.Items() {
		q.Enqueue(func() error {
			obj, err := item.Commit(reg, graph)
			if err != nil {
				if item.IgnoreOnError() {
					logger.Debug().Err(err).Str("item", item.name).Msg("Ignoring config item")
					return nil
				}
				return err
			}

			mu.Lock()
			newObjs = append(newObjs, obj)
			mu.Unlock()
			return nil
		})
	}

	q.Join()
	return newObjs, !q.HasExceptions()
}

// ActivateItems activates freshly committed objects through the work queue,
// forwarding the origin of the change so it is not echoed back to its
// source.
func ActivateItems(q *workqueue.Queue, objs []*objects.Object, reg *objects.Registry, origin *events.Origin) bool {
	for _, obj := range objs {
		q.Enqueue(func() error {
			reg.Activate(obj, origin)
			return nil
		})
	}

	q.Join()
	return !q.HasExceptions()
}
