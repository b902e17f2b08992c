package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	EventObjectCreated     EventType = "object.created"
	EventObjectDeactivated EventType = "object.deactivated"
	EventObjectDeleted     EventType = "object.deleted"
	EventObjectSetChanged  EventType = "objectset.changed"
	EventPackageRepaired   EventType = "package.repaired"
)

// Origin identifies where a configuration change entered the cluster. It is
// opaque: the only operation is equality. A change carrying origin O must not
// be delivered back to the subscriber registered with origin O, which is what
// breaks replication echo loops between peers.
type Origin struct {
	id string
}

// NewOrigin creates a fresh origin token
func NewOrigin() *Origin {
	return &Origin{id: uuid.New().String()}
}

// Equal reports whether two origins refer to the same source
func (o *Origin) Equal(other *Origin) bool {
	if o == nil || other == nil {
		return false
	}
	return o.id == other.id
}

// String returns the token id for logging
func (o *Origin) String() string {
	if o == nil {
		return ""
	}
	return o.id
}

// Event represents a configuration lifecycle event
type Event struct {
	ID         string
	Type       EventType
	Timestamp  time.Time
	ObjectType string
	ObjectName string
	Package    string
	Origin     *Origin
	Metadata   map[string]string
}

// Subscriber is a channel that receives events
type Subscriber chan *Event

// Broker manages event subscriptions and distribution
type Broker struct {
	subscribers map[Subscriber]*Origin
	mu          sync.RWMutex
	eventCh     chan *Event
	stopCh      chan struct{}
}

// NewBroker creates a new event broker
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[Subscriber]*Origin),
		eventCh:     make(chan *Event, 100), // Buffer up to 100 events
		stopCh:      make(chan struct{}),
	}
}

// Start begins the broker's event distribution loop
func (b *Broker) Start() {
	go b.run()
}

// Stop stops the broker
func (b *Broker) Stop() {
	close(b.stopCh)
}

// Subscribe creates a new subscription and returns a channel
func (b *Broker) Subscribe() Subscriber {
	return b.SubscribeFrom(nil)
}

// SubscribeFrom creates a subscription bound to an origin. Events whose
// origin equals the given origin are not delivered to this subscriber.
func (b *Broker) SubscribeFrom(origin *Origin) Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(Subscriber, 50) // Buffer per subscriber
	b.subscribers[sub] = origin
	return sub
}

// Unsubscribe removes a subscription
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subscribers, sub)
	close(sub)
}

// Publish publishes an event to all subscribers
func (b *Broker) Publish(event *Event) {
	// Set timestamp and id if not set
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	select {
	case b.eventCh <- event:
	case <-b.stopCh:
	}
}

func (b *Broker) run() {
	for {
		select {
		case event := <-b.eventCh:
			b.broadcast(event)
		case <-b.stopCh:
			return
		}
	}
}

func (b *Broker) broadcast(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub, origin := range b.subscribers {
		if origin != nil && origin.Equal(event.Origin) {
			// The change came from this subscriber's side of the
			// cluster, don't echo it back.
			continue
		}

		select {
		case sub <- event:
		default:
			// Subscriber buffer full, skip
		}
	}
}

// SubscriberCount returns the number of active subscribers
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
