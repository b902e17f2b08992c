/*
Package events provides the configuration lifecycle event broker.

Components publish events when objects are created, deactivated or deleted,
when the object set changes, and when a config package is repaired.
Subscribers receive them on buffered channels; a slow subscriber loses events
rather than blocking the broker.

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	go func() {
		for ev := range sub {
			fmt.Println(ev.Type, ev.ObjectName)
		}
	}()

# Origins

An Origin is an opaque token identifying where a configuration change entered
the cluster. Its only operation is equality. A subscriber registered through
SubscribeFrom(origin) never receives an event carrying that same origin:

	origin := events.NewOrigin()
	peer := broker.SubscribeFrom(origin)

	// changes applied on behalf of this peer carry the origin and are
	// not delivered back to it
	m.CreateObject(typ, name, false, nil, attrs, &diag, origin)

This is the echo guard for replication: peer A applies a change received from
peer B, and the resulting events must reach local listeners and other peers
but not travel back to B.
*/
package events
