/*
Package objects holds the live configuration objects and their registry.

An Object is one configured monitoring entity: its type, full name, owning
package, backing file and attributes. Objects move through a small lifecycle:

	Register ──▶ Activate ──▶ Deactivate ──▶ Unregister

The Registry enforces name uniqueness per type and publishes each lifecycle
transition on the event broker, forwarding the origin of the change so it is
not echoed back to its source.

Extensions attach out-of-band markers to an object without widening its
attribute set; the deletion marker ExtensionDeleted is set before an object
is deactivated so replication listeners can tell a delete from a plain
deactivation.
*/
package objects
