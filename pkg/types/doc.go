/*
Package types holds the metadata describing monitoring object types.

A Type carries a name, a plural name (which becomes the type's directory in a
config stage), and a list of fields with flags. The flags decide what callers
may set at creation time:

	FieldConfig    externally settable configuration
	FieldState     runtime state, not settable
	FieldInternal  bookkeeping (name, package, templates), not settable

# Composite Names

Some types are named relative to other objects: a service belongs to a host,
a comment belongs to a host or a service. Their full names join the parts
with '!':

	web01!http           service "http" on host "web01"
	web01!http!c1        comment "c1" on that service

A type with composite names carries a NameComposer that decomposes a full
name into attributes and recomposes it. BangComposer implements the '!'
scheme; Parts names the attributes for the leading segments:

	c := &types.BangComposer{Parts: []string{"host_name", "service_name"}}
	attrs, _ := c.ParseName("web01!http!c1")
	// host_name = "web01", service_name = "http", name = "c1"

DefaultRegistry returns a registry populated with the built-in monitoring
types: Host, Service, groups, commands, users, notifications, dependencies,
comments and downtimes.
*/
package types
