/*
Package runtimeconfig implements runtime creation and deletion of monitoring
configuration objects.

This package is the write path for configuration changes that arrive while the
node is running: an operator or a cluster peer asks for a new host, service,
comment or downtime, and the pipeline folds it into the live configuration
without a restart. Every accepted change ends up in three places that must
never disagree: a config file inside the reserved "_api" package, the
in-memory object registry, and the cluster event stream.

# Architecture

	                     CreateObject / DeleteObject
	                                 │
	                                 ▼
	┌──────────────────────────────────────────────────────────────┐
	│                          Manager                             │
	│  • validates attributes against type metadata                │
	│  • derives the canonical config file path                    │
	│  • drives compile → commit → activate                        │
	└────┬──────────────┬──────────────┬──────────────┬────────────┘
	     │              │              │              │
	     ▼              ▼              ▼              ▼
	┌──────────┐  ┌───────────┐  ┌───────────┐  ┌───────────┐
	│ confpkg  │  │atomicfile │  │confcompile│  │  objects  │
	│ packages │  │  writer   │  │  compiler │  │ registry  │
	└──────────┘  └───────────┘  └───────────┘  └───────────┘
	     │                                             │
	     ▼                                             ▼
	 staged files                               lifecycle events
	                                            (pkg/events)

# Creation Pipeline

A create call walks nine steps in order; the first failure stops the walk and
leaves no trace behind:

 1. Ensure the reserved "_api" package exists (bootstrapped on first use)
 2. Reject the name if an object of that type already exists
 3. Serialize and validate the attributes into config text
 4. Derive the config file path (escaped name, hashed when exempt)
 5. Write the text to a unique temp file next to the final path
 6. Compile the text and evaluate it into candidate items
 7. Commit: resolve references and register the object
 8. Activate the object, forwarding the change's origin
 9. Rename the temp file over the final path and index the record

The temp file becomes visible under its final name only after the object has
passed compilation, registration and activation. A crash or failure at any
earlier step leaves a stray temp file at worst, never a half-written config
file that would poison the next startup.

# Validation

Attributes are validated against the target type's field metadata before any
text is emitted. The prefix of each key up to the first '.' must name a known
field, and that field must be externally settable:

	vars.os = "Linux"     → field "vars", settable, accepted
	state = 2             → field "state" is runtime state, rejected
	name = "sneaky"       → reserved, rejected
	no_such_field = 1     → unknown, rejected

Types with composite names (Service, Comment, Downtime and friends) decompose
the full name into attributes first, so "web01!http" arrives at the emitter
as an object named "http" with host_name = "web01".

# File Names

Object names become file names, so hostile characters are escaped as %XX hex
codes. The escaping is reversible; see EscapeName and UnescapeName.

Comments and downtimes may carry composite names long past any portable
filename bound, and they cannot be renamed. For those two types an overlong
escaped name collapses to a fixed-length form:

	first 80 bytes + "..." + 40 hex chars of SHA-1(full name)

Every other type fails path derivation with a *PathError instead: silently
truncating a host or service name would make peers disagree about which file
a name maps to.

# Deletion

DeleteObject only accepts objects living in the "_api" package; everything
else was loaded from static configuration and fails with a *PolicyError
before anything is touched.

An object with registered dependents is not deletable on its own:

	err := m.DeleteObject(host, false, &diag, origin)
	// PolicyError: other objects depend on it

	err = m.DeleteObject(host, true, &diag, origin)
	// cascade: services on the host go first, then the host

The cascade removes dependents depth first, so nothing ever outlives what it
depends on. A failed dependent is recorded in the diagnostics but does not
stop the rest of the cascade.

# Error Reporting

Callers pass a *Diagnostics accumulator; every failure is recorded there as a
summary plus a detail string, and the call also returns a typed error:

	var diag runtimeconfig.Diagnostics
	err := m.CreateObject(hostType, "web01", false, nil, attrs, &diag, nil)
	if err != nil {
		for _, msg := range diag.Errors {
			fmt.Println(msg)
		}
	}

The one exception is a failed package repair: *confpkg.RepairError propagates
unwrapped and untouched by the diagnostics, because it describes a node whose
storage is unusable rather than a request that was refused.

# Origins

Changes that arrive from a cluster peer carry an *events.Origin. The pipeline
forwards it into every lifecycle event it publishes, and the event broker
suppresses delivery back to the subscriber registered with that origin. This
is what keeps two peers from bouncing the same change between each other
forever.

# Usage

	pkgs := confpkg.NewStore("/var/lib/vigil", broker)
	reg := objects.NewRegistry(broker)

	m := runtimeconfig.NewManager(&runtimeconfig.Config{
		Packages: pkgs,
		Types:    types.DefaultRegistry(),
		Objects:  reg,
		Graph:    depgraph.New(),
		Index:    index,    // optional bbolt-backed record index
		Notifier: notifier, // optional cluster authority signal
	})

	hostType, _ := m.Types().Lookup("Host")

	var diag runtimeconfig.Diagnostics
	err := m.CreateObject(hostType, "web01", false, nil, types.Attributes{
		"address":       "10.0.0.7",
		"check_command": "hostalive",
	}, &diag, nil)

# See Also

  - pkg/confpkg - package and stage layout on disk
  - pkg/confcompile - config text to live objects
  - pkg/confwriter - object to config text
  - pkg/objects - the live object registry
  - pkg/depgraph - dependency edges driving cascades
*/
package runtimeconfig
