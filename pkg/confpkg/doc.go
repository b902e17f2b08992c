/*
Package confpkg manages the on-disk layout of configuration packages and
their stages.

A package is a named collection of configuration; a stage is one immutable
snapshot of that configuration. Every package has exactly one active stage,
recorded in a pointer file inside the package directory. New configuration is
written into a fresh stage and activated by flipping the pointer, so the node
can always fall back to a complete, consistent snapshot.

# Layout

	<dataDir>/packages/
	└── _api/
	    ├── active-stage                  ← pointer file, one stage id
	    ├── 8a67b0e4-.../                 ← stage directory
	    │   └── conf.d/
	    │       ├── hosts/
	    │       │   └── web01.conf
	    │       └── services/
	    │           └── web01!http.conf
	    └── 51f2c9d1-.../                 ← older stage, inert
	        └── conf.d/

Stage ids are random UUIDs; nothing about a stage name is meaningful beyond
being unique within its package.

# The Reserved Package

The package "_api" holds every object created at runtime. It is bootstrapped
lazily: the first create request on a fresh node creates the package, a first
stage, and the pointer file in one serialized section, so concurrent first
requests cannot each invent their own stage.

	store := confpkg.NewStore("/var/lib/vigil", broker)
	if err := store.EnsureAPIPackage(); err != nil {
		...
	}

# Repair

A package can lose its active-stage pointer: a crash between stage creation
and activation, a deleted pointer file, a restored backup. GetConfigDir
detects the missing pointer and repairs the package by activating the first
stage directory it finds. The choice is deliberately "first available" rather
than "most recent": any complete snapshot restores the invariant, and stage
directories carry no reliable ordering.

A package with no stage directories at all cannot be repaired. That is a
*RepairError, and callers treat it as fatal for the node's write path rather
than as an ordinary request failure. Successful repairs are counted and
announced on the event broker so operators notice a node that keeps healing
itself.

# Atomicity

The pointer file is replaced through pkg/atomicfile: written to a temp file,
synced, then renamed over the old pointer. A crashed writer leaves either the
old pointer or the new one, never a torn file.

# See Also

  - pkg/runtimeconfig - the write path that lives inside "_api"
  - pkg/atomicfile - the write-then-rename primitive
*/
package confpkg
