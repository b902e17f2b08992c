// Package depgraph tracks dependency edges between configuration objects.
//
// An edge records that a dependent needs its dependency: a service needs its
// host, a comment needs its service. The graph answers the one question the
// delete path cares about: who depends on this object (GetParents), which
// decides whether a delete needs cascade.
package depgraph
