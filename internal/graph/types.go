// Package graph holds the arena-allocated core data model of a single
// resolve: selectors, components, modules, configuration nodes and the
// edges between them. Nothing in this package performs I/O; it is pure
// bookkeeping plus the graph-mutation primitives the traversal driver
// in internal/resolve needs.
package graph

import (
	"github.com/forgebuild/depresolve/internal/identity"
	"github.com/forgebuild/depresolve/internal/semver"
)

// DependencyMetadata is one dependency declaration as reported by a
// component's metadata: the module it targets, the constraint under
// which it is requested, and the modifiers that change how its edge
// participates in traversal.
type DependencyMetadata struct {
	TargetModule identity.ModuleIdentifier
	Constraint   semver.VersionConstraint

	// ConstraintOnly marks a dependency constraint with no hard
	// requirement attached: the edge is deferred by the
	// pending-dependencies handler until some other hard edge requires
	// the same module.
	ConstraintOnly bool

	// Optional edges whose target fails to resolve do not fail the
	// overall resolve; the failure is recorded on the edge only.
	Optional bool
}

// ComponentMetadata is everything the resolver core needs to know about
// one resolved component version.
type ComponentMetadata struct {
	ID           identity.ModuleVersionIdentifier
	Dependencies []DependencyMetadata

	// FastResolve marks components (local/project components, mainly)
	// that never need the preemptive parallel download path because
	// their metadata is already fully available once selected.
	FastResolve bool
}

// VisitState tracks an entity's progress through the consumer-first
// assembly walk.
type VisitState int

const (
	NotSeen VisitState = iota
	Visiting
	Visited
)

func (v VisitState) String() string {
	switch v {
	case NotSeen:
		return "NotSeen"
	case Visiting:
		return "Visiting"
	case Visited:
		return "Visited"
	default:
		return "Unknown"
	}
}
