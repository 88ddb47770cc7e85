// Package resolve implements the traversal driver: the
// component that owns a ResolveState and drives it to a finished
// dependency graph by alternating node expansion with conflict
// resolution until both are exhausted, then walking the result for a
// caller-supplied visitor.
package resolve

import (
	"context"

	"github.com/forgebuild/depresolve/internal/graph"
	"github.com/forgebuild/depresolve/internal/identity"
)

// ResolveContext names the thing being resolved: a root module version
// plus whatever else its resolver needs to locate it.
type ResolveContext struct {
	Name string
	Root identity.ModuleVersionIdentifier
}

// DependencyToComponentIdResolver turns a declared selector into a
// concrete component id, typically by consulting whatever versions a
// module publishes. Implementations may perform I/O.
type DependencyToComponentIdResolver interface {
	ResolveComponentID(ctx context.Context, selector *graph.SelectorState) (identity.ModuleVersionIdentifier, error)
}

// ComponentMetaDataResolver fetches a component's dependency metadata.
// IsFetchingMetadataCheap lets the driver skip the parallel fetch
// barrier for components whose metadata resolution is already local
// (mirrors fastResolve).
type ComponentMetaDataResolver interface {
	IsFetchingMetadataCheap(id identity.ModuleVersionIdentifier) bool
	ResolveMetadata(ctx context.Context, id identity.ModuleVersionIdentifier) (*graph.ComponentMetadata, error)
}

// ResolveContextToComponentResolver resolves the root of a
// ResolveContext to its component metadata.
type ResolveContextToComponentResolver interface {
	ResolveRoot(ctx context.Context, rc ResolveContext) (*graph.ComponentMetadata, error)
}

// ModuleReplacements reports whether a module participates in a
// module-replacement rule. The default NoReplacements implementation
// never does.
type ModuleReplacements interface {
	ParticipatesInReplacements(id identity.ModuleIdentifier) bool
}

// NoReplacements is the zero-configuration ModuleReplacements: no
// module ever participates in a replacement rule. Module-replacement
// policy itself is an external collaborator whose internals this core
// does not need to understand; see DESIGN.md.
type NoReplacements struct{}

func (NoReplacements) ParticipatesInReplacements(identity.ModuleIdentifier) bool { return false }

// DependencyGraphVisitor receives the assembled result in consumer-first
// order.
type DependencyGraphVisitor interface {
	Start(root *graph.NodeState)
	VisitSelector(s *graph.SelectorState)
	VisitNode(n *graph.NodeState)
	VisitEdges(n *graph.NodeState)
	Finish(root *graph.NodeState)
}
