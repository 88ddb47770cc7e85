package conflict

import (
	"github.com/forgebuild/depresolve/internal/graph"
	"github.com/forgebuild/depresolve/internal/identity"
)

// DirectDependencyForcingResolver prefers whatever version the root
// component's own direct dependencies resolved to, ahead of any
// transitively-discovered candidate. The traversal driver registers one
// of these ahead of the default highest-version-wins fallback so that
// a constraint declared directly on the root always dominates.
type DirectDependencyForcingResolver struct {
	root *graph.ComponentState
}

// NewDirectDependencyForcingResolver builds a resolver that favors root's
// own direct dependency selectors.
func NewDirectDependencyForcingResolver(root *graph.ComponentState) *DirectDependencyForcingResolver {
	return &DirectDependencyForcingResolver{root: root}
}

func (r *DirectDependencyForcingResolver) Select(moduleID identity.ModuleIdentifier, candidates []*graph.ComponentState) (string, bool) {
	if r.root == nil || r.root.Node == nil {
		return "", false
	}
	for _, e := range r.root.Node.OutgoingEdges {
		if e.Dependency.TargetModule != moduleID {
			continue
		}
		if e.Selector != nil && e.Selector.ResolvedTo != nil {
			return e.Selector.ResolvedTo.ID.Version, true
		}
	}
	return "", false
}
