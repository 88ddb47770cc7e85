package graph

// EdgeState is a directed dependency from a NodeState to the node(s) of
// a target ComponentState. An edge's origin, declared dependency
// metadata and selector are fixed at creation; its target attachment is
// assigned later, during the attach phase of resolveEdges.
type EdgeState struct {
	id int

	From       *NodeState
	Dependency DependencyMetadata
	Selector   *SelectorState

	TargetComponent *ComponentState
	targetNodes     []*NodeState

	// Failure records a metadata-fetch or selector-resolution failure
	// specific to this edge.
	Failure error

	attached bool
}

func newEdgeState(id int, from *NodeState, dep DependencyMetadata, selector *SelectorState) *EdgeState {
	return &EdgeState{id: id, From: from, Dependency: dep, Selector: selector}
}

// ID returns the edge's stable arena handle.
func (e *EdgeState) ID() int { return e.id }

// TargetNodes returns the configurations this edge currently attaches
// to, or nil if it has not been attached (yet, or ever, if it failed).
func (e *EdgeState) TargetNodes() []*NodeState { return e.targetNodes }

// Attached reports whether this edge currently contributes to its
// target's incoming edge set.
func (e *EdgeState) Attached() bool { return e.attached }

// AttachTo attaches this edge to the given target configurations,
// registering it on each target's incoming edge set. Called during the
// attach phase of resolveEdges, and again after Detach when conflict
// resolution repoints the edge at another component. Calling it twice
// without a Detach in between registers the edge twice.
func (e *EdgeState) AttachTo(nodes ...*NodeState) {
	e.targetNodes = nodes
	e.attached = true
	for _, n := range nodes {
		n.addIncoming(e)
	}
}

// Detach removes this edge from its targets' incoming edge sets. Used
// by the deselect-version action when a node stops being reachable.
func (e *EdgeState) Detach() {
	for _, n := range e.targetNodes {
		n.removeIncoming(e)
	}
	e.targetNodes = nil
	e.attached = false
}
