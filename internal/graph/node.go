package graph

// NodeState is a configuration of a ComponentState: the unit the
// traversal driver actually enqueues, expands and attaches edges to.
// This implementation materializes exactly one NodeState per
// ComponentState (see DESIGN.md) rather than one per resolved
// attribute/variant combination.
type NodeState struct {
	id int

	Owner *ComponentState

	IncomingEdges []*EdgeState
	OutgoingEdges []*EdgeState

	// Selected mirrors Owner.IsSelected() at the node granularity the
	// traversal driver operates on: the deselect-version action clears
	// it independently of the owner's module-level selection bookkeeping
	// when a node becomes unreachable rather than merely outvoted.
	Selected bool

	queued        bool
	edgesComputed bool
}

func newNodeState(id int, owner *ComponentState) *NodeState {
	return &NodeState{id: id, Owner: owner}
}

// ID returns the node's stable arena handle.
func (n *NodeState) ID() int { return n.id }

// EdgesComputed reports whether computeOutgoingEdges has already run
// for this node: each node expands exactly once.
func (n *NodeState) EdgesComputed() bool { return n.edgesComputed }

// MarkEdgesComputed records that this node's outgoing edges have been
// materialized so a later re-enqueue does not recompute them.
func (n *NodeState) MarkEdgesComputed() { n.edgesComputed = true }

func (n *NodeState) addIncoming(e *EdgeState) {
	n.IncomingEdges = append(n.IncomingEdges, e)
}

func (n *NodeState) removeIncoming(e *EdgeState) {
	for i, existing := range n.IncomingEdges {
		if existing == e {
			n.IncomingEdges = append(n.IncomingEdges[:i], n.IncomingEdges[i+1:]...)
			return
		}
	}
}
