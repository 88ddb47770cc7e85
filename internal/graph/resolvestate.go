package graph

import (
	"github.com/forgebuild/depresolve/internal/identity"
	"github.com/forgebuild/depresolve/internal/semver"
)

// ResolveState is the arena and ready-queue for a single resolve() call.
// Every selector, component, module, node and edge created during the
// resolve is owned by it and addressed through a stable int handle, so
// the whole arena can be discarded in one shot
// once resolve() returns. Its bookkeeping is only ever touched by the
// single traversal goroutine; the parallel metadata-fetch stage writes
// nothing but the fetched component's Metadata and the fetching edge's
// Failure.
type ResolveState struct {
	IdentifierCache *identity.Cache

	modules    map[identity.ModuleIdentifier]*ModuleResolveState
	components map[identity.ModuleVersionIdentifier]*ComponentState
	nodes      []*NodeState
	selectors  []*SelectorState
	edges      []*EdgeState

	nextID int

	queue []*NodeState

	Root *NodeState

	// ReplacementsParticipant reports whether a module participates in
	// a module-replacement rule (ModuleReplacementsData). NewResolveState
	// sets it to treat no module as a replacement participant; it must
	// not be nil.
	ReplacementsParticipant func(identity.ModuleIdentifier) bool
}

// NewResolveState creates an empty arena backed by cache for minting
// component identities.
func NewResolveState(cache *identity.Cache) *ResolveState {
	return &ResolveState{
		IdentifierCache:         cache,
		modules:                 make(map[identity.ModuleIdentifier]*ModuleResolveState),
		components:              make(map[identity.ModuleVersionIdentifier]*ComponentState),
		ReplacementsParticipant: func(identity.ModuleIdentifier) bool { return false },
	}
}

func (s *ResolveState) nextHandle() int {
	s.nextID++
	return s.nextID
}

// GetOrCreateModule returns the ModuleResolveState for id, creating it
// on first reference.
func (s *ResolveState) GetOrCreateModule(id identity.ModuleIdentifier) *ModuleResolveState {
	if m, ok := s.modules[id]; ok {
		return m
	}
	m := newModuleResolveState(id)
	m.ParticipatesInReplacements = s.ReplacementsParticipant(id)
	s.modules[id] = m
	return m
}

// Modules returns every module touched so far, in no particular order.
func (s *ResolveState) Modules() []*ModuleResolveState {
	out := make([]*ModuleResolveState, 0, len(s.modules))
	for _, m := range s.modules {
		out = append(out, m)
	}
	return out
}

// GetOrCreateComponent returns the ComponentState for vid, creating it
// (and its single NodeState) on first reference.
func (s *ResolveState) GetOrCreateComponent(vid identity.ModuleVersionIdentifier) *ComponentState {
	if c, ok := s.components[vid]; ok {
		return c
	}
	module := s.GetOrCreateModule(vid.Module)
	c := newComponentState(s.nextHandle(), vid, module)
	c.ComponentID = s.IdentifierCache.GetOrCreate(vid, identity.DefaultComponentIdentifier)
	c.Node = newNodeState(s.nextHandle(), c)
	s.nodes = append(s.nodes, c.Node)
	s.components[vid] = c
	module.Candidates[vid.Version] = c
	return c
}

// Components returns every component created so far, in no particular
// order.
func (s *ResolveState) Components() []*ComponentState {
	out := make([]*ComponentState, 0, len(s.components))
	for _, c := range s.components {
		out = append(out, c)
	}
	return out
}

// Nodes returns every node created so far, in creation order.
func (s *ResolveState) Nodes() []*NodeState { return s.nodes }

// Selectors returns every selector created so far, in creation order.
func (s *ResolveState) Selectors() []*SelectorState { return s.selectors }

// NewSelector mints a new selector for one edge occurrence and attaches
// it to its module's selector set, so a later compatible-selection check
// for that module can see it.
func (s *ResolveState) NewSelector(module identity.ModuleIdentifier, constraint semver.VersionConstraint) *SelectorState {
	sel := &SelectorState{id: s.nextHandle(), Module: module, Constraint: constraint}
	s.selectors = append(s.selectors, sel)
	m := s.GetOrCreateModule(module)
	m.Selectors = append(m.Selectors, sel)
	return sel
}

// NewEdge mints a new edge from from, appending it to from's outgoing
// set.
func (s *ResolveState) NewEdge(from *NodeState, dep DependencyMetadata, selector *SelectorState) *EdgeState {
	e := newEdgeState(s.nextHandle(), from, dep, selector)
	if selector != nil {
		selector.Edge = e
	}
	s.edges = append(s.edges, e)
	from.OutgoingEdges = append(from.OutgoingEdges, e)
	return e
}

// --- ready queue --------------------------------------------------

// Empty reports whether the ready queue has no node left to expand.
func (s *ResolveState) Empty() bool { return len(s.queue) == 0 }

// Pop removes and returns the next node to expand, in FIFO order.
func (s *ResolveState) Pop() *NodeState {
	n := s.queue[0]
	s.queue = s.queue[1:]
	n.queued = false
	return n
}

// OnMoreSelected marks node selected and, if it is not already queued,
// enqueues it for (re-)expansion. Safe to call repeatedly for the same
// node; deselecting and reselecting a node across conflict-resolution
// rounds simply re-enqueues it, and computeOutgoingEdges is idempotent
// about recomputation.
func (s *ResolveState) OnMoreSelected(n *NodeState) {
	n.Selected = true
	if !n.queued {
		n.queued = true
		s.queue = append(s.queue, n)
	}
}

// --- selection ------------------------------------------------------

// Select performs a hard select of candidate for its module: any
// previous selection is superseded and candidate's node becomes
// reachable from the root.
func (s *ResolveState) Select(candidate *ComponentState) {
	module := candidate.Module
	prev := module.Selected
	module.Selected = candidate
	candidate.isSelected = true
	if prev != nil && prev != candidate {
		prev.isSelected = false
	}
	s.OnMoreSelected(candidate.Node)
}

// DeselectVersionAction clears the current selection for moduleID,
// marks the previously-selected version non-selectable-for-now, and
// prunes everything that loses reachability as a result.
func (s *ResolveState) DeselectVersionAction(moduleID identity.ModuleIdentifier) {
	module, ok := s.modules[moduleID]
	if !ok {
		return
	}
	prev := module.Selected
	if prev == nil {
		return
	}
	module.Selected = nil
	prev.isSelected = false
	prev.Selectable = false
	prev.Node.Selected = false
	s.detachOutgoingEdges(prev.Node)
}

// detachOutgoingEdges removes node's attached outgoing edges from their
// targets' incoming sets, cascading the same pruning to any target node
// that becomes unreachable as a result. The root is never pruned.
func (s *ResolveState) detachOutgoingEdges(n *NodeState) {
	for _, e := range n.OutgoingEdges {
		if !e.attached {
			continue
		}
		targets := e.targetNodes
		e.Detach()
		for _, target := range targets {
			if target == s.Root {
				continue
			}
			if len(target.IncomingEdges) == 0 {
				target.Selected = false
				s.detachOutgoingEdges(target)
			}
		}
	}
}
