// Package pending implements the PendingDependenciesHandler collaborator:
// dependency constraints with no hard requirement attached are deferred
// until some other edge elsewhere in the graph requires the same
// module.
package pending

import (
	"github.com/forgebuild/depresolve/internal/graph"
	"github.com/forgebuild/depresolve/internal/identity"
)

// Activation is one edge released back to its declaring node because a
// hard edge for the same module showed up elsewhere.
type Activation struct {
	Node *graph.NodeState
	Edge *graph.EdgeState
}

// Handler defers constraint-only edges per module and releases them
// once a hard dependency on that module is seen.
type Handler struct {
	deferred map[identity.ModuleIdentifier][]Activation
}

// NewHandler creates an empty pending-dependencies handler.
func NewHandler() *Handler {
	return &Handler{deferred: make(map[identity.ModuleIdentifier][]Activation)}
}

// Defer records edge, declared by node, as a constraint-only dependency
// on moduleID that should not be traversed until Activate releases it.
func (h *Handler) Defer(moduleID identity.ModuleIdentifier, node *graph.NodeState, edge *graph.EdgeState) {
	h.deferred[moduleID] = append(h.deferred[moduleID], Activation{Node: node, Edge: edge})
}

// HasPending reports whether any edge is currently deferred for
// moduleID.
func (h *Handler) HasPending(moduleID identity.ModuleIdentifier) bool {
	return len(h.deferred[moduleID]) > 0
}

// Activate releases every edge deferred for moduleID, if any, clearing
// them from the deferred set.
func (h *Handler) Activate(moduleID identity.ModuleIdentifier) []Activation {
	released, ok := h.deferred[moduleID]
	if !ok {
		return nil
	}
	delete(h.deferred, moduleID)
	return released
}
