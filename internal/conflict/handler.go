// Package conflict implements the ConflictHandler collaborator: it
// tracks modules with more than one selectable candidate version and,
// once the ready queue drains, hands each one to a chain of Resolvers
// to pick a winner.
package conflict

import (
	"github.com/forgebuild/depresolve/internal/graph"
	"github.com/forgebuild/depresolve/internal/identity"
	"github.com/forgebuild/depresolve/internal/semver"
)

// Resolver is a tie-break strategy consulted when ResolveNextConflict
// picks a winner among a module's candidate versions. Resolvers are
// tried in registration order; the first one to return ok=true wins.
type Resolver interface {
	Select(moduleID identity.ModuleIdentifier, candidates []*graph.ComponentState) (version string, ok bool)
}

// PotentialConflict is the outcome of registering a module with the
// Handler.
type PotentialConflict struct {
	participant identity.ModuleIdentifier
	conflict    bool
}

// ConflictExists reports whether registering the module actually
// produced a conflict (more than one selectable candidate).
func (p PotentialConflict) ConflictExists() bool { return p.conflict }

// WithParticipatingModules invokes action for the module dragged into
// the conflict.
func (p PotentialConflict) WithParticipatingModules(action func(identity.ModuleIdentifier)) {
	if p.conflict {
		action(p.participant)
	}
}

type conflictedModule struct {
	id         identity.ModuleIdentifier
	candidates map[string]*graph.ComponentState
}

// Handler is the default, in-process ConflictHandler.
type Handler struct {
	resolvers []Resolver
	pending   []*conflictedModule
	queued    map[identity.ModuleIdentifier]*conflictedModule
}

// NewHandler creates an empty conflict handler.
func NewHandler() *Handler {
	return &Handler{queued: make(map[identity.ModuleIdentifier]*conflictedModule)}
}

// RegisterResolver appends r to the chain of tie-break strategies.
func (h *Handler) RegisterResolver(r Resolver) {
	h.resolvers = append(h.resolvers, r)
}

// RegisterModule records module's current set of selectable candidates.
// Call this only after tryCompatibleSelection has already failed to
// reconcile the new candidate with whatever is currently selected.
func (h *Handler) RegisterModule(module *graph.ModuleResolveState) PotentialConflict {
	selectable := module.SelectableCandidates()
	if len(selectable) <= 1 {
		delete(h.queued, module.ID)
		return PotentialConflict{}
	}

	cm, ok := h.queued[module.ID]
	if !ok {
		cm = &conflictedModule{id: module.ID, candidates: make(map[string]*graph.ComponentState)}
		h.queued[module.ID] = cm
		h.pending = append(h.pending, cm)
	}
	for _, c := range selectable {
		cm.candidates[c.ID.Version] = c
	}
	return PotentialConflict{participant: module.ID, conflict: true}
}

// HasConflicts reports whether any registered module is still waiting
// on a winner.
func (h *Handler) HasConflicts() bool { return len(h.pending) > 0 }

// ResolveNextConflict pops one pending conflict, asks each registered
// resolver in turn for a winner, falls back to highest-version-wins,
// and invokes action with the module and the chosen version.
func (h *Handler) ResolveNextConflict(action func(moduleID identity.ModuleIdentifier, version string)) {
	if len(h.pending) == 0 {
		return
	}
	cm := h.pending[0]
	h.pending = h.pending[1:]
	delete(h.queued, cm.id)

	candidates := make([]*graph.ComponentState, 0, len(cm.candidates))
	for _, c := range cm.candidates {
		candidates = append(candidates, c)
	}

	chosen := ""
	for _, r := range h.resolvers {
		if v, ok := r.Select(cm.id, candidates); ok {
			chosen = v
			break
		}
	}
	if chosen == "" {
		chosen = highestVersion(candidates)
	}
	action(cm.id, chosen)
}

// highestVersion picks the candidate with the greatest semantic
// version, falling back to the first candidate (by map iteration) for
// unparseable versions.
func highestVersion(candidates []*graph.ComponentState) string {
	var best *graph.ComponentState
	var bestVersion semver.Version
	for _, c := range candidates {
		v, err := semver.ParseVersion(c.ID.Version)
		if err != nil {
			if best == nil {
				best = c
			}
			continue
		}
		if best == nil || bestVersion.IsZero() || semver.Compare(v, bestVersion) > 0 {
			best = c
			bestVersion = v
		}
	}
	if best == nil {
		return ""
	}
	return best.ID.Version
}
