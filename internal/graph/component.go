package graph

import "github.com/forgebuild/depresolve/internal/identity"

// ComponentState is one candidate version of a module. At
// most one ComponentState exists per ModuleVersionIdentifier within a
// resolve; it is created the first time some selector resolves to that
// version and persists even if it is later deselected, so a later
// conflict-resolution pass can reselect it without re-resolving
// anything.
type ComponentState struct {
	id int

	ID          identity.ModuleVersionIdentifier
	ComponentID identity.ComponentIdentifier
	Module      *ModuleResolveState
	Metadata    *ComponentMetadata

	// Node is this component's single configuration. This implementation
	// materializes one NodeState per ComponentState; see DESIGN.md for
	// why full variant-aware configuration selection is out of scope
	// here.
	Node *NodeState

	isSelected bool
	Selectable bool
	VisitState VisitState
	IsRoot     bool

	// AllResolvers is the set of selectors that have resolved to this
	// version, whether or not it ended up selected. tryCompatibleSelection
	// and conflict resolution walk it to repoint these selectors (and
	// their edges) when another version of the module wins.
	AllResolvers []*SelectorState
}

func newComponentState(id int, vid identity.ModuleVersionIdentifier, module *ModuleResolveState) *ComponentState {
	return &ComponentState{
		id:         id,
		ID:         vid,
		Module:     module,
		Selectable: true,
	}
}

// IsSelected reports whether this is currently its module's selected
// candidate.
func (c *ComponentState) IsSelected() bool { return c.isSelected }

// FastResolve reports whether this component's metadata makes it
// ineligible for preemptive parallel download.
func (c *ComponentState) FastResolve() bool {
	return c.Metadata != nil && c.Metadata.FastResolve
}

// AddResolver records that selector resolved to this component.
func (c *ComponentState) AddResolver(s *SelectorState) {
	c.AllResolvers = append(c.AllResolvers, s)
}

// ModuleResolveState is one module across all of its candidate
// versions.
type ModuleResolveState struct {
	ID         identity.ModuleIdentifier
	Selected   *ComponentState
	Candidates map[string]*ComponentState // version string -> candidate
	Selectors  []*SelectorState

	// ParticipatesInReplacements mirrors the ModuleReplacementsData
	// collaborator: tryCompatibleSelection's "nothing selected yet" case
	// only short-circuits when the module does not participate in any
	// module-replacement rule.
	ParticipatesInReplacements bool
}

func newModuleResolveState(id identity.ModuleIdentifier) *ModuleResolveState {
	return &ModuleResolveState{ID: id, Candidates: make(map[string]*ComponentState)}
}

// SelectableCandidates returns every candidate version still eligible
// to participate in conflict resolution.
func (m *ModuleResolveState) SelectableCandidates() []*ComponentState {
	out := make([]*ComponentState, 0, len(m.Candidates))
	for _, c := range m.Candidates {
		if c.Selectable {
			out = append(out, c)
		}
	}
	return out
}
