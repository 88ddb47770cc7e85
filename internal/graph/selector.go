package graph

import (
	"github.com/forgebuild/depresolve/internal/identity"
	"github.com/forgebuild/depresolve/internal/semver"
)

// SelectorState is one occurrence of a dependency edge's declared
// requirement. It is created when its owning edge is first visited and
// lives for the lifetime of the ResolveState that owns it.
type SelectorState struct {
	id int

	Module     identity.ModuleIdentifier
	Constraint semver.VersionConstraint

	// ResolvedTo is the ComponentState this selector resolved to, or
	// nil if resolution has not happened yet or failed.
	ResolvedTo *ComponentState

	// Failure is set when the id resolver could not resolve this
	// selector to any component.
	Failure error

	// Edge is the single edge this selector belongs to. Conflict
	// resolution uses it to repoint and, if necessary, reattach an
	// edge whose selector previously resolved to a losing candidate.
	Edge *EdgeState
}

// ID returns the selector's stable arena handle.
func (s *SelectorState) ID() int { return s.id }
