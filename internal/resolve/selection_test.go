package resolve

import (
	"testing"

	"github.com/forgebuild/depresolve/internal/graph"
	"github.com/forgebuild/depresolve/internal/identity"
	"github.com/forgebuild/depresolve/internal/semver"
)

func mustConstraint(t *testing.T, preferred, rejected string) semver.VersionConstraint {
	t.Helper()
	c, err := semver.NewVersionConstraint(preferred, rejected)
	if err != nil {
		t.Fatalf("failed to build constraint %q/%q: %v", preferred, rejected, err)
	}
	return c
}

func selectorWith(t *testing.T, preferred, rejected string) *graph.SelectorState {
	t.Helper()
	return &graph.SelectorState{Constraint: mustConstraint(t, preferred, rejected)}
}

// TestAllSelectorsAgreeWithRangeOverlap is S6: two range selectors that both
// cover 1.7 agree; once one of them is replaced by an unconstrained
// selector, the filter no longer has a constrained selector to agree with
// and the result flips to false.
func TestAllSelectorsAgreeWithRangeOverlap(t *testing.T) {
	version := semver.MustParseVersion("1.7.0")

	a := selectorWith(t, ">=1.0.0 <2.0.0", "")
	b := selectorWith(t, ">=1.5.0 <3.0.0", "")
	if !allSelectorsAgreeWith([]*graph.SelectorState{a, b}, version, all) {
		t.Fatalf("expected overlapping ranges to agree on 1.7.0")
	}

	unconstrained := &graph.SelectorState{}
	if allSelectorsAgreeWith([]*graph.SelectorState{a, unconstrained}, version, func(s *graph.SelectorState) bool {
		return s == unconstrained
	}) {
		t.Fatalf("expected filter excluding every constrained selector to disagree")
	}
}

func TestAllSelectorsAgreeWithRejectedVetoes(t *testing.T) {
	version := semver.MustParseVersion("1.7.0")
	s := selectorWith(t, ">=1.0.0 <2.0.0", "1.7.0")
	if allSelectorsAgreeWith([]*graph.SelectorState{s}, version, all) {
		t.Fatalf("expected a rejected selector matching version to disagree")
	}
}

func TestAllSelectorsAgreeWithDynamicSelectorDisagrees(t *testing.T) {
	version := semver.MustParseVersion("1.7.0")
	s := selectorWith(t, "latest.release", "")
	if allSelectorsAgreeWith([]*graph.SelectorState{s}, version, all) {
		t.Fatalf("expected a dynamic selector (cannot short-circuit) to disagree")
	}
}

func newResolveStateWithModule(group, name string) (*graph.ResolveState, identity.ModuleIdentifier) {
	state := graph.NewResolveState(identity.NewCache())
	id := identity.ModuleIdentifier{Group: group, Name: name}
	state.GetOrCreateModule(id)
	return state, id
}

// TestTryCompatibleSelectionCaseASelectsWhenEverySelectorAgrees exercises
// §4.4 Case A: with nothing selected yet, a module whose only selectors all
// accept the candidate's version is auto-selected.
func TestTryCompatibleSelectionCaseASelectsWhenEverySelectorAgrees(t *testing.T) {
	state, id := newResolveStateWithModule("g", "a")
	module := state.GetOrCreateModule(id)

	state.NewSelector(id, mustConstraint(t, ">=1.0.0 <2.0.0", ""))
	state.NewSelector(id, mustConstraint(t, ">=1.5.0 <3.0.0", ""))

	candidate := state.GetOrCreateComponent(identity.ModuleVersionIdentifier{Module: id, Version: "1.7.0"})

	if !tryCompatibleSelection(state, candidate, module) {
		t.Fatalf("expected Case A to select the candidate when every selector agrees")
	}
	if module.Selected != candidate {
		t.Fatalf("expected module to have selected the candidate")
	}
}

// TestTryCompatibleSelectionCaseARejectsOnDisagreement reproduces the
// regression this test guards against: two disagreeing selectors resolving
// to the first-arriving candidate must not be auto-selected, they must fall
// through to conflict registration.
func TestTryCompatibleSelectionCaseARejectsOnDisagreement(t *testing.T) {
	state, id := newResolveStateWithModule("g", "a")
	module := state.GetOrCreateModule(id)

	state.NewSelector(id, mustConstraint(t, "1.0.0", ""))
	state.NewSelector(id, mustConstraint(t, "2.0.0", ""))

	candidate := state.GetOrCreateComponent(identity.ModuleVersionIdentifier{Module: id, Version: "1.0.0"})

	if tryCompatibleSelection(state, candidate, module) {
		t.Fatalf("expected Case A to refuse selection when selectors disagree")
	}
	if module.Selected != nil {
		t.Fatalf("expected module to remain unselected, got %v", module.Selected)
	}
}

// TestTryCompatibleSelectionCaseBSubsumesCandidate covers Case B's first
// branch: the candidate's own resolver already accepts the selected
// version, so it is folded into the existing selection.
func TestTryCompatibleSelectionCaseBSubsumesCandidate(t *testing.T) {
	state, id := newResolveStateWithModule("g", "a")
	module := state.GetOrCreateModule(id)

	selected := state.GetOrCreateComponent(identity.ModuleVersionIdentifier{Module: id, Version: "1.5.0"})
	state.Select(selected)

	candidateSelector := state.NewSelector(id, mustConstraint(t, ">=1.0.0 <2.0.0", ""))
	candidate := state.GetOrCreateComponent(identity.ModuleVersionIdentifier{Module: id, Version: "1.2.0"})
	candidateSelector.ResolvedTo = candidate
	candidate.AddResolver(candidateSelector)

	if !tryCompatibleSelection(state, candidate, module) {
		t.Fatalf("expected Case B to subsume the candidate")
	}
	if module.Selected != selected {
		t.Fatalf("expected selection to remain on the existing version")
	}
	if candidateSelector.ResolvedTo != selected {
		t.Fatalf("expected the candidate's resolver to be re-pointed at the existing selection")
	}
	if len(candidate.AllResolvers) != 0 {
		t.Fatalf("expected candidate's resolver set to be drained after re-pointing")
	}
}

// TestTryCompatibleSelectionCaseBSoftReplacesSelection covers Case B's
// second branch: every selector that did not choose the candidate still
// agrees with the candidate's version, so the existing selection is
// replaced without registering a conflict.
func TestTryCompatibleSelectionCaseBSoftReplacesSelection(t *testing.T) {
	state, id := newResolveStateWithModule("g", "a")
	module := state.GetOrCreateModule(id)

	wideSelector := state.NewSelector(id, mustConstraint(t, ">=1.0.0 <3.0.0", ""))
	selected := state.GetOrCreateComponent(identity.ModuleVersionIdentifier{Module: id, Version: "1.0.0"})
	wideSelector.ResolvedTo = selected
	selected.AddResolver(wideSelector)
	state.Select(selected)

	narrowSelector := state.NewSelector(id, mustConstraint(t, "2.0.0", ""))
	candidate := state.GetOrCreateComponent(identity.ModuleVersionIdentifier{Module: id, Version: "2.0.0"})
	narrowSelector.ResolvedTo = candidate
	candidate.AddResolver(narrowSelector)

	if !tryCompatibleSelection(state, candidate, module) {
		t.Fatalf("expected Case B's second branch to soft-replace the selection")
	}
	if module.Selected != candidate {
		t.Fatalf("expected candidate to become the new selection")
	}
	if selected.IsSelected() {
		t.Fatalf("expected the old selection to no longer be selected")
	}
	if wideSelector.ResolvedTo != candidate {
		t.Fatalf("expected the old selection's resolver to be re-pointed at the candidate")
	}
	if len(selected.AllResolvers) != 0 {
		t.Fatalf("expected the old selection's resolver set to be drained after re-pointing")
	}
}

// TestTryCompatibleSelectionCaseBFallsThroughOnGenuineConflict covers two
// mutually-exclusive exact-version selectors: neither branch of Case B can
// agree, so the function must report false and let the caller register a
// conflict.
func TestTryCompatibleSelectionCaseBFallsThroughOnGenuineConflict(t *testing.T) {
	state, id := newResolveStateWithModule("g", "a")
	module := state.GetOrCreateModule(id)

	selA := state.NewSelector(id, mustConstraint(t, "1.0.0", ""))
	selected := state.GetOrCreateComponent(identity.ModuleVersionIdentifier{Module: id, Version: "1.0.0"})
	selA.ResolvedTo = selected
	selected.AddResolver(selA)
	state.Select(selected)

	selB := state.NewSelector(id, mustConstraint(t, "2.0.0", ""))
	candidate := state.GetOrCreateComponent(identity.ModuleVersionIdentifier{Module: id, Version: "2.0.0"})
	selB.ResolvedTo = candidate
	candidate.AddResolver(selB)

	if tryCompatibleSelection(state, candidate, module) {
		t.Fatalf("expected a genuine conflict to fall through to conflict registration")
	}
	if module.Selected != selected {
		t.Fatalf("expected selection to be untouched by a failed compatible-selection attempt")
	}
}
