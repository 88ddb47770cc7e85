package resolve

import (
	"context"

	"github.com/forgebuild/depresolve/internal/conflict"
	"github.com/forgebuild/depresolve/internal/executor"
	"github.com/forgebuild/depresolve/internal/graph"
	"github.com/forgebuild/depresolve/internal/semver"
)

// performSelectionSerially resolves every edge's selector to a
// component id, in order, and feeds each resulting component through
// performSelection. Selector resolution itself never runs
// concurrently: it is typically backed by an in-memory index and the
// ordering determinism matters more than any speedup.
func (d *Driver) performSelectionSerially(ctx context.Context, state *graph.ResolveState, ch *conflict.Handler, edges []*graph.EdgeState) {
	for _, e := range edges {
		component := d.resolveModuleRevisionID(ctx, state, e)
		if component == nil {
			continue
		}
		d.performSelection(state, ch, component)
	}
}

// resolveModuleRevisionID resolves e's selector to a concrete
// component, memoized on the edge so a later re-expansion (e.g. after a
// deselect/reselect cycle) does not re-resolve it.
func (d *Driver) resolveModuleRevisionID(ctx context.Context, state *graph.ResolveState, e *graph.EdgeState) *graph.ComponentState {
	if e.TargetComponent != nil {
		return e.TargetComponent
	}
	vid, err := d.IDResolver.ResolveComponentID(ctx, e.Selector)
	if err != nil {
		e.Selector.Failure = err
		e.Failure = err
		d.Metrics.IncEdgeFailure("selector")
		return nil
	}
	component := state.GetOrCreateComponent(vid)
	component.AddResolver(e.Selector)
	e.Selector.ResolvedTo = component
	e.TargetComponent = component
	return component
}

// performSelection decides what happens to candidate's module now that
// a new selector has resolved to it: fold quietly into
// whatever is already selected when possible, otherwise register a
// conflict and let the handler sort it out once the ready queue drains.
func (d *Driver) performSelection(state *graph.ResolveState, ch *conflict.Handler, candidate *graph.ComponentState) {
	if !candidate.Selectable {
		return
	}
	module := candidate.Module
	if tryCompatibleSelection(state, candidate, module) {
		return
	}
	pc := ch.RegisterModule(module)
	if !pc.ConflictExists() {
		state.Select(candidate)
		return
	}
	pc.WithParticipatingModules(state.DeselectVersionAction)
}

// tryCompatibleSelection reports whether candidate can be folded into
// its module's current selection without raising a conflict.
//
// Case A: nothing is selected yet. If the module does not participate
// in a replacement rule and every one of its selectors agrees with
// candidate's version, candidate is selected outright.
//
// Case B: some other version is already selected. Either every selector
// that resolved to candidate also agrees with the selected version (the
// candidate is subsumed: its resolvers are simply re-pointed at the
// existing selection), or every selector that did *not* resolve to
// candidate agrees with candidate's version (the existing selection is
// soft-replaced: its resolvers re-point at candidate, its own now-stale
// outgoing edges are pruned via the ordinary deselect-version action,
// and candidate becomes the new selection).
func tryCompatibleSelection(state *graph.ResolveState, candidate *graph.ComponentState, module *graph.ModuleResolveState) bool {
	version, err := semver.ParseVersion(candidate.ID.Version)
	if err != nil {
		return false
	}

	selected := module.Selected
	if selected == nil {
		if module.ParticipatesInReplacements {
			return false
		}
		if !allSelectorsAgreeWith(module.Selectors, version, all) {
			return false
		}
		state.Select(candidate)
		return true
	}
	if selected == candidate {
		return true
	}

	selectedVersion, err := semver.ParseVersion(selected.ID.Version)
	if err != nil {
		return false
	}

	chosenCandidate := func(s *graph.SelectorState) bool { return s.ResolvedTo == candidate }
	if allSelectorsAgreeWith(module.Selectors, selectedVersion, chosenCandidate) {
		repointResolvers(candidate, selected)
		return true
	}

	notChosenCandidate := func(s *graph.SelectorState) bool { return s.ResolvedTo != candidate }
	if allSelectorsAgreeWith(module.Selectors, version, notChosenCandidate) {
		repointResolvers(selected, candidate)
		state.DeselectVersionAction(module.ID)
		state.Select(candidate)
		return true
	}

	return false
}

// repointResolvers moves every selector recorded against from onto to,
// repointing its resolution and, if its edge is already attached,
// reattaching it at to's node.
func repointResolvers(from, to *graph.ComponentState) {
	for _, s := range from.AllResolvers {
		s.ResolvedTo = to
		to.AddResolver(s)
		if s.Edge == nil {
			continue
		}
		wasAttached := s.Edge.Attached()
		s.Edge.TargetComponent = to
		if wasAttached {
			s.Edge.Detach()
			s.Edge.AttachTo(to.Node)
		}
	}
	from.AllResolvers = nil
}

// all is the §4.4.1 ALL filter: every selector participates.
func all(*graph.SelectorState) bool { return true }

// allSelectorsAgreeWith reports whether, among the selectors passing
// filter, at least one carries a version constraint and every one that
// does agrees with version: its preferred selector must permit
// short-circuiting and accept version, and its rejected selector, if
// any, must not accept version. Selectors with no constraint at all are
// ignored. If no selector passing filter carries a constraint, the
// result is false — "at least one must agree" is not satisfied
// vacuously.
func allSelectorsAgreeWith(selectors []*graph.SelectorState, version semver.Version, filter func(*graph.SelectorState) bool) bool {
	agreed := false
	for _, s := range selectors {
		if !filter(s) {
			continue
		}
		preferred := s.Constraint.Preferred
		rejected := s.Constraint.Rejected
		if preferred == nil && rejected == nil {
			continue
		}
		if preferred != nil && (!preferred.CanShortCircuitWhenVersionAlreadyPreselected() || !preferred.Accept(version)) {
			return false
		}
		if rejected != nil && rejected.Accept(version) {
			return false
		}
		agreed = true
	}
	return agreed
}

// maybeDownloadMetadataInParallel fetches metadata for whichever selected
// target components need it outside of the cheap path, in parallel when
// more than one requires it.
func (d *Driver) maybeDownloadMetadataInParallel(ctx context.Context, edges []*graph.EdgeState) {
	var requiringDownload []*graph.EdgeState
	for _, e := range edges {
		if e.TargetComponent == nil || e.Failure != nil {
			continue
		}
		if e.TargetComponent.Metadata != nil || !e.TargetComponent.IsSelected() {
			continue
		}
		if d.MetadataResolver.IsFetchingMetadataCheap(e.TargetComponent.ID) {
			continue
		}
		requiringDownload = append(requiringDownload, e)
	}
	if len(requiringDownload) == 0 {
		return
	}

	exec := d.Executor
	if len(requiringDownload) <= 1 || exec == nil {
		exec = executor.Serial{}
	}

	ops := make([]executor.Operation, 0, len(requiringDownload))
	for _, e := range requiringDownload {
		e := e
		ops = append(ops, func(ctx context.Context) error {
			d.Metrics.FetchStarted()
			defer d.Metrics.FetchDone()
			meta, err := d.MetadataResolver.ResolveMetadata(ctx, e.TargetComponent.ID)
			if err != nil {
				e.Failure = err
				d.Metrics.IncEdgeFailure("metadata")
				return err
			}
			e.TargetComponent.Metadata = meta
			return nil
		})
	}
	_ = exec.RunAll(ctx, ops)
}

// attachToTargetRevisionsSerially attaches every edge that resolved to a
// target component, and whose metadata resolves, to that component's
// node, in order. The target does not have to be currently selected.
// Metadata that the parallel stage did not fetch is fetched here, just
// before attaching.
func (d *Driver) attachToTargetRevisionsSerially(ctx context.Context, edges []*graph.EdgeState) {
	for _, e := range edges {
		if e.TargetComponent == nil || e.Failure != nil || e.Attached() {
			continue
		}
		if e.TargetComponent.Metadata == nil {
			meta, err := d.MetadataResolver.ResolveMetadata(ctx, e.TargetComponent.ID)
			if err != nil {
				e.Failure = err
				d.Metrics.IncEdgeFailure("metadata")
				continue
			}
			e.TargetComponent.Metadata = meta
		}
		e.AttachTo(e.TargetComponent.Node)
	}
}
