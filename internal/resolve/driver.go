package resolve

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/forgebuild/depresolve/internal/conflict"
	"github.com/forgebuild/depresolve/internal/executor"
	"github.com/forgebuild/depresolve/internal/graph"
	"github.com/forgebuild/depresolve/internal/identity"
	"github.com/forgebuild/depresolve/internal/metrics"
	"github.com/forgebuild/depresolve/internal/pending"
)

// Driver owns a single resolve from start to finish: it seeds a
// ResolveState from the root, alternates node expansion with conflict
// resolution until both the ready queue and the conflict backlog are
// empty, then walks the result for a visitor.
type Driver struct {
	IDResolver       DependencyToComponentIdResolver
	MetadataResolver ComponentMetaDataResolver
	RootResolver     ResolveContextToComponentResolver
	Replacements     ModuleReplacements
	Executor         executor.BuildOperationExecutor

	Logger  logr.Logger
	Metrics metrics.Recorder
}

// NewDriver builds a Driver with the default collaborators: no module
// replacements, a discarding logger, and an errgroup-backed parallel
// executor for the metadata-download barrier.
func NewDriver(idResolver DependencyToComponentIdResolver, metadataResolver ComponentMetaDataResolver, rootResolver ResolveContextToComponentResolver) *Driver {
	return &Driver{
		IDResolver:       idResolver,
		MetadataResolver: metadataResolver,
		RootResolver:     rootResolver,
		Replacements:     NoReplacements{},
		Executor:         executor.Parallel{},
		Logger:           logr.Discard(),
	}
}

// nodeActivation is a batch of pending-dependency edges released onto a
// node that may already have been fully expanded.
type nodeActivation struct {
	node  *graph.NodeState
	edges []*graph.EdgeState
}

// Resolve runs a single resolve for rc, driving state to completion and
// walking it into visitor. The only error Resolve itself returns is a
// root-resolution failure; every other failure is
// recorded on the offending selector or edge and surfaced to visitor.
func (d *Driver) Resolve(ctx context.Context, rc ResolveContext, visitor DependencyGraphVisitor) error {
	invocation := uuid.New()
	log := d.Logger.WithValues("invocation", invocation.String(), "root", rc.Name)

	d.Metrics.Root = rc.Name

	rootMeta, err := d.RootResolver.ResolveRoot(ctx, rc)
	if err != nil {
		return fmt.Errorf("resolve %s (invocation %s): resolve root %s: %w", rc.Name, invocation, rc.Root, err)
	}

	state := graph.NewResolveState(identity.NewCache())
	if d.Replacements != nil {
		state.ReplacementsParticipant = d.Replacements.ParticipatesInReplacements
	}

	root := state.GetOrCreateComponent(rc.Root)
	root.Metadata = rootMeta
	root.IsRoot = true
	state.Root = root.Node

	ch := conflict.NewHandler()
	ch.RegisterResolver(conflict.NewDirectDependencyForcingResolver(root))
	ph := pending.NewHandler()

	state.Select(root)

	log.V(1).Info("traversal starting")
	d.traverseGraph(ctx, state, ch, ph)
	d.assembleResult(state, visitor)

	for range state.Components() {
		d.Metrics.IncComponentsVisited()
	}
	log.V(1).Info("resolve finished", "components", len(state.Components()))
	return nil
}

// traverseGraph implements the driver loop: expand whatever node is
// ready, drain any pending-dependency reactivations that expansion
// unblocked, and only reach for the conflict handler once nothing else
// is ready to run.
func (d *Driver) traverseGraph(ctx context.Context, state *graph.ResolveState, ch *conflict.Handler, ph *pending.Handler) {
	var activations []nodeActivation

	for !state.Empty() || ch.HasConflicts() || len(activations) > 0 {
		if len(activations) > 0 {
			act := activations[0]
			activations = activations[1:]
			d.resolveEdges(ctx, state, ch, act.node, act.edges)
			continue
		}

		if !state.Empty() {
			node := state.Pop()
			edges := d.computeOutgoingEdges(ctx, state, ph, node, &activations)
			d.resolveEdges(ctx, state, ch, node, edges)
			continue
		}

		ch.ResolveNextConflict(func(moduleID identity.ModuleIdentifier, version string) {
			d.Metrics.IncConflictsResolved()
			d.replaceSelection(state, moduleID, version)
		})
	}
}

// replaceSelection applies a resolved conflict: the winning version is
// hard-selected, every losing candidate is marked permanently
// non-selectable, and any edge whose selector had already resolved to
// a losing candidate is repointed at the winner and reattached if it
// was previously attached. Without this sweep, an edge
// resolved before the conflict was even detected would be left
// pointing at a version nothing else in the graph still selects.
func (d *Driver) replaceSelection(state *graph.ResolveState, moduleID identity.ModuleIdentifier, version string) {
	module := state.GetOrCreateModule(moduleID)
	winner, ok := module.Candidates[version]
	if !ok {
		return
	}
	winner.Selectable = true

	for v, candidate := range module.Candidates {
		if v == version {
			continue
		}
		candidate.Selectable = false
		for _, sel := range candidate.AllResolvers {
			sel.ResolvedTo = winner
			winner.AddResolver(sel)
			edge := sel.Edge
			if edge == nil {
				continue
			}
			wasAttached := edge.Attached()
			edge.TargetComponent = winner
			if wasAttached {
				edge.Detach()
				edge.AttachTo(winner.Node)
			}
		}
		candidate.AllResolvers = nil
	}

	state.Select(winner)
}

// computeOutgoingEdges materializes node's outgoing edges exactly once.
// Constraint-only dependencies are deferred to ph rather than returned;
// discovering a hard dependency on a module that already has deferred
// edges releases them into activations for the driver to process as
// their own mini-batch.
func (d *Driver) computeOutgoingEdges(ctx context.Context, state *graph.ResolveState, ph *pending.Handler, node *graph.NodeState, activations *[]nodeActivation) []*graph.EdgeState {
	if node.EdgesComputed() {
		var active []*graph.EdgeState
		for _, e := range node.OutgoingEdges {
			if e.Dependency.ConstraintOnly && ph.HasPending(e.Dependency.TargetModule) {
				continue
			}
			active = append(active, e)
		}
		return active
	}
	node.MarkEdgesComputed()

	owner := node.Owner
	if owner.Metadata == nil {
		meta, err := d.MetadataResolver.ResolveMetadata(ctx, owner.ID)
		if err != nil {
			d.Metrics.IncEdgeFailure("metadata")
			return nil
		}
		owner.Metadata = meta
	}

	released := map[*graph.NodeState][]*graph.EdgeState{}
	var active []*graph.EdgeState
	for _, dep := range owner.Metadata.Dependencies {
		sel := state.NewSelector(dep.TargetModule, dep.Constraint)
		edge := state.NewEdge(node, dep, sel)
		if dep.ConstraintOnly {
			ph.Defer(dep.TargetModule, node, edge)
			continue
		}
		active = append(active, edge)
		for _, act := range ph.Activate(dep.TargetModule) {
			released[act.Node] = append(released[act.Node], act.Edge)
		}
	}
	for n, edges := range released {
		*activations = append(*activations, nodeActivation{node: n, edges: edges})
	}
	return active
}

// resolveEdges is the three-phase barrier: select, then (maybe) fetch
// in parallel, then attach. Each phase runs to completion over the
// whole batch before the next begins.
func (d *Driver) resolveEdges(ctx context.Context, state *graph.ResolveState, ch *conflict.Handler, node *graph.NodeState, edges []*graph.EdgeState) {
	if len(edges) == 0 {
		return
	}
	d.performSelectionSerially(ctx, state, ch, edges)
	d.maybeDownloadMetadataInParallel(ctx, edges)
	d.attachToTargetRevisionsSerially(ctx, edges)
}
