package resolve

import (
	"sort"

	"github.com/forgebuild/depresolve/internal/graph"
)

// assembleResult walks the finished graph for visitor in consumer-first
// order: for every selected edge A -> B, A's VisitEdges is called before
// B's. It follows the work-list algorithm directly: seed the list with
// every module's selected component, then repeatedly pop the front
// entry and, before emitting it, insert in front of it any not-yet-seen
// component that owns an edge into it. A component is only emitted once
// every such consumer has been emitted first; a component encountered a
// second time while still Visiting means a cycle closed back on itself,
// and is emitted in place rather than waiting forever.
//
// ComponentState.VisitState doubles as both this walk's bookkeeping and,
// afterward, a diagnostic a caller can inspect.
func (d *Driver) assembleResult(state *graph.ResolveState, visitor DependencyGraphVisitor) {
	visitor.Start(state.Root)

	for _, s := range state.Selectors() {
		visitor.VisitSelector(s)
	}

	selected := selectedComponentsInOrder(state)
	for _, c := range selected {
		visitor.VisitNode(c.Node)
	}

	workList := append([]*graph.ComponentState{}, selected...)
	for len(workList) > 0 {
		c := workList[0]

		switch c.VisitState {
		case graph.Visited:
			workList = workList[1:]
			continue
		case graph.Visiting:
			c.VisitState = graph.Visited
			workList = workList[1:]
			visitor.VisitEdges(c.Node)
			continue
		}

		c.VisitState = graph.Visiting

		var toInsert []*graph.ComponentState
		seen := make(map[*graph.ComponentState]bool)
		for _, e := range c.Node.IncomingEdges {
			origin := e.From.Owner
			if origin.VisitState != graph.NotSeen || seen[origin] {
				continue
			}
			seen[origin] = true
			toInsert = append(toInsert, origin)
		}

		if len(toInsert) == 0 {
			c.VisitState = graph.Visited
			workList = workList[1:]
			visitor.VisitEdges(c.Node)
			continue
		}
		workList = append(toInsert, workList...)
	}

	visitor.Finish(state.Root)
}

// selectedComponentsInOrder returns every currently-selected component,
// ordered by the arena handle of its node so the seed order (and
// therefore the whole walk) is a deterministic function of creation
// order rather than Go's randomized map iteration.
func selectedComponentsInOrder(state *graph.ResolveState) []*graph.ComponentState {
	var out []*graph.ComponentState
	for _, c := range state.Components() {
		if c.IsSelected() {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Node.ID() < out[j].Node.ID() })
	return out
}
