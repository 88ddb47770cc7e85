// Package visitor provides ready-made DependencyGraphVisitor
// implementations: a tree-printing visitor for the CLI and a
// map-collecting one for tests that want to assert on the shape of a
// resolve without writing their own visitor.
package visitor

import (
	"fmt"
	"io"
	"sort"

	"github.com/forgebuild/depresolve/internal/graph"
)

// Tree prints the resolved graph as an indented tree. It does its own
// recursive walk from the root rather than relying on the
// assembleResult callback order, since indentation needs parent depth
// that the DependencyGraphVisitor callbacks alone don't carry.
type Tree struct {
	Out io.Writer
}

func (t *Tree) Start(root *graph.NodeState) {
	fmt.Fprintf(t.Out, "%s\n", root.Owner.ID)
	t.print(root, 1, make(map[*graph.NodeState]bool))
}

func (t *Tree) print(n *graph.NodeState, depth int, onPath map[*graph.NodeState]bool) {
	if onPath[n] {
		fmt.Fprintf(t.Out, "%s%s (cycle)\n", indent(depth), n.Owner.ID)
		return
	}
	onPath[n] = true
	defer delete(onPath, n)

	children := attachedEdges(n)
	for _, e := range children {
		for _, target := range e.TargetNodes() {
			marker := ""
			if e.Dependency.Optional {
				marker = " (optional)"
			}
			fmt.Fprintf(t.Out, "%s%s%s\n", indent(depth), target.Owner.ID, marker)
			t.print(target, depth+1, onPath)
		}
	}
}

func attachedEdges(n *graph.NodeState) []*graph.EdgeState {
	out := make([]*graph.EdgeState, 0, len(n.OutgoingEdges))
	for _, e := range n.OutgoingEdges {
		if e.Attached() {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Dependency.TargetModule.String() < out[j].Dependency.TargetModule.String()
	})
	return out
}

func (t *Tree) VisitNode(n *graph.NodeState)         {}
func (t *Tree) VisitEdges(n *graph.NodeState)        {}
func (t *Tree) VisitSelector(s *graph.SelectorState) {}
func (t *Tree) Finish(root *graph.NodeState)         {}

func indent(depth int) string {
	out := make([]byte, depth*2)
	for i := range out {
		out[i] = ' '
	}
	return string(out)
}
