package resolve_test

import (
	"context"
	"testing"
	"time"

	"github.com/forgebuild/depresolve/internal/graph"
	"github.com/forgebuild/depresolve/internal/resolve"
)

// orderRecorder is a DependencyGraphVisitor that records the order in
// which VisitNode and VisitEdges fire, so a test can assert on P3
// (consumer-first visitor ordering) without hand-rolling a graph walk.
type orderRecorder struct {
	nodeOrder  []string
	edgeOrder  []string
	edgeBefore map[string]bool // componentID -> VisitNode already fired for it
}

func newOrderRecorder() *orderRecorder {
	return &orderRecorder{edgeBefore: make(map[string]bool)}
}

func (r *orderRecorder) Start(root *graph.NodeState) {}

func (r *orderRecorder) VisitNode(n *graph.NodeState) {
	r.nodeOrder = append(r.nodeOrder, n.Owner.ID.String())
	r.edgeBefore[n.Owner.ID.String()] = true
}

func (r *orderRecorder) VisitEdges(n *graph.NodeState) {
	r.edgeOrder = append(r.edgeOrder, n.Owner.ID.String())
}

func (r *orderRecorder) VisitSelector(s *graph.SelectorState) {}
func (r *orderRecorder) Finish(root *graph.NodeState)         {}

func indexOf(order []string, id string) int {
	for i, v := range order {
		if v == id {
			return i
		}
	}
	return -1
}

// TestAssembleResultVisitsConsumersBeforeSharedDependency is P3/S1 on a
// diamond: Root depends on both A and B, and A and B both depend on C.
// Once the conflict between the two declared versions of C resolves,
// both A's and B's edges point at the same winning C - exactly the shape
// that a plain top-down DFS over outgoing edges gets wrong, because it
// would reach C through whichever of A/B it descends into first and
// emit VisitEdges(C) before the other one has been visited at all.
func TestAssembleResultVisitsConsumersBeforeSharedDependency(t *testing.T) {
	registry := mustRegistry(t, `
root: g:root:1.0
modules:
  g:root:1.0:
    dependencies:
      - {module: "g:a", prefer: "1.0.0"}
      - {module: "g:b", prefer: "1.0.0"}
  g:a:1.0.0:
    dependencies:
      - {module: "g:c", prefer: "1.0.0"}
  g:b:1.0.0:
    dependencies:
      - {module: "g:c", prefer: "2.0.0"}
  g:c:1.0.0:
    dependencies: []
  g:c:2.0.0:
    dependencies: []
`)

	driver := resolve.NewDriver(registry, registry, registry)
	recorder := newOrderRecorder()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := driver.Resolve(ctx, resolve.ResolveContext{Name: "t", Root: registry.Root()}, recorder); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	idxA := indexOf(recorder.edgeOrder, "g:a:1.0.0")
	idxB := indexOf(recorder.edgeOrder, "g:b:1.0.0")
	idxC := indexOf(recorder.edgeOrder, "g:c:2.0.0")

	if idxA == -1 || idxB == -1 || idxC == -1 {
		t.Fatalf("expected VisitEdges for a, b and the winning c, got order %v", recorder.edgeOrder)
	}
	if idxA > idxC {
		t.Fatalf("expected VisitEdges(a) before VisitEdges(c), got order %v", recorder.edgeOrder)
	}
	if idxB > idxC {
		t.Fatalf("expected VisitEdges(b) before VisitEdges(c), got order %v", recorder.edgeOrder)
	}
	for _, id := range []string{"g:root:1.0", "g:a:1.0.0", "g:b:1.0.0", "g:c:2.0.0"} {
		if !recorder.edgeBefore[id] {
			t.Fatalf("expected VisitNode to have fired for %s before assembly finished", id)
		}
	}
	if recorder.edgeOrder[0] != "g:root:1.0" {
		t.Fatalf("expected root's edges to be visited first (no consumer of its own), got order %v", recorder.edgeOrder)
	}
}

// TestAssembleResultBreaksCycles is S3: a cycle between two components
// must not loop forever, and each must have VisitEdges called exactly
// once.
func TestAssembleResultBreaksCycles(t *testing.T) {
	registry := mustRegistry(t, `
root: g:root:1.0
modules:
  g:root:1.0:
    dependencies:
      - {module: "g:c", prefer: "1.0.0"}
  g:c:1.0.0:
    dependencies:
      - {module: "g:d", prefer: "1.0.0"}
  g:d:1.0.0:
    dependencies:
      - {module: "g:c", prefer: "1.0.0"}
`)

	driver := resolve.NewDriver(registry, registry, registry)
	recorder := newOrderRecorder()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := driver.Resolve(ctx, resolve.ResolveContext{Name: "t", Root: registry.Root()}, recorder); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	counts := map[string]int{}
	for _, id := range recorder.edgeOrder {
		counts[id]++
	}
	for _, id := range []string{"g:c:1.0.0", "g:d:1.0.0"} {
		if counts[id] != 1 {
			t.Fatalf("expected VisitEdges(%s) exactly once, got %d in order %v", id, counts[id], recorder.edgeOrder)
		}
	}
}
