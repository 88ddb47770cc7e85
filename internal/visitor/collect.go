package visitor

import "github.com/forgebuild/depresolve/internal/graph"

// Collected is the flattened shape a Collector gathers from a resolve:
// every visited component keyed by its coordinate, and every selector
// along with whatever it resolved to or failed with.
type Collected struct {
	Root       string
	Components map[string]*graph.ComponentState
	Selectors  []*graph.SelectorState
}

// Collector is a DependencyGraphVisitor that just accumulates the
// walked result into a Collected value, for tests that want to assert
// on the final graph shape without hand-rolling a visitor.
type Collector struct {
	result Collected
}

func NewCollector() *Collector {
	return &Collector{result: Collected{Components: make(map[string]*graph.ComponentState)}}
}

func (c *Collector) Start(root *graph.NodeState) {
	c.result.Root = root.Owner.ID.String()
}

func (c *Collector) VisitNode(n *graph.NodeState) {
	c.result.Components[n.Owner.ID.String()] = n.Owner
}

func (c *Collector) VisitEdges(n *graph.NodeState) {}

func (c *Collector) VisitSelector(s *graph.SelectorState) {
	c.result.Selectors = append(c.result.Selectors, s)
}

func (c *Collector) Finish(root *graph.NodeState) {}

// Result returns the accumulated walk. Valid only after a resolve has
// run with this Collector as its visitor.
func (c *Collector) Result() Collected { return c.result }
