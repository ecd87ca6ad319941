package editor

import "nodeflow/services/meta"

// LiveNode is one node on the editing surface: its document fields plus the
// rendered transform (position, size) and resolved port lists.
type LiveNode struct {
	ID       string
	Type     string
	Title    string
	Params   map[string]any
	Position [2]float64
	Size     [2]float64
	Inputs   []meta.PortSpec
	Outputs  []meta.PortSpec
}

// LiveEdge is one committed connection, stored by its endpoint strings.
type LiveEdge struct {
	From string
	To   string
}

// LiveGraph is the mutable in-memory mirror of the document during an
// editing session. It is exclusively owned by the Adapter; all other
// components read derived snapshots.
type LiveGraph struct {
	nodes map[string]*LiveNode
	order []string // node insertion order, for deterministic serialization
	edges []LiveEdge
}

// NewLiveGraph returns an empty live graph.
func NewLiveGraph() *LiveGraph {
	return &LiveGraph{nodes: make(map[string]*LiveNode)}
}

// Node returns the live node with the given id.
func (g *LiveGraph) Node(id string) (*LiveNode, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// NodeIDs returns all node ids in insertion order.
func (g *LiveGraph) NodeIDs() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Edges returns a copy of the committed edge list in insertion order.
func (g *LiveGraph) Edges() []LiveEdge {
	out := make([]LiveEdge, len(g.edges))
	copy(out, g.edges)
	return out
}

// incomingCount counts committed edges terminating at the given endpoint.
func (g *LiveGraph) incomingCount(to string) int {
	count := 0
	for _, e := range g.edges {
		if e.To == to {
			count++
		}
	}
	return count
}

// hasEdge reports whether an identical (from, to) edge is already committed.
func (g *LiveGraph) hasEdge(from, to string) bool {
	for _, e := range g.edges {
		if e.From == from && e.To == to {
			return true
		}
	}
	return false
}

func (g *LiveGraph) addNode(n *LiveNode) {
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
}

func (g *LiveGraph) removeNode(id string) {
	delete(g.nodes, id)
	for i, existing := range g.order {
		if existing == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

func (g *LiveGraph) clear() {
	g.nodes = make(map[string]*LiveNode)
	g.order = nil
	g.edges = nil
}
