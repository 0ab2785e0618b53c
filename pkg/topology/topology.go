package topology

import (
	"slices"

	"github.com/matzehuels/netdraw/pkg/errors"
	"github.com/matzehuels/netdraw/pkg/graph"
)

// MissingEdgeGbits is the bandwidth an unresolved edge reference contributes
// to its node.
const MissingEdgeGbits = 8.0

// Node is a host or switch in the arena.
type Node struct {
	Index    int    // Stable arena index
	ID       string // Document identifier
	Type     string // graph.NodeHost or graph.NodeSwitch
	Title    string // Display title (document "desc")
	Hostname string
	Part     []int    // Partition indices
	Topo     Topo     // Hardware-locality topology, if any
	Sub      []string // Sub-node ids when this node is an aggregate
	Edges    []string // Incident edge ids, in document order

	// Derived at load time.
	Bandwidth float64
	Size      float64

	// Merged is true while the node is folded into its aggregate.
	Merged bool
}

// IsHost reports whether the node is a host.
func (n *Node) IsHost() bool { return n.Type == graph.NodeHost }

// IsAggregate reports whether the node stands in for sub-nodes.
func (n *Node) IsAggregate() bool { return len(n.Sub) > 0 }

// InPartition reports whether the node belongs to partition p.
// Partition -1 contains every node.
func (n *Node) InPartition(p int) bool {
	return p == -1 || slices.Contains(n.Part, p)
}

// Edge is one direction of a bundle of physical links.
type Edge struct {
	Index   int
	ID      string
	From    string
	To      string
	Reverse string // Mirror edge id, empty if none
	Gbits   float64
	Part    []int
	Links   []string

	// Derived at load time.
	Label int     // round(Gbits)
	Width float64 // Gbits relative to the thinnest edge
}

// InPartition reports whether the edge belongs to partition p.
// Partition -1 contains every edge.
func (e *Edge) InPartition(p int) bool {
	return p == -1 || slices.Contains(e.Part, p)
}

// Link is a physical port-to-port connection.
type Link struct {
	Index   int
	ID      string
	SrcPort string
	DstPort string
	Gbits   float64
}

// Graph is the arena-backed topology model.
//
// The zero value is not usable; build one with [Load].
type Graph struct {
	Type       string
	Partitions []string
	Topos      []string

	nodes []Node
	edges []Edge
	links []Link

	nodeIdx map[string]int
	edgeIdx map[string]int
	linkIdx map[string]int
	parent  map[int]int // sub-node index -> aggregate index

	nodeBandwidths []float64
	edgeBandwidths []float64
}

// IsTree reports whether the document asked for the tree layout.
func (g *Graph) IsTree() bool { return g.Type == graph.TypeTree }

// NodeCount returns the number of nodes in the arena.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the arena.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// LinkCount returns the number of links in the arena.
func (g *Graph) LinkCount() int { return len(g.links) }

// NodeAt returns the node at arena index i.
// It panics if i is out of range, like a slice access.
func (g *Graph) NodeAt(i int) *Node { return &g.nodes[i] }

// EdgeAt returns the edge at arena index i.
func (g *Graph) EdgeAt(i int) *Edge { return &g.edges[i] }

// LinkAt returns the link at arena index i.
func (g *Graph) LinkAt(i int) *Link { return &g.links[i] }

// Node looks up a node by document id.
func (g *Graph) Node(id string) (*Node, bool) {
	i, ok := g.nodeIdx[id]
	if !ok {
		return nil, false
	}
	return &g.nodes[i], true
}

// NodeIndex returns the arena index of the node with the given id.
func (g *Graph) NodeIndex(id string) (int, bool) {
	i, ok := g.nodeIdx[id]
	return i, ok
}

// Edge looks up an edge by document id.
func (g *Graph) Edge(id string) (*Edge, bool) {
	i, ok := g.edgeIdx[id]
	if !ok {
		return nil, false
	}
	return &g.edges[i], true
}

// EdgeIndex returns the arena index of the edge with the given id.
func (g *Graph) EdgeIndex(id string) (int, bool) {
	i, ok := g.edgeIdx[id]
	return i, ok
}

// Link looks up a link by document id.
func (g *Graph) Link(id string) (*Link, bool) {
	i, ok := g.linkIdx[id]
	if !ok {
		return nil, false
	}
	return &g.links[i], true
}

// Parent returns the aggregate that lists the node in its Sub, if any.
func (g *Graph) Parent(id string) (*Node, bool) {
	i, ok := g.nodeIdx[id]
	if !ok {
		return nil, false
	}
	p, ok := g.parent[i]
	if !ok {
		return nil, false
	}
	return &g.nodes[p], true
}

// Children returns the arena indices of an aggregate's resolvable sub-nodes,
// in Sub order.
func (g *Graph) Children(i int) []int {
	n := &g.nodes[i]
	out := make([]int, 0, len(n.Sub))
	for _, s := range n.Sub {
		if c, ok := g.nodeIdx[s]; ok {
			out = append(out, c)
		}
	}
	return out
}

// SetMerged flips the folded state of a node. It is the only mutation the
// model allows after load.
func (g *Graph) SetMerged(id string, merged bool) error {
	i, ok := g.nodeIdx[id]
	if !ok {
		return errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
	}
	g.nodes[i].Merged = merged
	return nil
}

// NodeBandwidths returns the distinct node sizes in node order. Coloring by
// bandwidth indexes into this list.
func (g *Graph) NodeBandwidths() []float64 { return g.nodeBandwidths }

// EdgeBandwidths returns the distinct edge capacities in edge order.
func (g *Graph) EdgeBandwidths() []float64 { return g.edgeBandwidths }

// PartitionName returns the name of partition p, or an empty string.
func (g *Graph) PartitionName(p int) string {
	if p < 0 || p >= len(g.Partitions) {
		return ""
	}
	return g.Partitions[p]
}

// TopoName returns the name of the topology, or an empty string when absent.
func (g *Graph) TopoName(t Topo) string {
	i, ok := t.Get()
	if !ok || i >= len(g.Topos) {
		return ""
	}
	return g.Topos[i]
}
