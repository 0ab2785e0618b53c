// Package topotest builds small topology documents for tests.
package topotest

import (
	"slices"
	"testing"

	"github.com/matzehuels/netdraw/pkg/graph"
	"github.com/matzehuels/netdraw/pkg/topology"
)

// Builder assembles a [graph.Document] record by record.
type Builder struct {
	doc   graph.Document
	nodes map[string]int
}

// New returns a builder for a tree document with the given partitions.
func New(partitions ...string) *Builder {
	return &Builder{
		doc:   graph.Document{Type: graph.TypeTree, Partitions: partitions},
		nodes: make(map[string]int),
	}
}

// Host adds a host in the given partitions.
func (b *Builder) Host(id string, part ...int) *Builder {
	return b.node(id, graph.NodeHost, part)
}

// Switch adds a switch in the given partitions.
func (b *Builder) Switch(id string, part ...int) *Builder {
	return b.node(id, graph.NodeSwitch, part)
}

func (b *Builder) node(id, typ string, part []int) *Builder {
	b.nodes[id] = len(b.doc.Nodes)
	b.doc.Nodes = append(b.doc.Nodes, graph.NodeRecord{
		ID:   graph.ID(id),
		Type: typ,
		Desc: "desc " + id,
		Part: part,
	})
	return b
}

// Topo assigns a hardware-locality topology to a node, registering the
// topology name if needed.
func (b *Builder) Topo(id, name string) *Builder {
	t := slices.Index(b.doc.Topos, name)
	if t < 0 {
		t = len(b.doc.Topos)
		b.doc.Topos = append(b.doc.Topos, name)
	}
	b.doc.Nodes[b.nodes[id]].Topo = &t
	return b
}

// Connect adds the edge pair from-to and to-from with the given capacity.
// Each edge is in the partitions both endpoints share.
func (b *Builder) Connect(from, to string, gbits float64) *Builder {
	fwd, rev := from+"-"+to, to+"-"+from
	part := shared(b.doc.Nodes[b.nodes[from]].Part, b.doc.Nodes[b.nodes[to]].Part)
	b.doc.Edges = append(b.doc.Edges,
		graph.EdgeRecord{ID: graph.ID(fwd), From: graph.ID(from), To: graph.ID(to), Reverse: graph.ID(rev), Gbits: gbits, Part: part},
		graph.EdgeRecord{ID: graph.ID(rev), From: graph.ID(to), To: graph.ID(from), Reverse: graph.ID(fwd), Gbits: gbits, Part: part},
	)
	b.addEdgeRef(from, fwd)
	b.addEdgeRef(to, rev)
	return b
}

// EdgeRef appends a raw edge reference to a node, resolvable or not.
func (b *Builder) EdgeRef(id, edge string) *Builder {
	b.addEdgeRef(id, edge)
	return b
}

func (b *Builder) addEdgeRef(id, edge string) {
	rec := &b.doc.Nodes[b.nodes[id]]
	rec.Edges = append(rec.Edges, graph.ID(edge))
}

// Link attaches a physical link to an existing edge.
func (b *Builder) Link(edge, id, src, dst string, gbits float64) *Builder {
	b.doc.Links = append(b.doc.Links, graph.LinkRecord{ID: graph.ID(id), SrcPort: src, DstPort: dst, Gbits: gbits})
	for i := range b.doc.Edges {
		if b.doc.Edges[i].ID == graph.ID(edge) {
			b.doc.Edges[i].Links = append(b.doc.Edges[i].Links, graph.ID(id))
		}
	}
	return b
}

// Aggregate lists subs as the sub-nodes of id.
func (b *Builder) Aggregate(id string, subs ...string) *Builder {
	rec := &b.doc.Nodes[b.nodes[id]]
	for _, s := range subs {
		rec.Sub = append(rec.Sub, graph.ID(s))
	}
	return b
}

// Document returns the assembled document.
func (b *Builder) Document() *graph.Document { return &b.doc }

// Graph loads the document, failing the test on error.
func (b *Builder) Graph(t testing.TB) *topology.Graph {
	t.Helper()
	g, err := topology.Load(&b.doc)
	if err != nil {
		t.Fatalf("topology.Load() error = %v", err)
	}
	return g
}

func shared(a, b []int) []int {
	var out []int
	for _, p := range a {
		if slices.Contains(b, p) {
			out = append(out, p)
		}
	}
	return out
}
