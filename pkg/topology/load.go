package topology

import (
	"math"
	"slices"

	"github.com/matzehuels/netdraw/pkg/errors"
	"github.com/matzehuels/netdraw/pkg/graph"
)

// Load builds a Graph from a decoded document.
//
// Records with empty or duplicate identifiers are rejected, as are nodes
// listed in the Sub of more than one aggregate. References to records that do
// not exist (an edge id in a node's Edges, a sub id, an edge endpoint) are
// tolerated and skipped wherever they are resolved.
//
// When a node record carries no merged flag, the node starts merged if and
// only if some aggregate lists it.
func Load(doc *graph.Document) (*Graph, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "document is nil")
	}

	g := &Graph{
		Type:       doc.Type,
		Partitions: slices.Clone(doc.Partitions),
		Topos:      slices.Clone(doc.Topos),
		nodes:      make([]Node, 0, len(doc.Nodes)),
		edges:      make([]Edge, 0, len(doc.Edges)),
		links:      make([]Link, 0, len(doc.Links)),
		nodeIdx:    make(map[string]int, len(doc.Nodes)),
		edgeIdx:    make(map[string]int, len(doc.Edges)),
		linkIdx:    make(map[string]int, len(doc.Links)),
		parent:     make(map[int]int),
	}

	if err := g.loadEdges(doc.Edges); err != nil {
		return nil, err
	}
	if err := g.loadLinks(doc.Links); err != nil {
		return nil, err
	}
	if err := g.loadNodes(doc.Nodes); err != nil {
		return nil, err
	}
	if err := g.linkHierarchy(); err != nil {
		return nil, err
	}

	for i, rec := range doc.Nodes {
		if rec.Merged != nil {
			g.nodes[i].Merged = bool(*rec.Merged)
		} else {
			_, listed := g.parent[i]
			g.nodes[i].Merged = listed
		}
	}

	g.Recompute()
	return g, nil
}

func (g *Graph) loadEdges(recs []graph.EdgeRecord) error {
	minGbits := math.Inf(1)
	for _, rec := range recs {
		id := rec.ID.String()
		if id == "" {
			return errors.New(errors.ErrCodeInvalidDocument, "edge with empty id")
		}
		if _, dup := g.edgeIdx[id]; dup {
			return errors.New(errors.ErrCodeInvalidDocument, "duplicate edge id %q", id)
		}
		g.edgeIdx[id] = len(g.edges)
		g.edges = append(g.edges, Edge{
			Index:   len(g.edges),
			ID:      id,
			From:    rec.From.String(),
			To:      rec.To.String(),
			Reverse: rec.Reverse.String(),
			Gbits:   rec.Gbits,
			Part:    slices.Clone(rec.Part),
			Links:   graph.IDs(rec.Links),
			Label:   int(math.Round(rec.Gbits)),
		})
		minGbits = min(minGbits, rec.Gbits)
	}

	for i := range g.edges {
		if minGbits > 0 && !math.IsInf(minGbits, 1) {
			g.edges[i].Width = g.edges[i].Gbits / minGbits
		} else {
			g.edges[i].Width = 1
		}
	}
	return nil
}

func (g *Graph) loadLinks(recs []graph.LinkRecord) error {
	for _, rec := range recs {
		id := rec.ID.String()
		if id == "" {
			return errors.New(errors.ErrCodeInvalidDocument, "link with empty id")
		}
		if _, dup := g.linkIdx[id]; dup {
			return errors.New(errors.ErrCodeInvalidDocument, "duplicate link id %q", id)
		}
		g.linkIdx[id] = len(g.links)
		g.links = append(g.links, Link{
			Index:   len(g.links),
			ID:      id,
			SrcPort: rec.SrcPort,
			DstPort: rec.DstPort,
			Gbits:   rec.Gbits,
		})
	}
	return nil
}

func (g *Graph) loadNodes(recs []graph.NodeRecord) error {
	for _, rec := range recs {
		id := rec.ID.String()
		if id == "" {
			return errors.New(errors.ErrCodeInvalidDocument, "node with empty id")
		}
		if _, dup := g.nodeIdx[id]; dup {
			return errors.New(errors.ErrCodeInvalidDocument, "duplicate node id %q", id)
		}
		g.nodeIdx[id] = len(g.nodes)
		g.nodes = append(g.nodes, Node{
			Index:    len(g.nodes),
			ID:       id,
			Type:     rec.Type,
			Title:    rec.Desc,
			Hostname: rec.Hostname,
			Part:     slices.Clone(rec.Part),
			Topo:     topoFromWire(rec.Topo),
			Sub:      graph.IDs(rec.Sub),
			Edges:    graph.IDs(rec.Edges),
		})
	}
	return nil
}

func (g *Graph) linkHierarchy() error {
	for a := range g.nodes {
		for _, s := range g.nodes[a].Sub {
			c, ok := g.nodeIdx[s]
			if !ok {
				continue
			}
			if c == a {
				return errors.New(errors.ErrCodeInvalidDocument, "node %q lists itself as a sub-node", s)
			}
			if p, seen := g.parent[c]; seen && p != a {
				return errors.New(errors.ErrCodeInvalidDocument,
					"node %q is a sub-node of both %q and %q", s, g.nodes[p].ID, g.nodes[a].ID)
			}
			g.parent[c] = a
		}
	}
	return nil
}

// Recompute re-derives node bandwidth and size from the node's incident
// edges, and rebuilds the distinct bandwidth lists used for coloring.
func (g *Graph) Recompute() {
	g.nodeBandwidths = g.nodeBandwidths[:0]
	for i := range g.nodes {
		n := &g.nodes[i]
		bw := 0.0
		for _, eid := range n.Edges {
			if e, ok := g.Edge(eid); ok {
				bw += e.Gbits
			} else {
				bw += MissingEdgeGbits
			}
		}
		n.Bandwidth = bw
		if bw > 0 {
			n.Size = 10 * math.Log(bw)
		} else {
			n.Size = 0
		}
		if !slices.Contains(g.nodeBandwidths, n.Size) {
			g.nodeBandwidths = append(g.nodeBandwidths, n.Size)
		}
	}

	g.edgeBandwidths = g.edgeBandwidths[:0]
	for i := range g.edges {
		if !slices.Contains(g.edgeBandwidths, g.edges[i].Gbits) {
			g.edgeBandwidths = append(g.edgeBandwidths, g.edges[i].Gbits)
		}
	}
}
