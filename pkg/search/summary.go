package search

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/netdraw/pkg/topology"
)

// NodeSummary describes one selected node.
type NodeSummary struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Hostname   string   `json:"hostname"`
	Partitions []string `json:"partitions"`
	Subnodes   []string `json:"subnodes"`   // Titles
	Neighbours []string `json:"neighbours"` // One line block per edge, sorted
	Bandwidth  float64  `json:"bandwidth"`
	Topology   string   `json:"topology,omitempty"`

	neighbourIDs []string
}

// Specific lists the neighbours one node does not share with the rest of
// the selection.
type Specific struct {
	Title      string   `json:"title"`
	Neighbours []string `json:"neighbours"`
}

// NodeReport is the text panel for a node selection.
type NodeReport struct {
	Nodes    []NodeSummary `json:"nodes"`
	Similar  []string      `json:"similar,omitempty"`
	Specific []Specific    `json:"specific,omitempty"`
}

// SummarizeNodes describes the nodes with the given ids. Unknown ids are
// skipped. With more than one node, the report also lists the neighbours
// every node shares, and per node the ones it does not.
func SummarizeNodes(g *topology.Graph, ids []string) NodeReport {
	var r NodeReport
	for _, id := range ids {
		n, ok := g.Node(id)
		if !ok {
			continue
		}
		r.Nodes = append(r.Nodes, summarize(g, n))
	}
	if len(r.Nodes) < 2 {
		return r
	}

	shared := slices.Clone(r.Nodes[0].neighbourIDs)
	for _, s := range r.Nodes[1:] {
		shared = slices.DeleteFunc(shared, func(id string) bool {
			return !slices.Contains(s.neighbourIDs, id)
		})
	}
	r.Similar = titles(g, shared)
	slices.Sort(r.Similar)

	for _, s := range r.Nodes {
		var own []string
		for _, id := range s.neighbourIDs {
			if !slices.Contains(shared, id) {
				own = append(own, id)
			}
		}
		names := titles(g, own)
		slices.Sort(names)
		r.Specific = append(r.Specific, Specific{Title: s.Title, Neighbours: names})
	}
	return r
}

func summarize(g *topology.Graph, n *topology.Node) NodeSummary {
	s := NodeSummary{
		ID:         n.ID,
		Title:      n.Title,
		Hostname:   n.Hostname,
		Partitions: partitionNames(g, n.Part),
		Subnodes:   []string{},
		Neighbours: []string{},
		Bandwidth:  n.Bandwidth,
		Topology:   g.TopoName(n.Topo),
	}
	for _, sub := range n.Sub {
		if c, ok := g.Node(sub); ok {
			s.Subnodes = append(s.Subnodes, c.Title)
		}
	}
	for _, eid := range n.Edges {
		e, ok := g.Edge(eid)
		if !ok {
			continue
		}
		dest, ok := g.Node(e.To)
		if !ok {
			continue
		}
		var b strings.Builder
		fmt.Fprintf(&b, "\t%s (%s) - edgeId %s: %dGb\n", dest.Title, dest.ID, e.ID, e.Label)
		for _, l := range linkLines(g, e) {
			b.WriteString(l + "\n")
		}
		s.Neighbours = append(s.Neighbours, b.String())
		s.neighbourIDs = append(s.neighbourIDs, dest.ID)
	}
	slices.Sort(s.Neighbours)
	return s
}

// String renders the report as plain text.
func (r NodeReport) String() string {
	if len(r.Nodes) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d nodes selected\n", len(r.Nodes))
	for _, s := range r.Nodes {
		fmt.Fprintf(&b, "%s\n", s.Title)
		fmt.Fprintf(&b, "ID: %s Hostname: %s\n", s.ID, s.Hostname)
		fmt.Fprintf(&b, "Partitions: %s\n", strings.Join(s.Partitions, ", "))
		fmt.Fprintf(&b, "Subnodes: %s\n", strings.Join(s.Subnodes, ", "))
		fmt.Fprintf(&b, "%d neighbours:\n%s", len(s.Neighbours), strings.Join(s.Neighbours, ""))
		fmt.Fprintf(&b, "Total bandwidth: %s\n", formatNumber(s.Bandwidth))
		if s.Topology != "" {
			fmt.Fprintf(&b, "Hwloc topology: %s\n", s.Topology)
		}
	}
	if len(r.Nodes) > 1 {
		fmt.Fprintf(&b, "Similar neighbours\n%d similar neighbours:\n", len(r.Similar))
		for _, t := range r.Similar {
			fmt.Fprintf(&b, "\t%s\n", t)
		}
		b.WriteString("Specific neighbours\n")
		for _, s := range r.Specific {
			fmt.Fprintf(&b, "\t%s: %s\n", s.Title, strings.Join(s.Neighbours, ", "))
		}
	}
	return b.String()
}

// EdgeSummary describes one selected edge.
type EdgeSummary struct {
	ID         string   `json:"id"`
	Partitions []string `json:"partitions"`
	Line       string   `json:"line"`
	Links      []string `json:"links"`
}

// EdgeReport is the text panel for an edge selection.
type EdgeReport struct {
	Count int           `json:"count"`
	Edges []EdgeSummary `json:"edges,omitempty"`
}

// SummarizeEdges describes the edges with the given ids. Details are only
// produced when no node is selected; otherwise just the count is reported.
func SummarizeEdges(g *topology.Graph, ids []string, nodesSelected bool) EdgeReport {
	r := EdgeReport{Count: len(ids)}
	if nodesSelected {
		return r
	}
	for _, id := range ids {
		e, ok := g.Edge(id)
		if !ok {
			continue
		}
		src, _ := g.Node(e.From)
		dest, _ := g.Node(e.To)
		r.Edges = append(r.Edges, EdgeSummary{
			ID:         e.ID,
			Partitions: partitionNames(g, e.Part),
			Line:       fmt.Sprintf("\t%s(%s) - %s(%s): %dGb\n", title(src), e.From, title(dest), e.To, e.Label),
			Links:      linkLines(g, e),
		})
	}
	return r
}

// String renders the report as plain text.
func (r EdgeReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d edges selected\n", r.Count)
	for k, s := range r.Edges {
		fmt.Fprintf(&b, "edge #%d\nID: %s\nPartitions: %s\n%s", k+1, s.ID, strings.Join(s.Partitions, ", "), s.Line)
		for _, l := range s.Links {
			b.WriteString(l + "\n")
		}
	}
	return b.String()
}

// linkLines renders the physical links of e, one line each without the
// trailing newline.
func linkLines(g *topology.Graph, e *topology.Edge) []string {
	out := []string{}
	for _, lid := range e.Links {
		l, ok := g.Link(lid)
		if !ok {
			continue
		}
		out = append(out, fmt.Sprintf("\t\tlink %s (%s->%s):%sGb", lid, l.SrcPort, l.DstPort, formatNumber(l.Gbits)))
	}
	return out
}

func partitionNames(g *topology.Graph, parts []int) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, g.PartitionName(p))
	}
	return out
}

func titles(g *topology.Graph, ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		n, _ := g.Node(id)
		out = append(out, title(n))
	}
	return out
}

func title(n *topology.Node) string {
	if n == nil {
		return ""
	}
	return n.Title
}
