package search

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/netdraw/pkg/topology"
)

// Description is the overview of a view.
type Description struct {
	Nodes      int      `json:"nodes"`
	Edges      int      `json:"edges"`
	Hosts      int      `json:"hosts"`
	Switches   int      `json:"switches"`
	Partitions []string `json:"partitions"`
	Topologies []string `json:"topologies"` // Sorted, only those of shown nodes
}

// Describe counts the shown records and lists the partitions and the
// topologies in use.
func Describe(g *topology.Graph, nodes, edges []int) Description {
	d := Description{
		Nodes:      len(nodes),
		Edges:      len(edges),
		Partitions: slices.Clone(g.Partitions),
		Topologies: []string{},
	}
	seen := make(map[int]bool)
	for _, i := range nodes {
		n := g.NodeAt(i)
		if n.IsHost() {
			d.Hosts++
		}
		if t, ok := n.Topo.Get(); ok && !seen[t] {
			seen[t] = true
			if name := g.TopoName(n.Topo); name != "" {
				d.Topologies = append(d.Topologies, name)
			}
		}
	}
	d.Switches = d.Nodes - d.Hosts
	slices.Sort(d.Topologies)
	return d
}

// String renders the description as plain text.
func (d Description) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stats\n%d nodes\n%d edges\n%d hosts\n%d switches\n", d.Nodes, d.Edges, d.Hosts, d.Switches)
	b.WriteString("Partitions\n")
	for _, p := range d.Partitions {
		fmt.Fprintf(&b, "  - %s\n", p)
	}
	b.WriteString("Hwloc topologies\n")
	for _, t := range d.Topologies {
		fmt.Fprintf(&b, "  - %s\n", t)
	}
	return b.String()
}
