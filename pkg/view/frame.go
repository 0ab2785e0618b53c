package view

import (
	"slices"
	"strconv"

	"github.com/matzehuels/netdraw/pkg/graph"
	"github.com/matzehuels/netdraw/pkg/topology"
)

// Frame exports the current view for a renderer.
func (s *GraphSession) Frame() graph.Layout {
	l := graph.Layout{
		Type:          s.g.Type,
		Partition:     s.partition,
		ColorMode:     string(s.mode),
		Physics:       s.physics,
		Nodes:         make([]graph.LayoutNode, len(s.nodes)),
		Edges:         make([]graph.LayoutEdge, len(s.edges)),
		SelectedNodes: slices.Clone(s.selNodes),
		SelectedEdges: slices.Clone(s.selEdges),
	}
	for k, i := range s.nodes {
		l.Nodes[k] = s.layoutNode(i)
	}
	for k, i := range s.edges {
		l.Edges[k] = s.layoutEdge(i)
	}
	return l
}

func (s *GraphSession) layoutNode(i int) graph.LayoutNode {
	n := s.g.NodeAt(i)
	st := s.nstate[i]
	return graph.LayoutNode{
		ID:        n.ID,
		Title:     n.Title,
		Type:      n.Type,
		X:         st.X,
		Y:         st.Y,
		Size:      n.Size,
		Color:     st.Color,
		Physics:   st.Physics,
		Fixed:     st.Fixed,
		Ring:      st.Ring,
		Free:      st.Free,
		Aggregate: n.IsAggregate(),
	}
}

func (s *GraphSession) layoutEdge(i int) graph.LayoutEdge {
	e := s.g.EdgeAt(i)
	st := s.estate[i]
	return graph.LayoutEdge{
		ID:        e.ID,
		From:      e.From,
		To:        e.To,
		Label:     strconv.Itoa(e.Label),
		Width:     e.Width,
		Arrow:     st.Arrow,
		Color:     st.Style.Color,
		Highlight: st.Style.Highlight,
		Physics:   st.Physics,
	}
}

// PartitionOption is one entry of a partition picker.
type PartitionOption struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// PartitionOptions lists "All" followed by the document's partitions.
func PartitionOptions(g *topology.Graph) []PartitionOption {
	out := make([]PartitionOption, 0, len(g.Partitions)+1)
	out = append(out, PartitionOption{Value: AllPartitions, Label: "All"})
	for i, name := range g.Partitions {
		out = append(out, PartitionOption{Value: i, Label: name})
	}
	return out
}
