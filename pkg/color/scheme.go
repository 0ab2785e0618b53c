package color

import (
	"slices"

	"github.com/matzehuels/netdraw/pkg/errors"
	"github.com/matzehuels/netdraw/pkg/topology"
)

// Mode selects how nodes and edges are colored.
type Mode string

// Color modes.
const (
	Normal         Mode = "normal"
	Partition      Mode = "partition"
	Hwloc          Mode = "hwloc"
	Bandwidth      Mode = "bandwidth"
	BandwidthCheck Mode = "bandwidth_check"
)

var allModes = []Mode{Normal, Partition, Hwloc, Bandwidth, BandwidthCheck}

// ParseMode validates a color mode name.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !slices.Contains(allModes, m) {
		return "", errors.New(errors.ErrCodeInvalidColorMode, "unknown color mode %q", s)
	}
	return m, nil
}

// Modes lists the modes that make sense for g. Partition and hwloc coloring
// are only offered when the document defines partitions or topologies.
func Modes(g *topology.Graph) []Mode {
	out := []Mode{Normal}
	if len(g.Partitions) > 0 {
		out = append(out, Partition)
	}
	if len(g.Topos) > 0 {
		out = append(out, Hwloc)
	}
	return append(out, Bandwidth, BandwidthCheck)
}

// EdgeStyle is the color of an edge and of its highlighted state.
type EdgeStyle struct {
	Color     string
	Highlight string
}

// NormalEdge is the style of edges outside the bandwidth modes.
var NormalEdge = EdgeStyle{Color: EdgeColor, Highlight: EdgeHighlight}

// Scheme colors the records of one graph in one mode.
type Scheme struct {
	mode  Mode
	g     *topology.Graph
	nodes []string
	edges []string
}

// NewScheme prepares the palettes for mode.
func NewScheme(g *topology.Graph, mode Mode) *Scheme {
	s := &Scheme{mode: mode, g: g}
	switch mode {
	case Partition:
		s.nodes = Palette(len(g.Partitions))
	case Hwloc:
		s.nodes = Palette(len(g.Topos))
	case Bandwidth:
		s.nodes = Palette(len(g.NodeBandwidths()))
		s.edges = Palette(len(g.EdgeBandwidths()))
	case BandwidthCheck:
		s.edges = Palette(len(g.EdgeBandwidths()))
	}
	return s
}

// Mode returns the scheme's mode.
func (s *Scheme) Mode() Mode { return s.mode }

// Node returns the color for n. When ok is false the node keeps whatever
// color it already has.
func (s *Scheme) Node(n *topology.Node) (color string, ok bool) {
	switch s.mode {
	case Partition:
		if !n.IsHost() {
			return SwitchColor, true
		}
		if len(n.Part) == 0 {
			return DefaultColor, true
		}
		return pick(s.nodes, n.Part[0]), true

	case Hwloc:
		if !n.IsHost() {
			return SwitchColor, true
		}
		t, set := n.Topo.Get()
		if !set {
			return "", false
		}
		return pick(s.nodes, t), true

	case Bandwidth:
		i := slices.Index(s.g.NodeBandwidths(), n.Size)
		if i < 0 {
			return "", false
		}
		return pick(s.nodes, i), true

	case BandwidthCheck:
		bws := s.g.EdgeBandwidths()
		if len(n.Edges) == 1 {
			return pick(s.edges, slices.Index(bws, n.Bandwidth)), true
		}
		if i := slices.Index(bws, n.Bandwidth/2); i >= 0 {
			return pick(s.edges, i), true
		}
		return DefaultColor, true
	}

	if n.IsHost() {
		return HostColor, true
	}
	return SwitchColor, true
}

// Edge returns the style for e. When ok is false the edge keeps its style.
func (s *Scheme) Edge(e *topology.Edge) (style EdgeStyle, ok bool) {
	switch s.mode {
	case Bandwidth, BandwidthCheck:
		i := slices.Index(s.g.EdgeBandwidths(), e.Gbits)
		if i < 0 {
			return EdgeStyle{}, false
		}
		return EdgeStyle{Color: pick(s.edges, i), Highlight: EdgeHighlight}, true
	}
	return NormalEdge, true
}
