package view

import (
	"slices"

	"github.com/matzehuels/netdraw/pkg/color"
	"github.com/matzehuels/netdraw/pkg/errors"
	"github.com/matzehuels/netdraw/pkg/layout"
	"github.com/matzehuels/netdraw/pkg/topology"
)

// AllPartitions selects every partition.
const AllPartitions = -1

// NodeState is the render state of a shown node.
type NodeState struct {
	X, Y    float64
	Physics bool
	Fixed   bool
	Color   string
	Ring    int
	Free    bool
}

// EdgeState is the render state of a shown edge.
type EdgeState struct {
	Arrow   bool
	Physics bool
	Style   color.EdgeStyle
}

// Option configures a GraphSession.
type Option func(*GraphSession)

// WithDocumentHash records the content hash of the document the graph was
// loaded from. It is carried into snapshots.
func WithDocumentHash(hash string) Option {
	return func(s *GraphSession) { s.hash = hash }
}

// WithColorMode sets the initial color mode.
func WithColorMode(m color.Mode) Option {
	return func(s *GraphSession) { s.mode = m }
}

// GraphSession is the view state of one viewer over one graph.
type GraphSession struct {
	g         *topology.Graph
	hash      string
	partition int
	mode      color.Mode
	physics   bool

	nodes  []int // shown nodes, arena indices in display order
	shown  topology.Set
	nstate map[int]*NodeState

	edges  []int
	eshown topology.Set
	estate map[int]*EdgeState

	selNodes []string
	selEdges []string

	dragNodes []int
	dragEdges []int

	log []Op
}

// New returns an empty session over g. Call [GraphSession.Draw] to populate
// the view. The session takes ownership of g: expansion flips merged flags
// on the graph itself.
func New(g *topology.Graph, opts ...Option) *GraphSession {
	s := &GraphSession{
		g:         g,
		partition: AllPartitions,
		mode:      color.Normal,
		physics:   !g.IsTree(),
		shown:     topology.NewSet(),
		nstate:    make(map[int]*NodeState),
		eshown:    topology.NewSet(),
		estate:    make(map[int]*EdgeState),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.mode != color.Normal {
		s.log = append(s.log, Op{Kind: OpColor, Mode: s.mode})
	}
	return s
}

// Graph returns the underlying graph model.
func (s *GraphSession) Graph() *topology.Graph { return s.g }

// DocumentHash returns the hash given with [WithDocumentHash].
func (s *GraphSession) DocumentHash() string { return s.hash }

// Partition returns the active partition, or [AllPartitions].
func (s *GraphSession) Partition() int { return s.partition }

// ColorMode returns the active color mode.
func (s *GraphSession) ColorMode() color.Mode { return s.mode }

// Physics reports whether the renderer's force simulation is enabled.
func (s *GraphSession) Physics() bool { return s.physics }

// Draw rebuilds the view for a partition and discards all render state,
// selection included.
func (s *GraphSession) Draw(partition int) error {
	if err := errors.ValidatePartition(partition, len(s.g.Partitions)); err != nil {
		return err
	}
	s.partition = partition
	s.physics = !s.g.IsTree()
	s.nodes = s.nodes[:0]
	s.edges = s.edges[:0]
	s.shown = topology.NewSet()
	s.eshown = topology.NewSet()
	clear(s.nstate)
	clear(s.estate)
	s.selNodes, s.selEdges = nil, nil
	s.dragNodes, s.dragEdges = nil, nil

	for i := range s.g.NodeCount() {
		n := s.g.NodeAt(i)
		if n.Merged || !n.InPartition(partition) {
			continue
		}
		s.addNode(i, layout.Point{}, s.physics)
	}

	var eligible []int
	for i := range s.g.EdgeCount() {
		if s.eligible(i) {
			eligible = append(eligible, i)
		}
	}
	s.addCanonical(eligible)
	s.recolor()

	if s.g.IsTree() {
		res := layout.Compute(s.g, s.nodes)
		for k, p := range res.Placements {
			st := s.nstate[s.nodes[k]]
			st.X, st.Y = p.X, p.Y
			st.Ring, st.Free = p.Ring, p.Free
		}
	}

	s.log = append(s.log, Op{Kind: OpDraw, Partition: partition})
	return nil
}

// SetColorMode switches the color mode and recolors the view.
func (s *GraphSession) SetColorMode(m color.Mode) error {
	if _, err := color.ParseMode(string(m)); err != nil {
		return err
	}
	s.mode = m
	s.recolor()
	s.log = append(s.log, Op{Kind: OpColor, Mode: m})
	return nil
}

// ShownNodes returns the ids of the shown nodes in display order.
func (s *GraphSession) ShownNodes() []string {
	out := make([]string, len(s.nodes))
	for k, i := range s.nodes {
		out[k] = s.g.NodeAt(i).ID
	}
	return out
}

// ShownEdges returns the ids of the shown edges in display order.
//
// For every undirected link at most one direction is shown. Among an edge
// and its reverse, the one with from > to wins; an edge whose reverse is not
// eligible is shown on its own and drawn with an arrow.
func (s *GraphSession) ShownEdges() []string {
	out := make([]string, len(s.edges))
	for k, i := range s.edges {
		out[k] = s.g.EdgeAt(i).ID
	}
	return out
}

// ShownNodeIndices returns the arena indices of the shown nodes.
func (s *GraphSession) ShownNodeIndices() []int { return slices.Clone(s.nodes) }

// ShownEdgeIndices returns the arena indices of the shown edges.
func (s *GraphSession) ShownEdgeIndices() []int { return slices.Clone(s.edges) }

// Visible is the visibility of the current view, for neighbor queries.
func (s *GraphSession) Visible() topology.Visibility { return s.shown }

// IsShown reports whether the node is part of the view.
func (s *GraphSession) IsShown(id string) bool {
	i, ok := s.g.NodeIndex(id)
	return ok && s.shown.Has(i)
}

// NodeState returns the render state of a shown node.
func (s *GraphSession) NodeState(id string) (NodeState, bool) {
	i, ok := s.g.NodeIndex(id)
	if !ok {
		return NodeState{}, false
	}
	st, ok := s.nstate[i]
	if !ok {
		return NodeState{}, false
	}
	return *st, true
}

// EdgeState returns the render state of a shown edge.
func (s *GraphSession) EdgeState(id string) (EdgeState, bool) {
	i, ok := s.g.EdgeIndex(id)
	if !ok {
		return EdgeState{}, false
	}
	st, ok := s.estate[i]
	if !ok {
		return EdgeState{}, false
	}
	return *st, true
}

// Selection returns the selected node and edge ids.
func (s *GraphSession) Selection() (nodes, edges []string) {
	return slices.Clone(s.selNodes), slices.Clone(s.selEdges)
}

// Select replaces the selection. Ids that are not shown are dropped.
func (s *GraphSession) Select(nodes, edges []string) {
	s.selNodes = s.selNodes[:0]
	for _, id := range nodes {
		if s.IsShown(id) {
			s.selNodes = append(s.selNodes, id)
		}
	}
	s.selEdges = s.selEdges[:0]
	for _, id := range edges {
		if i, ok := s.g.EdgeIndex(id); ok && s.eshown.Has(i) {
			s.selEdges = append(s.selEdges, id)
		}
	}
}

// =============================================================================
// Internal mutation helpers
// =============================================================================

func normalColor(n *topology.Node) string {
	if n.IsHost() {
		return color.HostColor
	}
	return color.SwitchColor
}

func (s *GraphSession) addNode(i int, p layout.Point, physics bool) {
	s.nodes = append(s.nodes, i)
	s.shown.Add(i)
	s.nstate[i] = &NodeState{
		X:       p.X,
		Y:       p.Y,
		Physics: physics,
		Color:   normalColor(s.g.NodeAt(i)),
	}
}

func (s *GraphSession) removeNode(i int) {
	s.nodes = slices.DeleteFunc(s.nodes, func(j int) bool { return j == i })
	s.shown.Remove(i)
	delete(s.nstate, i)
}

func (s *GraphSession) addEdge(i int, arrow bool) {
	s.edges = append(s.edges, i)
	s.eshown.Add(i)
	s.estate[i] = &EdgeState{Arrow: arrow, Physics: s.physics, Style: color.NormalEdge}
}

// removeIncident drops every shown edge touching node i and returns the
// removed edge indices.
func (s *GraphSession) removeIncident(i int) []int {
	id := s.g.NodeAt(i).ID
	var removed []int
	s.edges = slices.DeleteFunc(s.edges, func(j int) bool {
		e := s.g.EdgeAt(j)
		if e.From != id && e.To != id {
			return false
		}
		removed = append(removed, j)
		s.eshown.Remove(j)
		delete(s.estate, j)
		return true
	})
	return removed
}

// eligible reports whether edge i may be shown: both endpoints are shown,
// it is in the active partition and it is not shown yet.
func (s *GraphSession) eligible(i int) bool {
	if s.eshown.Has(i) {
		return false
	}
	e := s.g.EdgeAt(i)
	from, ok := s.g.NodeIndex(e.From)
	if !ok || !s.shown.Has(from) {
		return false
	}
	to, ok := s.g.NodeIndex(e.To)
	if !ok || !s.shown.Has(to) {
		return false
	}
	return e.InPartition(s.partition)
}

// addCanonical shows one direction per link among the candidate edges and
// returns the edges it added.
func (s *GraphSession) addCanonical(candidates []int) []int {
	in := topology.NewSet(candidates...)
	var added []int
	for _, i := range candidates {
		e := s.g.EdgeAt(i)
		r, ok := s.g.EdgeIndex(e.Reverse)
		reverseIn := ok && r != i && in.Has(r)
		switch {
		case e.From > e.To:
			s.addEdge(i, !reverseIn)
		case !reverseIn:
			s.addEdge(i, true)
		default:
			continue
		}
		added = append(added, i)
	}
	return added
}

func (s *GraphSession) recolor() {
	scheme := color.NewScheme(s.g, s.mode)
	for _, i := range s.nodes {
		if c, ok := scheme.Node(s.g.NodeAt(i)); ok {
			s.nstate[i].Color = c
		}
	}
	for _, i := range s.edges {
		if st, ok := scheme.Edge(s.g.EdgeAt(i)); ok {
			s.estate[i].Style = st
		}
	}
}

func (s *GraphSession) colorNode(i int) {
	if c, ok := color.NewScheme(s.g, s.mode).Node(s.g.NodeAt(i)); ok {
		s.nstate[i].Color = c
	}
}

func (s *GraphSession) colorEdges(edges []int) {
	scheme := color.NewScheme(s.g, s.mode)
	for _, i := range edges {
		if st, ok := scheme.Edge(s.g.EdgeAt(i)); ok {
			s.estate[i].Style = st
		}
	}
}
