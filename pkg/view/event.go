package view

import "github.com/matzehuels/netdraw/pkg/errors"

// EventKind names a renderer event.
type EventKind string

// Event kinds, as reported by renderers.
const (
	KindDragStart         EventKind = "drag_start"
	KindDragEnd           EventKind = "drag_end"
	KindStabilizationDone EventKind = "stabilization_done"
	KindNodeSelected      EventKind = "node_selected"
	KindEdgeSelected      EventKind = "edge_selected"
)

// Event is one of [DragStart], [DragEnd], [StabilizationDone],
// [NodeSelected] or [EdgeSelected].
type Event interface {
	Kind() EventKind
}

// DragStart is sent when the user starts dragging. Edges are the edges
// attached to the dragged nodes.
type DragStart struct {
	Nodes []string
	Edges []string
}

// DragEnd is sent when a drag finishes.
type DragEnd struct{}

// StabilizationDone is sent once the force simulation has settled.
type StabilizationDone struct{}

// NodeSelected carries the selection after the user picked nodes.
type NodeSelected struct {
	Nodes []string
	Edges []string
}

// EdgeSelected carries the selection after the user picked edges.
type EdgeSelected struct {
	Nodes []string
	Edges []string
}

func (DragStart) Kind() EventKind         { return KindDragStart }
func (DragEnd) Kind() EventKind           { return KindDragEnd }
func (StabilizationDone) Kind() EventKind { return KindStabilizationDone }
func (NodeSelected) Kind() EventKind      { return KindNodeSelected }
func (EdgeSelected) Kind() EventKind      { return KindEdgeSelected }

// ParseEvent builds an event from its wire form.
func ParseEvent(kind string, nodes, edges []string) (Event, error) {
	switch EventKind(kind) {
	case KindDragStart:
		return DragStart{Nodes: nodes, Edges: edges}, nil
	case KindDragEnd:
		return DragEnd{}, nil
	case KindStabilizationDone:
		return StabilizationDone{}, nil
	case KindNodeSelected:
		return NodeSelected{Nodes: nodes, Edges: edges}, nil
	case KindEdgeSelected:
		return EdgeSelected{Nodes: nodes, Edges: edges}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown event %q", kind)
}

// Handle applies a renderer event and returns the updates the renderer must
// make in response.
func (s *GraphSession) Handle(ev Event) []Instruction {
	switch ev := ev.(type) {
	case DragStart:
		return s.dragStart(ev)
	case DragEnd:
		return s.dragEnd()
	case StabilizationDone:
		return s.stabilized()
	case NodeSelected:
		var out []Instruction
		for _, id := range ev.Nodes {
			i, ok := s.g.NodeIndex(id)
			if !ok || !s.shown.Has(i) {
				continue
			}
			s.nstate[i].Fixed = false
			out = append(out, flag(SetNodeFixed, id, false))
		}
		s.Select(ev.Nodes, ev.Edges)
		return append(out, s.selectionInstruction())
	case EdgeSelected:
		s.Select(ev.Nodes, ev.Edges)
		return []Instruction{s.selectionInstruction()}
	}
	return nil
}

// dragStart lets the simulation move the dragged edges, and the leaf
// endpoints hanging off them, until the drag ends.
func (s *GraphSession) dragStart(ev DragStart) []Instruction {
	s.dragNodes, s.dragEdges = s.dragNodes[:0], s.dragEdges[:0]
	var out []Instruction
	for _, id := range ev.Edges {
		i, ok := s.g.EdgeIndex(id)
		if !ok || !s.eshown.Has(i) {
			continue
		}
		s.estate[i].Physics = true
		s.dragEdges = append(s.dragEdges, i)
		out = append(out, flag(SetEdgePhysics, id, true))

		e := s.g.EdgeAt(i)
		for _, end := range []string{e.To, e.From} {
			j, ok := s.g.NodeIndex(end)
			if !ok || !s.shown.Has(j) || len(s.g.NodeAt(j).Edges) > 1 {
				continue
			}
			s.nstate[j].Physics = true
			s.dragNodes = append(s.dragNodes, j)
			out = append(out, flag(SetNodePhysics, end, true))
		}
	}
	return out
}

func (s *GraphSession) dragEnd() []Instruction {
	var out []Instruction
	for _, i := range s.dragEdges {
		if st, ok := s.estate[i]; ok {
			st.Physics = false
			out = append(out, flag(SetEdgePhysics, s.g.EdgeAt(i).ID, false))
		}
	}
	for _, i := range s.dragNodes {
		if st, ok := s.nstate[i]; ok {
			st.Physics = false
			out = append(out, flag(SetNodePhysics, s.g.NodeAt(i).ID, false))
		}
	}
	s.dragNodes, s.dragEdges = nil, nil
	return out
}

func (s *GraphSession) stabilized() []Instruction {
	out := make([]Instruction, 0, len(s.edges)+len(s.nodes))
	for _, i := range s.edges {
		s.estate[i].Physics = false
		out = append(out, flag(SetEdgePhysics, s.g.EdgeAt(i).ID, false))
	}
	for _, i := range s.nodes {
		s.nstate[i].Physics = false
		out = append(out, flag(SetNodePhysics, s.g.NodeAt(i).ID, false))
	}
	return out
}
