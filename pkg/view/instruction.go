package view

import "github.com/matzehuels/netdraw/pkg/graph"

// InstructionKind names a renderer update.
type InstructionKind string

// Instruction kinds.
const (
	SetNodePhysics InstructionKind = "set_node_physics"
	SetNodeFixed   InstructionKind = "set_node_fixed"
	SetEdgePhysics InstructionKind = "set_edge_physics"
	SetSelection   InstructionKind = "set_selection"
	AddNode        InstructionKind = "add_node"
	RemoveNode     InstructionKind = "remove_node"
	AddEdge        InstructionKind = "add_edge"
	RemoveEdge     InstructionKind = "remove_edge"
)

// Instruction tells a renderer how to update its datasets. Which fields are
// set depends on Kind:
//
//	set_node_physics, set_node_fixed, set_edge_physics: ID, Value
//	set_selection: Nodes, Edges
//	add_node: Node
//	add_edge: Edge
//	remove_node, remove_edge: ID
type Instruction struct {
	Kind  InstructionKind   `json:"kind"`
	ID    string            `json:"id,omitempty"`
	Value bool              `json:"value"`
	Node  *graph.LayoutNode `json:"node,omitempty"`
	Edge  *graph.LayoutEdge `json:"edge,omitempty"`
	Nodes []string          `json:"nodes,omitempty"`
	Edges []string          `json:"edges,omitempty"`
}

func flag(kind InstructionKind, id string, v bool) Instruction {
	return Instruction{Kind: kind, ID: id, Value: v}
}

func (s *GraphSession) selectionInstruction() Instruction {
	nodes, edges := s.Selection()
	return Instruction{Kind: SetSelection, Nodes: nodes, Edges: edges}
}

func (s *GraphSession) addNodeInstruction(i int) Instruction {
	n := s.layoutNode(i)
	return Instruction{Kind: AddNode, Node: &n}
}

func (s *GraphSession) addEdgeInstruction(i int) Instruction {
	e := s.layoutEdge(i)
	return Instruction{Kind: AddEdge, Edge: &e}
}
