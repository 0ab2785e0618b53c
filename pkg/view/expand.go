package view

import (
	"slices"

	"github.com/matzehuels/netdraw/pkg/errors"
	"github.com/matzehuels/netdraw/pkg/layout"
	"github.com/matzehuels/netdraw/pkg/topology"
)

// Expand replaces a shown aggregate by its sub-nodes.
//
// The aggregate's visible neighbors get physics enabled and are fixed so the
// revealed nodes relax around them. Every shown edge touching the aggregate
// is removed with it. The sub-nodes are placed on a circle around the
// aggregate's position, with physics off, and their edges are shown when both
// endpoints are visible, following the one-direction rule. The selection
// becomes exactly the new sub-nodes.
func (s *GraphSession) Expand(id string) ([]Instruction, error) {
	i, err := s.shownNode(id)
	if err != nil {
		return nil, err
	}
	agg := s.g.NodeAt(i)
	if !agg.IsAggregate() {
		return nil, errors.New(errors.ErrCodeNotAggregate, "node %q has no sub-nodes", id)
	}

	var out []Instruction
	for _, j := range s.g.Neighbors(i, s.shown) {
		st := s.nstate[j]
		st.Physics, st.Fixed = true, true
		nid := s.g.NodeAt(j).ID
		out = append(out, flag(SetNodePhysics, nid, true), flag(SetNodeFixed, nid, true))
	}

	st := s.nstate[i]
	center := layout.Point{X: st.X, Y: st.Y}
	for _, e := range s.removeIncident(i) {
		out = append(out, Instruction{Kind: RemoveEdge, ID: s.g.EdgeAt(e).ID})
	}
	s.removeNode(i)
	out = append(out, Instruction{Kind: RemoveNode, ID: id})
	agg.Merged = true

	var children []int
	for _, c := range s.g.Children(i) {
		if !s.shown.Has(c) {
			children = append(children, c)
		}
	}
	pts := layout.Around(center, len(children), agg.Size, 0)
	for k, c := range children {
		s.g.NodeAt(c).Merged = false
		s.addNode(c, pts[k], false)
		s.colorNode(c)
		out = append(out, s.addNodeInstruction(c))
	}

	added := s.addCanonical(s.candidateEdges(children))
	s.colorEdges(added)
	for _, e := range added {
		out = append(out, s.addEdgeInstruction(e))
	}

	s.selNodes = s.selNodes[:0]
	for _, c := range children {
		s.selNodes = append(s.selNodes, s.g.NodeAt(c).ID)
	}
	s.selEdges = nil
	out = append(out, s.selectionInstruction())

	s.log = append(s.log, Op{Kind: OpExpand, ID: id, Partition: s.partition})
	return out, nil
}

// ExpandSelected expands every selected aggregate. The selection becomes the
// union of all revealed sub-nodes. Selected nodes that are not aggregates are
// left alone.
func (s *GraphSession) ExpandSelected() ([]Instruction, error) {
	var (
		out      []Instruction
		selected []string
		expanded int
	)
	for _, id := range slices.Clone(s.selNodes) {
		n, ok := s.g.Node(id)
		if !ok || !n.IsAggregate() || !s.shown.Has(n.Index) {
			continue
		}
		ins, err := s.Expand(id)
		if err != nil {
			return out, err
		}
		expanded++
		for _, in := range ins {
			if in.Kind != SetSelection {
				out = append(out, in)
			}
		}
		selected = append(selected, s.selNodes...)
	}
	if expanded == 0 {
		return nil, errors.New(errors.ErrCodeNotAggregate, "no selected node can be expanded")
	}
	s.selNodes = selected
	s.selEdges = nil
	return append(out, s.selectionInstruction()), nil
}

// Collapse folds the visible descendants of an expanded aggregate back into
// it. Their edges and render state are dropped, they are marked merged, and
// the aggregate returns at their centroid with its edges. The selection
// becomes the aggregate.
func (s *GraphSession) Collapse(id string) ([]Instruction, error) {
	a, ok := s.g.Node(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
	}
	if !a.IsAggregate() {
		return nil, errors.New(errors.ErrCodeNotAggregate, "node %q has no sub-nodes", id)
	}
	if s.shown.Has(a.Index) {
		return nil, errors.New(errors.ErrCodeNotExpanded, "node %q is not expanded", id)
	}

	visible, folded := s.descendants(a.Index)
	if len(visible) == 0 {
		return nil, errors.New(errors.ErrCodeNotExpanded, "node %q has no visible sub-nodes", id)
	}

	var center layout.Point
	for _, c := range visible {
		st := s.nstate[c]
		center.X += st.X
		center.Y += st.Y
	}
	center.X /= float64(len(visible))
	center.Y /= float64(len(visible))

	var out []Instruction
	for _, c := range visible {
		for _, e := range s.removeIncident(c) {
			out = append(out, Instruction{Kind: RemoveEdge, ID: s.g.EdgeAt(e).ID})
		}
		s.removeNode(c)
		out = append(out, Instruction{Kind: RemoveNode, ID: s.g.NodeAt(c).ID})
	}
	for _, c := range folded {
		s.g.NodeAt(c).Merged = true
	}

	a.Merged = false
	s.addNode(a.Index, center, false)
	s.colorNode(a.Index)
	out = append(out, s.addNodeInstruction(a.Index))

	added := s.addCanonical(s.candidateEdges([]int{a.Index}))
	s.colorEdges(added)
	for _, e := range added {
		out = append(out, s.addEdgeInstruction(e))
	}

	s.selNodes = append(s.selNodes[:0], id)
	s.selEdges = nil
	out = append(out, s.selectionInstruction())

	s.log = append(s.log, Op{Kind: OpCollapse, ID: id, Partition: s.partition})
	return out, nil
}

// shownNode resolves a node that must currently be part of the view.
func (s *GraphSession) shownNode(id string) (int, error) {
	i, ok := s.g.NodeIndex(id)
	if !ok {
		return 0, errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
	}
	if !s.shown.Has(i) {
		return 0, errors.New(errors.ErrCodeNodeNotFound, "node %q is not shown", id)
	}
	return i, nil
}

// descendants walks the hierarchy below aggregate a. It returns the shown
// descendants, stopping at each, and every descendant visited on the way.
func (s *GraphSession) descendants(a int) (visible, folded []int) {
	seen := topology.NewSet(a)
	var walk func(int)
	walk = func(p int) {
		for _, c := range s.g.Children(p) {
			if seen.Has(c) {
				continue
			}
			seen.Add(c)
			folded = append(folded, c)
			if s.shown.Has(c) {
				visible = append(visible, c)
				continue
			}
			walk(c)
		}
	}
	walk(a)
	return visible, folded
}

// candidateEdges collects the eligible edges of the given nodes together
// with their eligible reverses, in first-seen order.
func (s *GraphSession) candidateEdges(nodes []int) []int {
	seen := topology.NewSet()
	var out []int
	consider := func(i int) {
		if seen.Has(i) || !s.eligible(i) {
			return
		}
		seen.Add(i)
		out = append(out, i)
	}
	for _, n := range nodes {
		for _, eid := range s.g.NodeAt(n).Edges {
			i, ok := s.g.EdgeIndex(eid)
			if !ok {
				continue
			}
			consider(i)
			if r, ok := s.g.EdgeIndex(s.g.EdgeAt(i).Reverse); ok {
				consider(r)
			}
		}
	}
	return out
}
